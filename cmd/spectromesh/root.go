package main

import (
	"flag"

	"github.com/spf13/cobra"

	"github.com/peragwin/spectromesh/config"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "spectromesh",
		Short:         "Audio-reactive spectrum mesh",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// glog reads its flags from the standard flag set
			return flag.CommandLine.Parse(nil)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"path to the YAML config (default "+config.DefaultPath+" if present)")
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	root.AddCommand(
		newRunCmd(opts),
		newDevicesCmd(),
		newPlotCmd(opts),
	)
	return root
}
