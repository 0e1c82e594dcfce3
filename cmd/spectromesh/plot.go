package main

import (
	"fmt"
	"math"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/peragwin/spectromesh/audio"
	"github.com/peragwin/spectromesh/audio/analyzer"
	"github.com/peragwin/spectromesh/config"
)

func newPlotCmd(root *rootOptions) *cobra.Command {
	var (
		out string
		at  []float64
	)
	cmd := &cobra.Command{
		Use:   "plot <file.wav>",
		Short: "Plot the analyzed spectrum of a WAV file at the given times",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			clip, err := audio.LoadWAV(args[0])
			if err != nil {
				return err
			}
			if len(at) == 0 {
				at = []float64{float64(clip.Frames()) / clip.SampleRate / 2}
			}

			frames := make(map[string]analyzer.Frame, len(at))
			for _, t := range at {
				f, err := frameAt(cfg, clip, t)
				if err != nil {
					return err
				}
				frames[fmt.Sprintf("t=%.2fs", t)] = f
			}
			if err := analyzer.PlotSpectrum(out, clip.SampleRate, frames); err != nil {
				return err
			}
			glog.Infof("plot: wrote %s", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "spectrum.png", "output image, format from extension")
	cmd.Flags().Float64SliceVar(&at, "at", nil, "times in seconds to analyze (default the middle of the clip)")
	return cmd
}

// frameAt feeds the clip to a fresh analyzer block by block up to t seconds, so that
// smoothing settles as it would during playback, and returns the last frame.
func frameAt(cfg *config.Config, clip *audio.Clip, t float64) (analyzer.Frame, error) {
	acfg := cfg.AnalyzerConfig()
	acfg.SampleRate = clip.SampleRate
	a, err := analyzer.New(acfg)
	if err != nil {
		return nil, err
	}

	end := int(math.Round(t * clip.SampleRate))
	if end < a.Window() || end > clip.Frames() {
		return nil, fmt.Errorf("time %.2fs is outside the clip", t)
	}

	block := cfg.Audio.BlockSize
	mono := make([]float64, block)
	var f analyzer.Frame
	for start := 0; start < end; start += block {
		stop := min(start+block, end)
		mono = audio.Mono(clip.Samples[start*clip.Channels:stop*clip.Channels], clip.Channels, mono)
		a.Write(mono)
		if f, err = a.FrequencyFrame(); err != nil {
			return nil, err
		}
	}
	return f, nil
}
