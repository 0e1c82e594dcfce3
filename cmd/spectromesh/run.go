package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/peragwin/spectromesh/audio"
	"github.com/peragwin/spectromesh/audio/analyzer"
	"github.com/peragwin/spectromesh/config"
	"github.com/peragwin/spectromesh/control"
	"github.com/peragwin/spectromesh/gfx"
	"github.com/peragwin/spectromesh/gfx/meshview"
	"github.com/peragwin/spectromesh/visual"
	"github.com/peragwin/spectromesh/visual/colortable"
)

type runOptions struct {
	*rootOptions
	headless bool
	wavPath  string
	snapshot string
	frames   int
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze audio and draw the mesh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.wavPath != "" {
				cfg.Audio.Source = config.SourceWAV
				cfg.Audio.WAVPath = opts.wavPath
			}
			if opts.headless || opts.snapshot != "" {
				cfg.Display.Headless = true
			}
			return run(cmd.Context(), cfg, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.headless, "headless", false, "render the spectrogram on the CPU without a window")
	cmd.Flags().StringVar(&opts.wavPath, "wav", "", "replay this WAV file instead of capturing audio")
	cmd.Flags().StringVar(&opts.snapshot, "snapshot", "", "write the final spectrogram to this PNG (implies --headless)")
	cmd.Flags().IntVar(&opts.frames, "frames", 0, "stop after this many frames when headless, 0 runs until interrupted")
	return cmd
}

// pipeline holds the parts shared by the windowed and headless modes.
type pipeline struct {
	cfg      *config.Config
	analyzer *analyzer.Analyzer
	colors   colortable.Table
	uniforms *visual.UniformSet
}

func run(ctx context.Context, cfg *config.Config, opts *runOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := analyzer.New(cfg.AnalyzerConfig())
	if err != nil {
		return err
	}
	colors, err := cfg.ColorTable(colortable.Default())
	if err != nil {
		return err
	}
	stream, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	a.Attach(ctx, stream)
	defer a.Detach()

	p := &pipeline{
		cfg:      cfg,
		analyzer: a,
		colors:   colors,
		uniforms: visual.NewUniformSet(),
	}
	if cfg.Display.Headless {
		return p.runHeadless(ctx, opts)
	}
	return p.runWindow(ctx)
}

func openSource(ctx context.Context, cfg *config.Config) (*audio.Stream, error) {
	switch cfg.Audio.Source {
	case config.SourceWAV:
		return audio.OpenWAV(ctx, cfg.Audio.WAVPath, audio.WAVOptions{
			BlockSize: cfg.Audio.BlockSize,
			Realtime:  true,
			Loop:      cfg.Audio.Loop,
		})
	case config.SourceLive:
		return audio.NewSource(ctx, &audio.Config{
			BlockSize:  cfg.Audio.BlockSize,
			Channels:   cfg.Audio.Channels,
			SampleRate: cfg.Audio.SampleRate,
		}), nil
	}
	return nil, fmt.Errorf("unknown audio source %q", cfg.Audio.Source)
}

func (p *pipeline) runWindow(ctx context.Context) error {
	d := p.cfg.Display
	r, err := meshview.New(ctx, meshview.Config{
		Window: gfx.WindowConfig{Width: d.Width, Height: d.Height, Title: d.Title},
		Bins:   p.cfg.Bins(),
	}, p.uniforms)
	if err != nil {
		return err
	}
	defer r.Close()

	format := visual.NegotiateFormat(r.Capabilities())
	glog.Infof("spectromesh: spectrum texture format %v", format)

	history := visual.NewHistory(r.HistoryPass(), p.fixedSize())
	defer history.Close()

	sync, err := p.synchronizer(ctx, visual.NewPacker(p.cfg.Bins(), format), history)
	if err != nil {
		return err
	}

	r.Run(func(f meshview.Frame) error {
		if f.Resized {
			history.Resize(f.Viewport)
		}
		return sync.Tick(visual.Input{Pointer: f.Pointer})
	})
	return nil
}

func (p *pipeline) runHeadless(ctx context.Context, opts *runOptions) error {
	size := p.fixedSize()
	if size == (image.Point{}) {
		size = image.Pt(p.cfg.Display.Width, p.cfg.Display.Height)
	}
	history := visual.NewHistory(&visual.ImagePass{MaxSize: 8192}, size)
	defer history.Close()

	sync, err := p.synchronizer(ctx, visual.NewPacker(p.cfg.Bins(), visual.FormatRed), history)
	if err != nil {
		return err
	}

	n, err := visual.RunFixedRate(ctx, p.cfg.Display.FrameRate, opts.frames, func() error {
		return sync.Tick(visual.Input{})
	})
	if err != nil {
		return err
	}
	glog.Infof("spectromesh: %d frames, %+v", n, sync.Stats())

	if opts.snapshot == "" {
		return nil
	}
	return writeSnapshot(opts.snapshot, history.Front())
}

func (p *pipeline) synchronizer(ctx context.Context,
	packer *visual.Packer, history *visual.History) (*visual.Synchronizer, error) {
	cfg := visual.SyncConfig{
		Source:   p.analyzer,
		Packer:   packer,
		History:  history,
		Uniforms: p.uniforms,
		Colors:   p.colors,
	}
	if !p.cfg.Control.Enabled {
		return visual.NewSynchronizer(cfg)
	}

	// the server reads stats from the synchronizer and receives frames from it
	var sync *visual.Synchronizer
	srv, err := control.NewServer(control.Config{
		Params: p.analyzer,
		Stats:  statsFunc(func() visual.Stats { return sync.Stats() }),
		Info: control.Info{
			Window:     p.analyzer.Window(),
			Bins:       p.analyzer.Bins(),
			SampleRate: p.analyzer.SampleRate(),
			Format:     packer.Format().String(),
			ColorMode:  p.cfg.Display.ColorMode,
		},
		HTTPDir: p.cfg.Control.HTTPDir,
	})
	if err != nil {
		return nil, err
	}
	cfg.Publisher = srv
	if sync, err = visual.NewSynchronizer(cfg); err != nil {
		srv.Close()
		return nil, err
	}

	go func() {
		err := srv.ListenAndServe(ctx, p.cfg.Control.Listen)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			glog.Errorf("spectromesh: control server: %v", err)
		}
	}()
	return sync, nil
}

func (p *pipeline) fixedSize() image.Point {
	s := p.cfg.Display.SpectrogramSize
	if s <= 0 {
		return image.Point{}
	}
	return image.Pt(s, s)
}

type statsFunc func() visual.Stats

func (f statsFunc) Stats() visual.Stats { return f() }

func writeSnapshot(path string, t visual.Target) error {
	img, ok := t.(*visual.ImageTarget)
	if !ok {
		return errors.New("no spectrogram to write")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := img.WritePNG(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	glog.Infof("spectromesh: wrote %s", path)
	return nil
}
