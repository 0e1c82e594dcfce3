// Package config loads the spectromesh YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang/glog"
	"gopkg.in/yaml.v3"

	"github.com/peragwin/spectromesh/audio/analyzer"
	"github.com/peragwin/spectromesh/audio/util"
	"github.com/peragwin/spectromesh/visual/colortable"
)

// DefaultPath is searched when no config file is given.
const DefaultPath = "spectromesh.yaml"

// Audio sources.
const (
	SourceLive = "live"
	SourceWAV  = "wav"
)

// Color modes for the mesh shader.
const (
	// ColorLookup uses the color table asset and fails validation if it has no table for
	// the bin count.
	ColorLookup = "lookup"
	// ColorGradient uses the asset table when present and a synthesized gradient otherwise.
	ColorGradient = "gradient"
	// ColorPlain draws the magnitude in the red channel.
	ColorPlain = "plain"
)

// Config is the application configuration.
type Config struct {
	Audio    AudioConfig    `yaml:"audio"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Display  DisplayConfig  `yaml:"display"`
	Control  ControlConfig  `yaml:"control"`
}

// AudioConfig selects and configures the audio source.
type AudioConfig struct {
	Source     string  `yaml:"source"`      // "live" or "wav"
	WAVPath    string  `yaml:"wav_path"`    // file replayed when source is "wav"
	Loop       bool    `yaml:"loop"`        // restart the file at its end
	BlockSize  int     `yaml:"block_size"`  // frames per capture block
	Channels   int     `yaml:"channels"`    // input channels, downmixed to mono
	SampleRate float64 `yaml:"sample_rate"` // capture rate in Hz
}

// AnalyzerConfig configures the frequency analysis.
type AnalyzerConfig struct {
	FFTSize     int     `yaml:"fft_size"`
	Smoothing   float64 `yaml:"smoothing"`
	MinDecibels float64 `yaml:"min_decibels"`
	MaxDecibels float64 `yaml:"max_decibels"`
}

// DisplayConfig configures the window and the spectrogram history.
type DisplayConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	// SpectrogramSize fixes the history to a square of this many pixels. Zero follows the
	// framebuffer size.
	SpectrogramSize int    `yaml:"spectrogram_size"`
	ColorMode       string `yaml:"color_mode"`
	FrameRate       int    `yaml:"frame_rate"` // tick rate when headless
	Headless        bool   `yaml:"headless"`
}

// ControlConfig configures the HTTP control API.
type ControlConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
	HTTPDir string `yaml:"http_dir"` // optional static files served at /
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			Source:     SourceLive,
			BlockSize:  256,
			Channels:   1,
			SampleRate: 44100,
		},
		Analyzer: AnalyzerConfig{
			FFTSize:     512,
			Smoothing:   analyzer.DefaultSmoothing,
			MinDecibels: analyzer.DefaultMinDecibels,
			MaxDecibels: analyzer.DefaultMaxDecibels,
		},
		Display: DisplayConfig{
			Title:           "spectromesh",
			Width:           1200,
			Height:          800,
			SpectrogramSize: 256,
			ColorMode:       ColorLookup,
			FrameRate:       60,
		},
		Control: ControlConfig{
			Enabled: true,
			Listen:  ":8080",
		},
	}
}

// Load reads the config at path over the defaults. An empty path tries DefaultPath and
// falls back to the defaults when it does not exist. Environment overrides are applied
// last, then the result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Bins is the number of frequency bins the analyzer produces.
func (c *Config) Bins() int { return c.Analyzer.FFTSize / 2 }

// AnalyzerConfig converts the analyzer section.
func (c *Config) AnalyzerConfig() analyzer.Config {
	return analyzer.Config{
		Window:     c.Analyzer.FFTSize,
		SampleRate: c.Audio.SampleRate,
		Parameters: analyzer.Parameters{
			Smoothing:   c.Analyzer.Smoothing,
			MinDecibels: c.Analyzer.MinDecibels,
			MaxDecibels: c.Analyzer.MaxDecibels,
		},
	}
}

// ColorTable resolves the color table for the configured mode. Plain mode returns nil.
func (c *Config) ColorTable(asset *colortable.Asset) (colortable.Table, error) {
	switch c.Display.ColorMode {
	case ColorLookup:
		return asset.Table(c.Bins())
	case ColorGradient:
		return asset.Resolve(c.Bins(), true)
	case ColorPlain:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown color mode %q", c.Display.ColorMode)
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error

	switch c.Audio.Source {
	case SourceLive:
	case SourceWAV:
		if c.Audio.WAVPath == "" {
			errs = append(errs, errors.New("audio.wav_path must be set when audio.source is wav"))
		}
	default:
		errs = append(errs, fmt.Errorf("audio.source %q must be %q or %q",
			c.Audio.Source, SourceLive, SourceWAV))
	}
	if c.Audio.BlockSize <= 0 {
		errs = append(errs, errors.New("audio.block_size must be positive"))
	}
	if c.Audio.Channels <= 0 {
		errs = append(errs, errors.New("audio.channels must be positive"))
	}
	if c.Audio.SampleRate <= 0 {
		errs = append(errs, errors.New("audio.sample_rate must be positive"))
	}

	n := c.Analyzer.FFTSize
	if !util.IsPowerOfTwo(n) || n < analyzer.MinWindow || n > analyzer.MaxWindow {
		errs = append(errs, fmt.Errorf("analyzer.fft_size %d must be a power of two in [%d, %d]",
			n, analyzer.MinWindow, analyzer.MaxWindow))
	}
	if err := c.AnalyzerConfig().Parameters.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("analyzer: %w", err))
	}

	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		errs = append(errs, errors.New("display.width and display.height must be positive"))
	}
	if c.Display.SpectrogramSize < 0 {
		errs = append(errs, errors.New("display.spectrogram_size must not be negative"))
	}
	if c.Display.FrameRate <= 0 {
		errs = append(errs, errors.New("display.frame_rate must be positive"))
	}
	if _, err := c.ColorTable(colortable.Default()); err != nil {
		errs = append(errs, fmt.Errorf("display.color_mode: %w", err))
	}

	if c.Control.Enabled && c.Control.Listen == "" {
		errs = append(errs, errors.New("control.listen must be set when control is enabled"))
	}

	return errors.Join(errs...)
}

func (c *Config) applyEnvOverrides() {
	// SPECTROMESH_AUDIO_SOURCE
	if val, ok := os.LookupEnv("SPECTROMESH_AUDIO_SOURCE"); ok {
		c.Audio.Source = val
		glog.Infof("config: overriding audio.source from env: %s", val)
	}
	// SPECTROMESH_WAV_PATH
	if val, ok := os.LookupEnv("SPECTROMESH_WAV_PATH"); ok {
		c.Audio.WAVPath = val
		glog.Infof("config: overriding audio.wav_path from env: %s", val)
	}
	// SPECTROMESH_FFT_SIZE
	if val, ok := os.LookupEnv("SPECTROMESH_FFT_SIZE"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			c.Analyzer.FFTSize = n
			glog.Infof("config: overriding analyzer.fft_size from env: %d", n)
		} else {
			glog.Warningf("config: ignoring SPECTROMESH_FFT_SIZE=%q: %v", val, err)
		}
	}
	// SPECTROMESH_COLOR_MODE
	if val, ok := os.LookupEnv("SPECTROMESH_COLOR_MODE"); ok {
		c.Display.ColorMode = val
		glog.Infof("config: overriding display.color_mode from env: %s", val)
	}
	// SPECTROMESH_HEADLESS
	if val, ok := os.LookupEnv("SPECTROMESH_HEADLESS"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Display.Headless = b
			glog.Infof("config: overriding display.headless from env: %v", b)
		}
	}
	// SPECTROMESH_CONTROL_LISTEN
	if val, ok := os.LookupEnv("SPECTROMESH_CONTROL_LISTEN"); ok {
		c.Control.Listen = val
		glog.Infof("config: overriding control.listen from env: %s", val)
	}
}
