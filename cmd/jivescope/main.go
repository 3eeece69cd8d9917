package main

import (
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/jivescope/internal/audio"
	"github.com/linuxmatters/jivescope/internal/cli"
	"github.com/linuxmatters/jivescope/internal/config"
	"github.com/linuxmatters/jivescope/internal/pipeline"
	"github.com/linuxmatters/jivescope/internal/ui"
	"github.com/linuxmatters/jivescope/internal/units"
	"github.com/linuxmatters/jivescope/internal/waveform"
)

// version is set via ldflags at build time
// Local dev builds: "dev"
// Release builds: git tag (e.g. "v0.1.0")
var version = "dev"

var CLI struct {
	Input      string  `arg:"" name:"input" help:"Input WAV, MP3 or FLAC file" optional:""`
	Out        string  `help:"Write a one-shot trace PNG instead of running the TUI" placeholder:"file"`
	Duration   float64 `help:"Visible window in seconds" default:"2"`
	Width      int     `help:"Trace image width in pixels" default:"1000"`
	Height     int     `help:"Trace image height in pixels" default:"320"`
	Spectrum   bool    `help:"Render a frequency spectrum instead of the waveform"`
	Background string  `help:"Trace background as a hex colour" placeholder:"rrggbb"`
	Cursor     string  `help:"Cursor colour as a hex colour" placeholder:"rrggbb"`
	Font       string  `help:"TTF font for timestamp labels" placeholder:"file"`
	Verbose    bool    `help:"Log buffer events to stderr"`
	Version    bool    `help:"Show version information"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("jivescope"),
		kong.Description("A terminal waveform scope for audio files."),
		kong.Vars{"version": version},
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	if CLI.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	if CLI.Input == "" {
		cli.PrintError("<input> is required")
		os.Exit(1)
	}
	if _, err := os.Stat(CLI.Input); os.IsNotExist(err) {
		cli.PrintError(fmt.Sprintf("input file does not exist: %s", CLI.Input))
		os.Exit(1)
	}
	if CLI.Duration <= 0 {
		cli.PrintError(fmt.Sprintf("invalid duration: %g (must be positive)", CLI.Duration))
		os.Exit(1)
	}
	if CLI.Width < 10 || CLI.Height < 10 {
		cli.PrintError(fmt.Sprintf("trace size %dx%d too small", CLI.Width, CLI.Height))
		os.Exit(1)
	}

	logLevel := slog.LevelWarn
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	overrides := &config.Overrides{FontPath: CLI.Font}
	if CLI.Background != "" {
		if err := overrides.SetBackground(CLI.Background); err != nil {
			cli.PrintError(err.Error())
			os.Exit(1)
		}
	}
	if CLI.Cursor != "" {
		if err := overrides.SetCursor(CLI.Cursor); err != nil {
			cli.PrintError(err.Error())
			os.Exit(1)
		}
	}

	visibleDur := units.Duration(CLI.Duration * 1e9)

	if CLI.Out != "" {
		if err := renderSnapshot(overrides, visibleDur); err != nil {
			cli.PrintError(err.Error())
			os.Exit(1)
		}
		cli.PrintSuccess(fmt.Sprintf("Wrote %s", CLI.Out))
		return
	}

	if err := runPlayer(overrides, visibleDur); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

// newRenderer assembles the extraction and rendering stack for the
// stream the producer just opened.
func newRenderer(p *pipeline.Producer, overrides *config.Overrides) (*waveform.DoubleRenderer, error) {
	var extractor waveform.Extractor
	if CLI.Spectrum {
		extractor = waveform.NewSpectrumExtractor()
	} else {
		extractor = waveform.NewWaveExtractor()
	}

	rend := waveform.NewDoubleRenderer(extractor, overrides, CLI.Width, CLI.Height)
	if overrides.FontPath != "" {
		if err := rend.LoadFont(overrides.FontPath); err != nil {
			return nil, err
		}
	}

	channels := make([]audio.Channel, 0, p.NumChannels())
	for _, pos := range audio.DefaultLayout(p.NumChannels()) {
		channels = append(channels, audio.NewChannel(pos))
	}
	rend.Renderer().SetChannels(channels)
	rend.Renderer().SetSampleConditions(units.DurationFromFrequency(uint64(p.SampleRate())))
	return rend, nil
}

// runPlayer decodes in real time and runs the interactive TUI.
func runPlayer(overrides *config.Overrides, visibleDur units.Duration) error {
	buf := audio.NewDoubleBuffer()
	producer, err := pipeline.NewProducer(CLI.Input, buf, true)
	if err != nil {
		return err
	}

	rend, err := newRenderer(producer, overrides)
	if err != nil {
		return err
	}
	rend.UpdateConditions(visibleDur, CLI.Width, CLI.Height)
	rend.Renderer().SetPlaying()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	producerDone := make(chan error, 1)
	go func() { producerDone <- producer.Run(ctx) }()

	model := ui.NewPlayerModel(CLI.Input, buf, rend, producer, visibleDur)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}

	cancel()
	if err := <-producerDone; err != nil && err != context.Canceled {
		return fmt.Errorf("producer: %w", err)
	}
	return nil
}

// renderSnapshot decodes as fast as possible and writes the last
// retained window as a PNG.
func renderSnapshot(overrides *config.Overrides, visibleDur units.Duration) error {
	cli.PrintBanner()

	buf := audio.NewDoubleBuffer()
	producer, err := pipeline.NewProducer(CLI.Input, buf, false)
	if err != nil {
		return err
	}

	cli.PrintSection("Source")
	cli.PrintInfo("Input", CLI.Input)
	cli.PrintInfo("Format", fmt.Sprintf("%d Hz, %d channels", producer.SampleRate(), producer.NumChannels()))
	if frames := producer.NumFrames(); frames > 0 {
		total := time.Duration(frames) * time.Second / time.Duration(producer.SampleRate())
		cli.PrintInfo("Length", cli.FormatDuration(total))
	}

	rend, err := newRenderer(producer, overrides)
	if err != nil {
		return err
	}
	rend.UpdateConditions(visibleDur, CLI.Width, CLI.Height)
	rend.Renderer().SetPlaying()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	producerDone := make(chan error, 1)
	go func() { producerDone <- producer.Run(ctx) }()

	for !buf.EOS() {
		select {
		case err := <-producerDone:
			if err != nil && err != context.Canceled {
				return fmt.Errorf("producer: %w", err)
			}
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	if n := buf.Discontinuities(); n > 0 {
		cli.PrintWarning(fmt.Sprintf("stream resynchronized %d times during decode", n))
	}

	// Center the trace on the end of the retained window.
	lower, upper := buf.Bounds()
	sampleDur := buf.SampleDuration()
	rend.Renderer().Tick(upper.Timestamp(sampleDur))

	snap, err := buf.Snapshot(lower, upper)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if _, err := rend.Render(snap); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	img, _ := rend.Image()
	f, err := os.Create(CLI.Out)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	cli.PrintBox(fmt.Sprintf("%s\n%dx%d px, %s window",
		CLI.Out, CLI.Width, CLI.Height,
		cli.FormatDuration(time.Duration(visibleDur))))
	return nil
}
