package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/gifcap/pkg/adapters/chromecapture"
	"github.com/user/gifcap/pkg/adapters/filesink"
	"github.com/user/gifcap/pkg/adapters/ggrenderer"
	"github.com/user/gifcap/pkg/adapters/gstcapture"
	"github.com/user/gifcap/pkg/adapters/logger"
	"github.com/user/gifcap/pkg/adapters/mp4encoder"
	"github.com/user/gifcap/pkg/adapters/nullsink"
	"github.com/user/gifcap/pkg/adapters/osfilesystem"
	"github.com/user/gifcap/pkg/adapters/smartencoder"
	"github.com/user/gifcap/pkg/budget"
	"github.com/user/gifcap/pkg/capture"
	"github.com/user/gifcap/pkg/config"
	"github.com/user/gifcap/pkg/cursor"
	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/importer"
	"github.com/user/gifcap/pkg/metrics"
	"github.com/user/gifcap/pkg/orchestrator"
	"github.com/user/gifcap/pkg/ports"
	"github.com/user/gifcap/pkg/sequence"
	"github.com/user/gifcap/pkg/stages/encode"
	"github.com/user/gifcap/pkg/summarizer"
)

// env holds the adapters shared by the commands.
type env struct {
	cfg      config.Config
	log      ports.Logger
	fs       *osfilesystem.FileSystem
	renderer *ggrenderer.Renderer
	orch     *orchestrator.Orchestrator
}

func setup(c *cli.Context) (*env, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	var log ports.Logger
	if c.Bool("quiet") {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
	}

	fs := osfilesystem.New()
	renderer := ggrenderer.New()

	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return nil, fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs, renderer)
	} else {
		sink = nullsink.New()
	}

	caps := smartencoder.Probe(c.Context, cfg.Tools.FFmpegPath, log)
	selector := smartencoder.NewSelector(caps, smartencoder.Options{
		Workers: cfg.Workers,
		Logger:  log,
	})
	stage := encode.NewStage(selector, budget.New(log), sink, log)

	return &env{
		cfg:      cfg,
		log:      log,
		fs:       fs,
		renderer: renderer,
		orch:     orchestrator.New(stage, fs, sink, log),
	}, nil
}

func runRecord(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	applyCaptureFlags(c, &e.cfg)
	opts, err := buildEncodeOptions(c, e.cfg)
	if err != nil {
		return err
	}
	script, err := sequence.ParseScript(c.String("edit"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	var (
		stream  ports.CaptureStream
		tracker ports.CursorTracker
		source  = c.String("source")
	)
	switch source {
	case "x11":
		stream = gstcapture.New(c.String("display"), e.log)
		if e.cfg.Capture.Cursor {
			e.log.Warn("Cursor highlighting is only available with --source url")
		}
	case "url":
		if c.String("url") == "" {
			return errors.New(l10n.T("--url is required with --source url"))
		}
		cs := chromecapture.New(chromecapture.Options{
			URL:        c.String("url"),
			ChromePath: c.String("chrome-path"),
			Headless:   !c.Bool("no-headless"),
		}, e.renderer, e.log)
		stream, tracker = cs, cs
	default:
		return fmt.Errorf("unknown source %q", source)
	}

	compositor := cursor.New(e.renderer, e.cfg.ToCursorOptions(), e.log)
	session := capture.NewSession(e.cfg.ToSessionConfig(), stream, tracker, compositor, e.log)

	region, err := resolveRegion(ctx, c, e, session)
	if err != nil {
		return err
	}

	stop := interruptible(ctx, cancel, func() {
		e.log.Info("Interrupted, stopping recording...")
	})
	if d := c.Duration("duration"); d > 0 {
		stop = withTimeout(stop, d)
	}

	e.log.Info("Press Ctrl+C to stop recording")
	captured, err := e.orch.Record(ctx, session, region, stop)
	if err != nil {
		return err
	}
	e.log.Info("Captured %d frames in %s", len(captured.Frames), captured.Elapsed.Round(time.Millisecond))

	summary := summarizer.NewBuilder().
		WithSource(summarizer.SourceInfo{
			Kind:      source,
			Input:     c.String("url"),
			Region:    region.String(),
			SessionID: captured.SessionID,
		}).
		WithCapture(summarizer.CaptureInfo{
			Frames:     len(captured.Frames),
			Duplicates: captured.Stats.Duplicates,
			Dropped:    captured.Stats.DroppedPaused + captured.Stats.DroppedLimit,
			Elapsed:    captured.Elapsed,
			AutoStop:   captured.AutoStop,
		})

	var result orchestrator.ExportResult
	if c.Bool("direct") && len(script) == 0 {
		result, err = e.orch.DirectSave(ctx, captured, opts, c.String("output"), progressLogger(e.log))
	} else {
		seq, oerr := e.orch.OpenEditor(captured)
		if oerr != nil {
			return oerr
		}
		frames, aerr := applyScript(e, seq, script, summary)
		if aerr != nil {
			return aerr
		}
		result, err = export(ctx, e, frames, opts, c.String("output"))
	}
	if err != nil {
		return err
	}

	return finish(c, e, summary, result)
}

func runConvert(c *cli.Context) error {
	input := c.Args().First()
	if input == "" {
		return errors.New(l10n.T("input file argument is required"))
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	opts, err := buildEncodeOptions(c, e.cfg)
	if err != nil {
		return err
	}
	script, err := sequence.ParseScript(c.String("edit"))
	if err != nil {
		return err
	}

	data, err := e.fs.ReadFile(input)
	if err != nil {
		return err
	}
	imported, err := importer.Decode(data)
	if err != nil {
		return fmt.Errorf("import %s: %w", input, err)
	}
	if !c.IsSet("loop") && imported.LoopCount > 0 {
		opts.LoopCount = imported.LoopCount
	}
	e.log.Info("Imported %d frames from %s", len(imported.Frames), input)

	seq, err := sequence.New(imported.Frames)
	if err != nil {
		return err
	}

	summary := summarizer.NewBuilder().
		WithSource(summarizer.SourceInfo{Kind: "file", Input: input})

	frames, err := applyScript(e, seq, script, summary)
	if err != nil {
		return err
	}

	result, err := export(c.Context, e, frames, opts, c.String("output"))
	if err != nil {
		return err
	}
	return finish(c, e, summary, result)
}

// resolveRegion takes --region, then --last-region, then asks on the
// terminal. The chosen region is remembered for --last-region.
func resolveRegion(ctx context.Context, c *cli.Context, e *env, session *capture.Session) (frame.Rect, error) {
	statePath := regionStatePath()

	var (
		region frame.Rect
		err    error
	)
	switch {
	case c.IsSet("region"):
		region, err = frame.ParseRect(c.String("region"))
	case c.Bool("last-region"):
		var ok bool
		region, ok, err = config.LoadRegion(e.fs, statePath)
		if err == nil && !ok {
			err = errors.New(l10n.T("no previous region recorded"))
		}
	default:
		region, err = session.SelectRegion(ctx, terminalPicker(os.Stdin, os.Stderr))
	}
	if err != nil {
		return frame.Rect{}, err
	}

	if err := config.SaveRegion(e.fs, statePath, region); err != nil {
		e.log.Warn("Failed to remember region: %v", err)
	}
	return region, nil
}

func regionStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "gifcap", "region.yaml")
}

// terminalPicker reads "x,y,w,h" from in. An empty line cancels.
func terminalPicker(in io.Reader, out io.Writer) ports.RegionPicker {
	return ports.RegionPickerFunc(func(ctx context.Context) (frame.Rect, error) {
		fmt.Fprint(out, l10n.T("Capture region (x,y,width,height): "))
		line, err := bufio.NewReader(in).ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" {
			if err != nil && err != io.EOF {
				return frame.Rect{}, err
			}
			return frame.Rect{}, ports.ErrRegionCancelled
		}
		return frame.ParseRect(line)
	})
}

func withTimeout(stop <-chan struct{}, d time.Duration) <-chan struct{} {
	out := make(chan struct{})
	go func() {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-stop:
		case <-timer.C:
		}
		close(out)
	}()
	return out
}

func applyScript(e *env, seq *sequence.Sequence, script sequence.Script, summary *summarizer.Builder) ([]frame.Frame, error) {
	if len(script) == 0 {
		return seq.Snapshot(), nil
	}
	before := seq.Len()
	if err := seq.Apply(script); err != nil {
		return nil, fmt.Errorf("edit: %w", err)
	}
	e.log.Info("Applied %s: %d -> %d frames", script, before, seq.Len())
	summary.WithEdits(script.String(), before, seq.Len())
	return seq.Snapshot(), nil
}

// export runs the encode as a job and logs its progress.
func export(ctx context.Context, e *env, frames []frame.Frame, opts ports.EncodeOptions, path string) (orchestrator.ExportResult, error) {
	j := e.orch.ExportAsync(ctx, frames, opts, path)
	for p := range j.Progress() {
		e.log.Debug("Encoding %3.0f%%", p*100)
	}
	return j.Wait(ctx)
}

func progressLogger(log ports.Logger) ports.ProgressFunc {
	return func(p float64) {
		log.Debug("Encoding %3.0f%%", p*100)
	}
}

// finish writes the optional summary and metrics files.
func finish(c *cli.Context, e *env, b *summarizer.Builder, result orchestrator.ExportResult) error {
	if path := c.String("summary"); path != "" {
		o := result.Options
		b.WithOutput(summarizer.OutputInfo{
			Path:            result.Path,
			Format:          string(result.Format),
			RequestedFormat: string(result.RequestedFormat),
			Backend:         result.Backend,
			FallbackUsed:    result.FallbackUsed,
			FrameCount:      result.FrameCount,
			Duration:        result.Duration,
			FileSize:        int64(result.Bytes),
			MaxSizeKB:       o.MaxSizeKB,
			Fits:            result.Fits,
			Colors:          o.MaxColors,
			Method:          string(o.Method),
			Dither:          o.Dither,
			LoopCount:       o.LoopCount,
			Elapsed:         result.Elapsed,
		}).WithAttempts(result.Attempts)

		if result.Format == ports.FormatMP4 {
			if info, err := mp4encoder.Inspect(result.Data); err == nil {
				b.WithVideo(summarizer.VideoInfo{
					Codec:     info.Codec,
					Width:     info.Width,
					Height:    info.Height,
					Samples:   info.Samples,
					Keyframes: info.Keyframes,
					Duration:  info.Duration,
				})
			}
		}

		w := summarizer.NewWriter(summarizer.NewMarkdownFormatter(), e.fs)
		if err := w.Write(path, b.Build()); err != nil {
			e.log.Error("Failed to write summary: %s", err)
		} else {
			e.log.Info("Summary saved to %s", path)
		}
	}

	if path := c.String("metrics-file"); path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			e.log.Error("Failed to write metrics: %s", err)
		}
	}
	return nil
}
