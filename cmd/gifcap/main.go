// Package main provides the CLI entry point for gifcap.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/gifcap/pkg/adapters/webpencoder"
)

var version = "dev"

func main() {
	app := newApp()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := app.RunContext(ctx, os.Args)
	webpencoder.Shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "gifcap",
		Usage:   l10n.T("Record the screen as an animated GIF, WebP, APNG or MP4"),
		Version: version,
		Description: l10n.T("gifcap records a screen region or a web page, lets you edit the frames " +
			"with a script and encodes them under an optional size budget."),
		Commands: []*cli.Command{
			{
				Name:        "record",
				Usage:       l10n.T("Record a screen region or a web page"),
				Description: l10n.T("Record until Ctrl+C, --duration or a capture limit, then edit and encode the frames."),
				Flags:       concat(recordFlags(), encodeFlags(), commonFlags()),
				Action:      runRecord,
			},
			{
				Name:        "convert",
				Usage:       l10n.T("Re-encode an existing GIF, PNG, JPEG or WebP file"),
				Description: l10n.T("Import the frames of a file, apply --edit and encode them again."),
				ArgsUsage:   "<input>",
				Flags:       concat(encodeFlags(), commonFlags()),
				Action:      runConvert,
			},
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, l10n.F("gifcap version %s", version))
					return nil
				},
			},
		},
	}
}

func concat(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// interruptible returns a channel closed on the first SIGINT or SIGTERM.
// A second signal cancels ctx.
func interruptible(ctx context.Context, cancel context.CancelFunc, onFirst func()) <-chan struct{} {
	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			onFirst()
			close(stop)
		case <-ctx.Done():
			return
		}
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	return stop
}
