package graphs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/psidex/chargraph/internal/lib"
)

type SnapshotOptions struct {
	Width  int `toml:"width" validate:"gt=0"`
	Height int `toml:"height" validate:"gt=0"`
	// Settle is how long the page gets to load its scripts and draw.
	Settle  lib.Duration `toml:"settle"`
	Timeout lib.Duration `toml:"timeout"`
	// ExecPath overrides the Chrome binary chromedp looks for.
	ExecPath string `toml:"exec_path"`
}

func DefaultSnapshotOptions() SnapshotOptions {
	return SnapshotOptions{
		Width:   1600,
		Height:  1200,
		Settle:  lib.DurationFrom(2 * time.Second),
		Timeout: lib.DurationFrom(30 * time.Second),
	}
}

// Snapshot defines a CliGraphProvider that opens the ECharts page in a headless
// Chrome and saves a screenshot of it.
type Snapshot struct {
	*ECharts
	opts   SnapshotOptions
	logger *slog.Logger
}

var _ CliGraphProvider = (*Snapshot)(nil)

func NewSnapshot(e *ECharts, o SnapshotOptions, logger *slog.Logger) *Snapshot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Snapshot{ECharts: e, opts: o, logger: logger}
}

func (s *Snapshot) RenderToFile(filename string) error {
	filename = filename + ".snapshot.png"

	dir, err := os.MkdirTemp("", "chargraph-snapshot")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	pagePath := filepath.Join(dir, "page")
	if err := s.ECharts.RenderToFile(pagePath); err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	shot, err := s.capture("file://" + pagePath + ".html")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, shot, 0o644)
}

func (s *Snapshot) capture(url string) ([]byte, error) {
	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), s.opts.Timeout.Duration)
	defer timeoutCancel()

	allocOpts := chromedp.DefaultExecAllocatorOptions[:]
	if s.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(s.opts.ExecPath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(timeoutCtx, allocOpts...)
	defer allocCancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	// The page pulls echarts from a CDN; a failed load leaves a blank chart.
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		if ev, ok := ev.(*network.EventLoadingFailed); ok {
			s.logger.Warn("snapshot resource failed to load", "err", ev.ErrorText)
		}
	})

	var shot []byte
	err := chromedp.Run(ctx,
		network.Enable(),
		chromedp.EmulateViewport(int64(s.opts.Width), int64(s.opts.Height)),
		chromedp.Navigate(url),
		chromedp.Sleep(s.opts.Settle.Duration),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			shot, err = page.CaptureScreenshot().WithFormat(page.CaptureScreenshotFormatPng).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("capture snapshot: %w", err)
	}
	return shot, nil
}
