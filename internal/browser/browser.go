package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chromedp/chromedp"

	"webgif/internal/logging"
)

// Options configures a browser launch.
type Options struct {
	// ExecPath is the Chrome/Chromium binary. Empty lets chromedp search the
	// usual install locations.
	ExecPath  string
	Headless  bool
	UserAgent string
	// OmitBackground makes the default page background transparent in
	// screenshots.
	OmitBackground bool
}

// Browser is a running headless browser session.
type Browser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	opts        Options
	logger      *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// AllocatorOptions returns the chromedp exec allocator options for opts:
// the chromedp defaults plus sandbox disabled, insecure content allowed and
// certificate errors ignored.
func AllocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.NoSandbox,
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("allow-running-insecure-content", true),
		chromedp.IgnoreCertErrors,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("hide-scrollbars", true),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	return allocOpts
}

// Launch starts a browser process. The browser outlives ctx's deadline only
// as long as ctx itself is not canceled; call Close when done.
func Launch(ctx context.Context, opts Options, logger *slog.Logger) (*Browser, error) {
	logger = logging.NewComponentLogger(logger, "browser")

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, AllocatorOptions(opts)...)
	browserCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			logger.Debug("devtools error", logging.String("detail", fmt.Sprintf(format, args...)))
		}),
	)

	// An empty Run starts the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	logger.Debug("browser started",
		logging.String("exec_path", opts.ExecPath),
		logging.Bool("headless", opts.Headless),
	)
	return &Browser{
		ctx:         browserCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		opts:        opts,
		logger:      logger,
	}, nil
}

// NewPage opens a new tab with a width×height viewport.
func (b *Browser) NewPage(ctx context.Context, width, height int) (*Page, error) {
	tabCtx, tabCancel := chromedp.NewContext(b.ctx)
	p := &Page{ctx: tabCtx, cancel: tabCancel, omitBackground: b.opts.OmitBackground}

	// The first Run on a tab must use the tab context itself; a derived
	// context would close the target when it is canceled.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}
	if err := p.run(ctx, chromedp.EmulateViewport(int64(width), int64(height))); err != nil {
		tabCancel()
		return nil, fmt.Errorf("set viewport %dx%d: %w", width, height, err)
	}
	return p, nil
}

// Close shuts the browser down gracefully, then releases the allocator.
func (b *Browser) Close() error {
	b.closeOnce.Do(func() {
		b.closeErr = chromedp.Cancel(b.ctx)
		b.cancel()
		b.allocCancel()
	})
	return b.closeErr
}
