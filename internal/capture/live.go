// internal/capture/live.go
package capture

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/layerlift/api/schemas"
)

// Options configure a live capture session.
type Options struct {
	Headless          bool
	DisableGPU        bool
	Viewport          schemas.Viewport
	NavigationTimeout time.Duration
	// SettleDelay runs after navigation so late layout and web fonts stop
	// moving boxes before they are measured.
	SettleDelay time.Duration
	// RateLimit paces page loads across a multi-URL session, in pages per
	// second. Zero leaves the session unpaced.
	RateLimit float64
	// ExtraArgs are additional browser flags, "name" or "name=value", with
	// or without the leading dashes.
	ExtraArgs []string
}

// SetDefaults fills unset fields with workable values.
func (o *Options) SetDefaults() {
	if o.Viewport.Width <= 0 {
		o.Viewport.Width = 1280
	}
	if o.Viewport.Height <= 0 {
		o.Viewport.Height = 800
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = 60 * time.Second
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = 1500 * time.Millisecond
	}
}

// Capturer drives a headless browser and serializes each visited page into
// the capture contract.
type Capturer struct {
	opts    Options
	log     *zap.Logger
	limiter *rate.Limiter
}

// NewCapturer builds a capturer. A nil logger disables logging.
func NewCapturer(opts Options, logger *zap.Logger) *Capturer {
	opts.SetDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return &Capturer{
		opts:    opts,
		log:     logger.Named("capture"),
		limiter: limiter,
	}
}

// execOptions translates capture options into chromedp allocator options.
func execOptions(opts Options) []chromedp.ExecAllocatorOption {
	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.Headless {
		execOpts = append(execOpts, chromedp.Headless)
	}
	if opts.DisableGPU {
		execOpts = append(execOpts, chromedp.DisableGPU)
	}
	for _, arg := range opts.ExtraArgs {
		arg = strings.TrimPrefix(arg, "--")
		if key, value, found := strings.Cut(arg, "="); found {
			execOpts = append(execOpts, chromedp.Flag(key, value))
		} else if arg != "" {
			execOpts = append(execOpts, chromedp.Flag(arg, true))
		}
	}
	return execOpts
}

// session opens a browser context over a fresh allocator. The returned
// cancel tears down both.
func (c *Capturer) session(ctx context.Context) (context.Context, context.CancelFunc) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, execOptions(c.opts)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	return browserCtx, func() {
		browserCancel()
		allocCancel()
	}
}

// Capture visits one URL and returns its capture.
func (c *Capturer) Capture(ctx context.Context, url string) (*schemas.Capture, error) {
	browserCtx, cancel := c.session(ctx)
	defer cancel()
	return c.capturePage(browserCtx, url)
}

// CaptureAll visits every URL in one browser session, pacing page loads by
// the configured rate limit. Pages that fail to capture are logged and
// skipped; the returned error reports session-level failures only.
func (c *Capturer) CaptureAll(ctx context.Context, urls []string) ([]*schemas.Capture, error) {
	browserCtx, cancel := c.session(ctx)
	defer cancel()

	captures := make([]*schemas.Capture, 0, len(urls))
	for _, url := range urls {
		if err := c.limiter.Wait(ctx); err != nil {
			return captures, err
		}
		capture, err := c.capturePage(browserCtx, url)
		if err != nil {
			if ctx.Err() != nil {
				return captures, ctx.Err()
			}
			c.log.Warn("page capture failed, skipping",
				zap.String("url", url),
				zap.Error(err))
			continue
		}
		captures = append(captures, capture)
	}
	return captures, nil
}

func (c *Capturer) capturePage(ctx context.Context, url string) (*schemas.Capture, error) {
	script, err := Script()
	if err != nil {
		return nil, err
	}

	navCtx, cancel := context.WithTimeout(ctx, c.opts.NavigationTimeout)
	defer cancel()

	c.log.Debug("navigating", zap.String("url", url))
	err = chromedp.Run(navCtx,
		chromedp.EmulateViewport(int64(c.opts.Viewport.Width), int64(c.opts.Viewport.Height)),
		chromedp.Navigate(url),
	)
	if err != nil {
		if navCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("navigation timed out after %s: %w", c.opts.NavigationTimeout, err)
		}
		return nil, fmt.Errorf("navigation failed: %w", err)
	}

	if err := chromedp.Run(ctx, chromedp.Sleep(c.opts.SettleDelay)); err != nil {
		return nil, err
	}

	var capture schemas.Capture
	err = chromedp.Run(ctx,
		chromedp.Evaluate(script, &capture, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithReturnByValue(true).WithAwaitPromise(true).WithSilent(true)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("evaluating capture script: %w", err)
	}
	if err := capture.Validate(); err != nil {
		return nil, fmt.Errorf("capture from %s is unusable: %w", url, err)
	}

	c.log.Info("page captured",
		zap.String("url", url),
		zap.Int("boxes", len(capture.Boxes)),
		zap.Int("stylesheets", len(capture.Stylesheets)))
	return &capture, nil
}
