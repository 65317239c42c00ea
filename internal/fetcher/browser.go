package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/IshaanNene/WedScrape/internal/config"
	"github.com/IshaanNene/WedScrape/internal/types"
)

// BrowserRenderer renders pages in one headless Chromium session via Rod.
// The session is acquired once and reused for every URL of a run.
type BrowserRenderer struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      *config.BrowserConfig
	logger   *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewBrowserRenderer launches Chromium with the configured flags and connects to it.
func NewBrowserRenderer(cfg *config.BrowserConfig, logger *slog.Logger) (*BrowserRenderer, error) {
	br := &BrowserRenderer{
		cfg:    cfg,
		logger: logger.With("component", "browser_renderer"),
	}

	l := launcher.New().
		Headless(cfg.Headless).
		Set("window-size", strconv.Itoa(cfg.WindowWidth)+","+strconv.Itoa(cfg.WindowHeight)).
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled").
		Set("log-level", "3")
	if cfg.DisableGPU {
		l = l.Set("disable-gpu")
	}
	if cfg.NoSandbox {
		l = l.NoSandbox(true)
	}
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: launch: %w", types.ErrBrowserStart, err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: connect: %w", types.ErrBrowserStart, err)
	}

	br.browser = browser
	br.launcher = l

	br.logger.Info("browser renderer ready",
		"headless", cfg.Headless,
		"window", fmt.Sprintf("%dx%d", cfg.WindowWidth, cfg.WindowHeight),
		"stealth", cfg.Stealth,
		"ready_selector", cfg.ReadySelector,
		"wait", cfg.Wait,
	)

	return br, nil
}

// Render navigates to url, waits for the page and returns the rendered HTML.
func (br *BrowserRenderer) Render(ctx context.Context, url string) (*types.Page, error) {
	br.mu.Lock()
	defer br.mu.Unlock()
	if br.closed {
		return nil, types.ErrRendererNotReady
	}

	start := time.Now()

	page, err := br.newPage()
	if err != nil {
		return nil, &types.NavigationError{URL: url, Err: err}
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: br.cfg.UserAgent}); err != nil {
		br.logger.Warn("failed to set user agent", "error", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             br.cfg.WindowWidth,
		Height:            br.cfg.WindowHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		br.logger.Warn("failed to set viewport", "error", err)
	}

	if err := page.Timeout(br.cfg.NavigateTimeout).Navigate(url); err != nil {
		return nil, &types.NavigationError{URL: url, Err: err}
	}
	if err := page.Timeout(br.cfg.NavigateTimeout).WaitLoad(); err != nil {
		br.logger.Warn("page load timeout, continuing", "url", url, "error", err)
	}

	ready := br.wait(ctx, page, url)

	html, err := page.HTML()
	if err != nil {
		return nil, &types.NavigationError{URL: url, Err: err}
	}

	finalURL := url
	if info, err := page.Info(); err == nil && info != nil {
		finalURL = info.URL
	}

	p := types.NewPage(url, finalURL, []byte(html), time.Since(start))
	p.Ready = ready

	br.logger.Debug("render complete",
		"url", url,
		"final_url", finalURL,
		"size", len(html),
		"ready", ready,
		"duration", p.RenderDuration,
	)

	return p, nil
}

// wait holds the page until the ready selector appears or cfg.Wait elapses.
// Without a selector, or with FixedWait, it sleeps for the full cfg.Wait.
// A page that never becomes ready is still returned; its data may be incomplete.
func (br *BrowserRenderer) wait(ctx context.Context, page *rod.Page, url string) bool {
	if br.cfg.ReadySelector == "" || br.cfg.FixedWait {
		if br.cfg.Wait <= 0 {
			return true
		}
		timer := time.NewTimer(br.cfg.Wait)
		defer timer.Stop()
		select {
		case <-timer.C:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if _, err := page.Timeout(br.cfg.Wait).Element(br.cfg.ReadySelector); err != nil {
		br.logger.Warn("ready selector not found, continuing",
			"url", url,
			"selector", br.cfg.ReadySelector,
			"wait", br.cfg.Wait,
			"error", err,
		)
		return false
	}
	return true
}

func (br *BrowserRenderer) newPage() (*rod.Page, error) {
	if br.cfg.Stealth {
		page, err := stealth.Page(br.browser)
		if err != nil {
			return nil, fmt.Errorf("stealth page: %w", err)
		}
		return page, nil
	}
	return br.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
}

// Close shuts down the browser and releases resources.
func (br *BrowserRenderer) Close() error {
	br.mu.Lock()
	defer br.mu.Unlock()
	if br.closed {
		return nil
	}
	br.closed = true

	var err error
	if br.browser != nil {
		err = br.browser.Close()
	}
	if br.launcher != nil {
		br.launcher.Cleanup()
	}
	br.logger.Debug("browser renderer closed")
	return err
}

// Type returns the renderer type identifier.
func (br *BrowserRenderer) Type() string {
	return "browser"
}
