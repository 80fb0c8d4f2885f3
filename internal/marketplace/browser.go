package marketplace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Default browser settings.
const (
	DefaultPageTimeout = 30 * time.Second
	typingDelay        = 120 // milliseconds between keystrokes
	DefaultUserAgent   = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// BrowserOptions configures the Chromium instance.
type BrowserOptions struct {
	Headless    bool
	Timeout     time.Duration
	UserAgent   string
	ProxyServer string
	Logger      *slog.Logger
}

// PlaywrightBrowser drives a Chromium instance through playwright. The
// browser starts on the first Fetch and is reused until Close.
type PlaywrightBrowser struct {
	opts BrowserOptions
	log  *slog.Logger

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
}

// NewPlaywrightBrowser returns a browser that has not been started yet.
func NewPlaywrightBrowser(opts BrowserOptions) *PlaywrightBrowser {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultPageTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &PlaywrightBrowser{opts: opts, log: log.With("component", "browser")}
}

func (b *PlaywrightBrowser) start() error {
	if b.context != nil {
		return nil
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("starting playwright: %w", err)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(b.opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
		},
	}
	if b.opts.ProxyServer != "" {
		launch.Proxy = &playwright.Proxy{Server: b.opts.ProxyServer}
	}

	browser, err := pw.Chromium.Launch(launch)
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("launching chromium: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:       playwright.String(b.opts.UserAgent),
		AcceptDownloads: playwright.Bool(false),
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return fmt.Errorf("creating browser context: %w", err)
	}

	b.pw, b.browser, b.context = pw, browser, bctx
	b.log.Info("browser started", "headless", b.opts.Headless)
	return nil
}

// Fetch opens url in a new tab, waits for the DOM and returns the page
// content. Playwright calls cannot be interrupted, so cancellation is
// observed before the navigation and after it returns.
func (b *PlaywrightBrowser) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.start(); err != nil {
		return "", err
	}

	page, err := b.context.NewPage()
	if err != nil {
		return "", fmt.Errorf("opening page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(b.opts.Timeout.Milliseconds())),
	}); err != nil {
		return "", fmt.Errorf("navigating to %s: %w", url, err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	html, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return html, nil
}

// Login signs the shared browser context in. A form that cannot be filled
// in is reported after the wait, since the wait also serves people signing
// in by hand in a visible browser.
func (b *PlaywrightBrowser) Login(ctx context.Context, form LoginForm, creds Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.start(); err != nil {
		return err
	}

	page, err := b.context.NewPage()
	if err != nil {
		return fmt.Errorf("opening page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if _, err := page.Goto(form.URL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(b.opts.Timeout.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("navigating to %s: %w", form.URL, err)
	}

	formErr := fillLogin(page, form, creds, b.opts.Timeout)

	wait := creds.Wait
	if wait <= 0 {
		wait = DefaultLoginWait
	}
	b.log.Info("waiting on the sign-in page", "wait", wait)
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}
	return formErr
}

func fillLogin(page playwright.Page, form LoginForm, creds Credentials, timeout time.Duration) error {
	typing := playwright.LocatorPressSequentiallyOptions{
		Delay:   playwright.Float(typingDelay),
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	}
	if err := page.Locator(form.UsernameField).First().PressSequentially(creds.Username, typing); err != nil {
		return fmt.Errorf("typing username: %w", err)
	}
	if creds.Password == "" {
		return nil
	}
	if err := page.Locator(form.PasswordField).First().PressSequentially(creds.Password, typing); err != nil {
		return fmt.Errorf("typing password: %w", err)
	}
	if err := page.Locator(form.Submit).First().Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("submitting sign-in form: %w", err)
	}
	return nil
}

// Close shuts the browser down. It is safe to call on a browser that was
// never started.
func (b *PlaywrightBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	if b.context != nil {
		if err := b.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing context: %w", err))
		}
	}
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing browser: %w", err))
		}
	}
	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stopping playwright: %w", err))
		}
	}
	b.pw, b.browser, b.context = nil, nil, nil
	return errors.Join(errs...)
}
