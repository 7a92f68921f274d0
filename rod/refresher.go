// Package rod provides a browser-backed implementation of
// sdsget.SessionRefresher. Navigating a vendor page in a real browser lets
// the vendor's scripts set the cookies a plain HTTP client cannot mint.
package rod

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/sdsget"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultRefreshTimeout bounds one session refresh, navigation included.
const DefaultRefreshTimeout = 120 * time.Second

// Ensure Refresher implements sdsget.SessionRefresher at compile time.
var _ sdsget.SessionRefresher = (*Refresher)(nil)

// Refresher mints session bundles by navigating the seed URL in a headless
// Chrome browser and harvesting the resulting cookies. The browser is
// launched lazily on the first Refresh call, so constructing a Refresher
// is cheap when a cached session ends up being reused.
type Refresher struct {
	timeout time.Duration

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// Option configures a Refresher.
type Option func(*Refresher)

// WithTimeout sets the per-refresh timeout.
// Defaults to DefaultRefreshTimeout (120s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(r *Refresher) {
		r.timeout = d
	}
}

// NewRefresher creates a new Refresher.
// Close must be called when the Refresher is no longer needed.
func NewRefresher(opts ...Option) *Refresher {
	r := &Refresher{timeout: DefaultRefreshTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh navigates the seed URL, waits for the page to load, and returns
// the harvested cookie/header bundle. Returns ESESSION on any failure.
func (r *Refresher) Refresh(ctx context.Context, seedURL string) (*sdsget.ProviderSession, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, sdsget.Errorf(sdsget.ESESSION, "launching browser: %v", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, sdsget.Errorf(sdsget.ESESSION, "opening page: %v", err)
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(seedURL); err != nil {
		return nil, sdsget.Errorf(sdsget.ESESSION, "navigating %s: %v", seedURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, sdsget.Errorf(sdsget.ESESSION, "waiting for %s to load: %v", seedURL, err)
	}

	cookies, err := page.Cookies(nil)
	if err != nil {
		return nil, sdsget.Errorf(sdsget.ESESSION, "reading cookies: %v", err)
	}

	return SessionFromCookies(cookies), nil
}

// SessionFromCookies builds a session bundle from browser cookies and the
// suggested request headers that mirror the browser context defaults.
func SessionFromCookies(cookies []*proto.NetworkCookie) *sdsget.ProviderSession {
	session := &sdsget.ProviderSession{
		Cookies: make(map[string]string, len(cookies)),
		Headers: map[string]string{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
			"Accept-Language": "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7",
			"Cache-Control":   "no-cache",
			"Pragma":          "no-cache",
		},
	}
	for _, c := range cookies {
		session.Cookies[c.Name] = c.Value
	}
	return session
}

// ensureBrowser launches and connects the browser on first use.
func (r *Refresher) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New().Headless(true)
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill() // Clean up launched process on connection failure
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	r.browser = browser
	r.launcher = l
	return browser, nil
}

// Close releases browser resources. Safe to call when no browser was ever
// launched.
func (r *Refresher) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	return err
}
