// Package resty provides the vendor provider adapters, built on a resty
// HTTP client. Three variants cover the observed vendor surfaces: direct
// URL construction (Sigma-Aldrich), cookie-gated form submission (TCI),
// and a JSON API with category pagination (Thermo Fisher).
package resty

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/fwojciec/sdsget"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
)

// defaultUserAgent mirrors a current desktop Chrome. Vendors serve
// degraded or blocked pages to obvious non-browser clients.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/126.0.0.0 Safari/537.36"

const (
	htmlAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"
	pdfAccept  = "application/pdf,application/octet-stream;q=0.9,*/*;q=0.8"
)

type options struct {
	timeout     time.Duration
	transport   http.RoundTripper
	impersonate bool
	logger      *slog.Logger
}

// Option configures a provider's HTTP client.
type Option func(*options)

// WithTimeout overrides the provider's default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithTransport replaces the underlying HTTP transport. Used by tests to
// stub vendor responses; it also disables browser impersonation.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// WithLogger sets the logger for provider warnings.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// newClient builds a resty client with a cookie jar, browser-like defaults
// and a bounded timeout.
func newClient(defaultTimeout time.Duration, impersonate bool, opts []Option) (*resty.Client, *options) {
	o := &options{
		timeout:     defaultTimeout,
		impersonate: impersonate,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	client := resty.New()
	if jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List}); err == nil {
		client.SetCookieJar(jar)
	}
	client.SetTimeout(o.timeout)
	client.SetHeader("User-Agent", defaultUserAgent)

	switch {
	case o.transport != nil:
		client.SetTransport(o.transport)
	case o.impersonate:
		// Impersonating transport: vendors behind bot protection reject
		// the default Go TLS/header fingerprint.
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	return client, o
}

// do executes an immutable document request and returns the transport
// response for validation.
func do(ctx context.Context, client *resty.Client, req *sdsget.DocumentRequest) (*sdsget.Response, error) {
	r := client.R().SetContext(ctx).SetHeaders(req.Headers)
	if len(req.Form) > 0 {
		r.SetFormData(req.Form)
	}

	res, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return nil, transportError(err)
	}

	return &sdsget.Response{
		StatusCode:  res.StatusCode(),
		ContentType: res.Header().Get("Content-Type"),
		Disposition: res.Header().Get("Content-Disposition"),
		Body:        res.Body(),
		URL:         finalURL(res, req.URL),
	}, nil
}

// transportError maps a client-side failure to the ETRANSPORT code,
// distinguishing timeouts in the message.
func transportError(err error) error {
	var uerr *url.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &uerr) && uerr.Timeout()) {
		return sdsget.Errorf(sdsget.ETRANSPORT, "request timed out: %v", err)
	}
	return sdsget.Errorf(sdsget.ETRANSPORT, "request failed: %v", err)
}

// finalURL returns the URL the response was served from, following
// redirects, falling back to the requested URL.
func finalURL(res *resty.Response, fallback string) string {
	if res.RawResponse != nil && res.RawResponse.Request != nil && res.RawResponse.Request.URL != nil {
		return res.RawResponse.Request.URL.String()
	}
	return fallback
}

// baseURL reduces a page URL to its scheme://host origin.
func baseURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", sdsget.Errorf(sdsget.EINVALID, "invalid page URL %q", rawURL)
	}
	return u.Scheme + "://" + u.Host, nil
}

// acceptLanguage builds a locale-derived Accept-Language header value.
func acceptLanguage(language, country string) string {
	return language + "-" + country + "," + language + ";q=0.9,en-US;q=0.8,en;q=0.7"
}
