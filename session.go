package sdsget

import "context"

// ProviderSession is the cookie/header bundle that authenticates requests
// against a session-gated vendor. A session is owned by exactly one
// provider adapter for the duration of a run and is never shared across
// vendors. It is mutated only by session establishment and by a token
// refresh after successful metadata extraction.
type ProviderSession struct {
	Cookies   map[string]string `json:"cookies"`
	Headers   map[string]string `json:"headers"`
	CSRFToken string            `json:"csrfToken,omitempty"`
}

// SessionStore persists a session bundle between runs. Load returns the
// cached bundle verbatim with no freshness check; staleness is discovered
// downstream as an HTTP or validation failure.
type SessionStore interface {
	// Load returns the cached session. Returns ENOTFOUND if no bundle
	// has been saved.
	Load(ctx context.Context) (*ProviderSession, error)

	// Save persists the session bundle, replacing any previous one.
	Save(ctx context.Context, session *ProviderSession) error
}

// SessionRefresher mints a fresh session bundle for a seed URL. It is the
// boundary to the external session-refresh collaborator; implementations
// may back it with any browser automation mechanism. Refresh must complete
// within a bounded timeout.
type SessionRefresher interface {
	// Refresh navigates the seed URL and returns the harvested
	// cookie/header bundle. Returns ESESSION on any failure.
	Refresh(ctx context.Context, seedURL string) (*ProviderSession, error)

	// Close releases collaborator resources.
	// Must be called when the SessionRefresher is no longer needed.
	Close() error
}
