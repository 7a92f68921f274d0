package rod_test

import (
	"testing"

	sdsrod "github.com/fwojciec/sdsget/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionFromCookies(t *testing.T) {
	t.Parallel()

	t.Run("maps cookie names to values", func(t *testing.T) {
		t.Parallel()

		session := sdsrod.SessionFromCookies([]*proto.NetworkCookie{
			{Name: "JSESSIONID", Value: "abc123"},
			{Name: "acceleratorSecureGUID", Value: "def456"},
		})

		require.NotNil(t, session)
		assert.Equal(t, "abc123", session.Cookies["JSESSIONID"])
		assert.Equal(t, "def456", session.Cookies["acceleratorSecureGUID"])
	})

	t.Run("suggests browser-like request headers", func(t *testing.T) {
		t.Parallel()

		session := sdsrod.SessionFromCookies(nil)
		assert.NotEmpty(t, session.Headers["Accept"])
		assert.NotEmpty(t, session.Headers["Accept-Language"])
		assert.Empty(t, session.Cookies)
	})
}

func TestRefresher_Close(t *testing.T) {
	t.Parallel()

	// Close before any Refresh must not launch or touch a browser.
	r := sdsrod.NewRefresher()
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
}
