package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shelterconnect/platform/pkg/ratelimit"
)

func TestComposite(t *testing.T) {
	t.Parallel()

	byUser := func(r *http.Request) string { return r.Header.Get("X-User-ID") }
	byPath := func(r *http.Request) string { return r.URL.Path }

	req := httptest.NewRequest(http.MethodPost, "/send-alert", nil)
	req.Header.Set("X-User-ID", "7")

	t.Run("joins parts", func(t *testing.T) {
		t.Parallel()
		key := ratelimit.Composite(byUser, byPath)(req)
		assert.Equal(t, "7:/send-alert", key)
	})

	t.Run("skips empty extractors", func(t *testing.T) {
		t.Parallel()
		empty := func(*http.Request) string { return "" }
		key := ratelimit.Composite(empty, byUser)(req)
		assert.Equal(t, "7", key)
	})

	t.Run("all empty means no key", func(t *testing.T) {
		t.Parallel()
		empty := func(*http.Request) string { return "" }
		assert.Empty(t, ratelimit.Composite(empty)(req))
		assert.Empty(t, ratelimit.Composite()(req))
	})

	t.Run("long keys are hashed", func(t *testing.T) {
		t.Parallel()
		long := func(*http.Request) string { return strings.Repeat("x", 200) }
		key := ratelimit.Composite(long)(req)
		assert.Len(t, key, 32)
		assert.NotContains(t, key, "x:")

		again := ratelimit.Composite(long)(req)
		assert.Equal(t, key, again, "hashing is deterministic")
	})
}
