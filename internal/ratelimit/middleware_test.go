package ratelimit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voto/pkg/platform/middleware/metadata"
	"voto/pkg/requestcontext"
	"voto/pkg/testutil"
)

type failingStore struct{}

func (failingStore) Increment(context.Context, string, time.Duration, time.Time) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("redis unavailable")
}

func limitedHandler(t *testing.T, store Store, limit int) http.Handler {
	t.Helper()
	l, err := NewLimiter(store, limit, time.Minute)
	require.NoError(t, err)
	mw := Middleware(l, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	return mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func fromIP(t *testing.T, path, ip string) *http.Request {
	req := testutil.NewRequest(t, http.MethodPost, path)
	ctx := requestcontext.WithClientMetadata(req.Context(), ip, "test")
	ctx = requestcontext.WithTime(ctx, t0)
	return req.WithContext(ctx)
}

func TestMiddlewareBlocksAfterLimit(t *testing.T) {
	h := limitedHandler(t, NewInMemoryStore(), 2)

	for range 2 {
		rr := testutil.DoRequest(h, fromIP(t, "/candidates/c1/authenticate", "10.0.0.1"))
		testutil.AssertStatus(t, rr, http.StatusOK)
	}

	rr := testutil.DoRequest(h, fromIP(t, "/candidates/c1/authenticate", "10.0.0.1"))
	testutil.AssertStatusAndError(t, rr, http.StatusTooManyRequests, "rate_limit_exceeded")
	assert.NotEmpty(t, testutil.UnmarshalErrorResponse(t, rr)["error_description"])
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))
}

func TestMiddlewareBudgetsPerSubjectAndCaller(t *testing.T) {
	h := limitedHandler(t, NewInMemoryStore(), 1)

	testutil.AssertStatus(t, testutil.DoRequest(h, fromIP(t, "/candidates/c1/authenticate", "10.0.0.1")), http.StatusOK)
	testutil.AssertStatus(t, testutil.DoRequest(h, fromIP(t, "/candidates/c2/authenticate", "10.0.0.1")), http.StatusOK)
	testutil.AssertStatus(t, testutil.DoRequest(h, fromIP(t, "/candidates/c1/authenticate", "10.0.0.2")), http.StatusOK)
	testutil.AssertStatus(t, testutil.DoRequest(h, fromIP(t, "/candidates/c1/authenticate", "10.0.0.1")), http.StatusTooManyRequests)
}

func TestMiddlewareFailsOpen(t *testing.T) {
	h := limitedHandler(t, failingStore{}, 1)

	for range 3 {
		rr := testutil.DoRequest(h, fromIP(t, "/admins/a1/authenticate", "10.0.0.1"))
		testutil.AssertStatus(t, rr, http.StatusOK)
	}
}

func TestMiddlewareIgnoresForwardedForFromUntrustedClients(t *testing.T) {
	h := metadata.ClientMetadata(false)(limitedHandler(t, NewInMemoryStore(), 1))

	attempt := func(forwardedFor string) int {
		req := testutil.NewRequest(t, http.MethodPost, "/admins/a1/authenticate")
		req.RemoteAddr = "192.0.2.10:4000"
		req.Header.Set("X-Forwarded-For", forwardedFor)
		return testutil.DoRequest(h, req).Code
	}

	assert.Equal(t, http.StatusOK, attempt("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, attempt("203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, attempt("203.0.113.3"))
}
