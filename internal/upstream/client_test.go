package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{
		WithHTTPClient(srv.Client()),
		WithRateLimit(1000),
		WithBackoff(time.Millisecond, 5*time.Millisecond),
	}, opts...)
	return NewClient(srv.URL+"/", opts...)
}

func TestFetchSite_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/sites", r.URL.Path)
		assert.Equal(t, "100 Main St, Austin, TX", r.URL.Query().Get("address"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"scores": {"overall_score": 42.5, "price_score": 0.1, "price_color": "RED"},
			"metrics": {"enrollmentScore": 1800, "rentPerSfYear": 32.5, "zoningCode": "R-1", "state": "TX"}
		}`))
	}, WithAPIKey("secret"))

	snap, err := c.FetchSite(context.Background(), "100 Main St, Austin, TX")
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.NotNil(t, snap.Scores)
	require.NotNil(t, snap.Scores.OverallScore)
	assert.InDelta(t, 42.5, *snap.Scores.OverallScore, 0.001)
	require.NotNil(t, snap.Scores.PriceColor)
	assert.Equal(t, "RED", *snap.Scores.PriceColor)
	assert.Nil(t, snap.Scores.ZoningScore)

	require.NotNil(t, snap.Metrics)
	require.NotNil(t, snap.Metrics.RentPerSfYear)
	assert.InDelta(t, 32.5, *snap.Metrics.RentPerSfYear, 0.001)
	assert.Equal(t, "R-1", *snap.Metrics.ZoningCode)
	assert.Nil(t, snap.Metrics.WealthScore)
}

func TestFetchSite_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	snap, err := c.FetchSite(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestFetchSite_RetriesTransient(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"scores": null, "metrics": {"city": "Austin"}}`))
	}, WithMaxAttempts(3))

	snap, err := c.FetchSite(context.Background(), "addr")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Nil(t, snap.Scores)
	assert.Equal(t, "Austin", *snap.Metrics.City)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchSite_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}, WithMaxAttempts(2))

	_, err := c.FetchSite(context.Background(), "addr")
	require.Error(t, err)
	var te *TransientError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusTooManyRequests, te.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchSite_PermanentErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}, WithMaxAttempts(5))

	_, err := c.FetchSite(context.Background(), "addr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.False(t, IsTransient(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchSite_BadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	_, err := c.FetchSite(context.Background(), "addr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream: parse response")
}

func TestFetchSite_EmptyAddress(t *testing.T) {
	c := NewClient("http://127.0.0.1:0")
	_, err := c.FetchSite(context.Background(), "  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address is required")
}

func TestFetchSite_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, WithMaxAttempts(10), WithBackoff(time.Second, time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.FetchSite(ctx, "addr")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}
