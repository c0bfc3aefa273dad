package metrics_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/headlines/internal/cache"
	"github.com/jonesrussell/north-cloud/headlines/internal/metrics"
)

func TestMetrics_ObservesCacheEvents(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	calls := 0
	cv := cache.New(func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("boom")
		}
		return 1, nil
	}, nil, cache.WithTTL(time.Hour), cache.WithObserver(m), cache.WithName("bbc"))

	_, err := cv.Get(context.Background())
	require.Error(t, err)
	for range 3 {
		_, err = cv.Get(context.Background())
		require.NoError(t, err)
	}

	assert.InDelta(t, 1, testutil.ToFloat64(m.Refreshes.WithLabelValues("bbc", "failure")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Refreshes.WithLabelValues("bbc", "success")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.CacheHits.WithLabelValues("bbc")), 0)
	assert.Positive(t, testutil.ToFloat64(m.LastRefresh.WithLabelValues("bbc")))
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.Hit("guardian")
	m.Joined("guardian")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `headlines_cache_hits_total{source="guardian"} 1`)
	assert.Contains(t, string(body), `headlines_cache_joins_total{source="guardian"} 1`)
}
