package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/v1/titles", "200"))
	HTTPRequestsTotal.WithLabelValues("GET", "/v1/titles", "200").Inc()
	assert.InDelta(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/v1/titles", "200")), 0.0001)

	before = testutil.ToFloat64(RateLimitHits)
	RateLimitHits.Inc()
	assert.InDelta(t, before+1, testutil.ToFloat64(RateLimitHits), 0.0001)

	HTTPRequestDuration.WithLabelValues("GET", "/v1/titles").Observe(0.02)
	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration))
}
