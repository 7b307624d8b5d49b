package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecords(t *testing.T) {
	c := NewCollector("bizscope")

	c.RecordProjectCreated()
	c.RecordProjectCreated()
	c.RecordGeneration("completed", 3*time.Second)
	c.RecordGeneration("error", time.Second)
	c.RecordSectionRegeneration("keyFeatures", nil)
	c.RecordSectionRegeneration("keyFeatures", errors.New("boom"))
	c.RecordStaleSwept(2)
	c.RecordLLMRequest(nil, time.Second)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.ProjectsCreated))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.Generations.WithLabelValues("completed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.SectionRegenerations.WithLabelValues("keyFeatures", "error")))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.StaleSwept))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.LLMRequests.WithLabelValues("success")))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.RecordHTTPRequest("GET", "/health", 200, time.Millisecond)
		c.RecordProjectCreated()
		c.RecordGeneration("completed", time.Second)
		c.RecordSectionRegeneration("swotAnalysis", nil)
		c.RecordQueueRejection()
		c.RecordStaleSwept(1)
		c.RecordLLMRequest(nil, time.Second)
	})
}

func TestCollectorHandler(t *testing.T) {
	c := NewCollector("bizscope")
	c.RecordHTTPRequest("GET", "/api/projects", 200, time.Millisecond)

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `bizscope_http_requests_total{method="GET",route="/api/projects",status="200"} 1`)
}
