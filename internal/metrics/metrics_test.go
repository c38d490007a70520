package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTransition(t *testing.T) {
	before := testutil.ToFloat64(taskTransitionsTotal.WithLabelValues("mark", "completed"))
	RecordTransition("mark", "completed")
	after := testutil.ToFloat64(taskTransitionsTotal.WithLabelValues("mark", "completed"))
	assert.Equal(t, before+1, after)
}

func TestRecordPoints_IgnoresNonPositive(t *testing.T) {
	before := testutil.ToFloat64(pointsAwardedTotal.WithLabelValues("task"))
	RecordPoints("task", 0)
	RecordPoints("task", 25)
	after := testutil.ToFloat64(pointsAwardedTotal.WithLabelValues("task"))
	assert.Equal(t, before+25, after)
}

func TestRecordJob(t *testing.T) {
	before := testutil.ToFloat64(jobRunsTotal.WithLabelValues("daily_reset", "error"))
	RecordJob("daily_reset", errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(jobRunsTotal.WithLabelValues("daily_reset", "error")))
}

func TestObserveHTTP_UnmatchedRoute(t *testing.T) {
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unmatched", "404"))
	ObserveHTTP("GET", "", 404, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}
