package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit(t *testing.T) {
	// Call Init multiple times to test idempotency.
	Init()
	Init()

	if pagesTotal == nil || recordsTotal == nil || failuresTotal == nil ||
		fetchDurationSeconds == nil || httpRequestsTotal == nil || httpRequestDurationSeconds == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}
}

func TestObservePipelineMetrics(t *testing.T) {
	Init()

	ObservePage("init-test", 200, 1500*time.Millisecond)
	ObservePage("init-test", 200, time.Second)
	ObserveRecord("init-test")
	ObserveFailure("init-test", FailureStructure)

	if val := testutil.ToFloat64(pagesTotal.WithLabelValues("init-test", "200")); val != 2 {
		t.Errorf("expected 2 pages, got %f", val)
	}
	if val := testutil.ToFloat64(recordsTotal.WithLabelValues("init-test")); val != 1 {
		t.Errorf("expected 1 record, got %f", val)
	}
	if val := testutil.ToFloat64(failuresTotal.WithLabelValues("init-test", FailureStructure)); val != 1 {
		t.Errorf("expected 1 failure, got %f", val)
	}
	if n := testutil.CollectAndCount(fetchDurationSeconds); n == 0 {
		t.Error("expected fetch duration samples")
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	Init()
	ObserveRecord("handler-test")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if !strings.Contains(rec.Body.String(), `fifacrawler_records_total{pipeline="handler-test"} 1`) {
		t.Fatalf("expected records counter in exposition, got:\n%s", rec.Body.String())
	}
}
