package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClassifyStatus(t *testing.T) {
	tests := map[int]string{200: "2xx", 204: "2xx", 302: "3xx", 404: "4xx", 500: "5xx", 99: "unknown", 700: "unknown"}
	for code, want := range tests {
		if got := classifyStatus(code); got != want {
			t.Errorf("classifyStatus(%d) = %s, want %s", code, got, want)
		}
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	RecordRequest("GET", "/api/health", 200, 10*time.Millisecond)
	RecordAttempt("exact", "hit")
	RecordResolved("exact", 95)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`sheetgen_http_requests_total{endpoint="/api/health",method="GET",status="2xx"}`,
		`sheetgen_resolver_attempts_total{outcome="hit",strategy="exact"}`,
		`sheetgen_resolver_confidence_bucket`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}
