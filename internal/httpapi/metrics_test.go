package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"crystal/pkg/types"
)

func TestMetricsMiddleware_CountsByRouteAndStatus(t *testing.T) {
	svc := &mockService{status: types.StatusResponse{State: "pending"}}
	mux := NewMux(svc)

	loading := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/readyz", http.MethodGet, "503"))
	status := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/status", http.MethodGet, "200"))

	for _, p := range []string{"/readyz", "/readyz", "/status"} {
		mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/readyz", http.MethodGet, "503")); got != loading+2 {
		t.Fatalf("/readyz 503 count=%v want %v", got, loading+2)
	}
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/status", http.MethodGet, "200")); got != status+1 {
		t.Fatalf("/status 200 count=%v want %v", got, status+1)
	}
	if got := testutil.ToFloat64(httpInflight.WithLabelValues(http.MethodGet)); got != 0 {
		t.Fatalf("inflight=%v after requests finished", got)
	}
}

func TestItoa(t *testing.T) {
	for n, want := range map[int]string{0: "0", 7: "7", 200: "200", 503: "503"} {
		if got := itoa(n); got != want {
			t.Fatalf("itoa(%d)=%q", n, got)
		}
	}
}
