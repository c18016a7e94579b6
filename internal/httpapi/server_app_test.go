package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"crystal/pkg/crystal"
	"crystal/pkg/types"
)

var _ Service = (*crystal.App)(nil)

func TestNewMux_WithApp(t *testing.T) {
	reg := crystal.NewRegistry()
	reg.Register("src/config", crystal.MapOf("db", crystal.MapOf("cache", func(*crystal.App) (any, error) { return "c", nil })))
	app := crystal.New(t.TempDir(), crystal.WithRegistry(reg), crystal.WithEnv("test"))
	srv := httptest.NewServer(NewMux(app))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/readyz?wait=5s")
	if err != nil {
		t.Fatalf("GET /readyz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz=%d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()
	var st types.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !st.Ready || st.ID != app.ID() || len(st.Resources) != 1 || st.Resources[0].Handle != "string" {
		t.Fatalf("status=%+v", st)
	}
}

func TestNewMux_WithFailedApp(t *testing.T) {
	reg := crystal.NewRegistry()
	reg.Register("src/config", crystal.MapOf("db", crystal.MapOf("nope", true)))
	app := crystal.New(t.TempDir(), crystal.WithRegistry(reg), crystal.WithEnv("test"), crystal.WithoutBuiltinDrivers())
	w := httptest.NewRecorder()
	NewMux(app).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz?wait=5s", nil))
	if w.Code != http.StatusServiceUnavailable || w.Body.String() != "failed" {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
}
