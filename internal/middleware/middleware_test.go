package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPanicRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := PanicRecovery(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stok", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"detail"`) {
		t.Errorf("Expected detail body, got %s", rec.Body.String())
	}
	if logs.Len() != 1 {
		t.Errorf("Expected one error log, got %d", logs.Len())
	}
}

func TestAPILoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewAPILoggingMiddleware(zap.New(core))
	h := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/cari/9", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected one access log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(404) || fields["path"] != "/api/cari/9" {
		t.Errorf("Unexpected fields %v", fields)
	}
	if entries[0].Level != zap.WarnLevel {
		t.Errorf("Expected warn level for 404, got %v", entries[0].Level)
	}
}

func TestMetricPath(t *testing.T) {
	tests := map[string]string{
		"/api/stok":                  "/api/stok",
		"/api/stok/12":               "/api/stok/{id}",
		"/api/is-prosesi/3/maddeler": "/api/is-prosesi/{id}/maddeler",
	}
	for in, want := range tests {
		if got := metricPath(in); got != want {
			t.Errorf("metricPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	if got := getClientIP(r); got != "10.0.0.1" {
		t.Errorf("Expected first forwarded ip, got %q", got)
	}
}

func TestCORSExposesAppHeaders(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.CorsAllowedOrigins = []string{"https://panel.ustaoto.com.tr"}
	cfg.Server.CorsAllowedMethods = []string{"GET"}
	h := NewCORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cache", "HIT")
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/stok", nil)
	r.Header.Set("Origin", "https://panel.ustaoto.com.tr")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://panel.ustaoto.com.tr" {
		t.Errorf("Unexpected allow origin %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Expected credentials for an explicit origin, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Expose-Headers"); !strings.Contains(got, "X-Cache") {
		t.Errorf("Expected X-Cache to be exposed, got %q", got)
	}
}

func TestAllowsAnyOrigin(t *testing.T) {
	if !allowsAnyOrigin(nil) || !allowsAnyOrigin([]string{"*"}) {
		t.Error("Expected empty and wildcard lists to allow any origin")
	}
	if allowsAnyOrigin([]string{"https://panel.ustaoto.com.tr"}) {
		t.Error("Expected an explicit list not to allow any origin")
	}
}
