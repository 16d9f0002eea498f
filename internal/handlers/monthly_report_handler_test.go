package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMonthlyReportAuthorized(t *testing.T) {
	h := NewMonthlyReportHandler(nil, "s3cr3t")

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		target string
		want   bool
	}{
		{"query", func(*http.Request) {}, "/?secret=s3cr3t", true},
		{"header", func(r *http.Request) { r.Header.Set("X-Cron-Secret", "s3cr3t") }, "/", true},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer s3cr3t") }, "/", true},
		{"wrong", func(r *http.Request) { r.Header.Set("X-Cron-Secret", "nope") }, "/", false},
		{"missing", func(*http.Request) {}, "/", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, tt.target, nil)
			tt.setup(r)
			if got := h.authorized(r); got != tt.want {
				t.Errorf("authorized() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonthlyReportRejectsWithoutSecret(t *testing.T) {
	h := NewMonthlyReportHandler(nil, "s3cr3t")
	rec := httptest.NewRecorder()
	h.Send(rec, httptest.NewRequest(http.MethodPost, "/api/aylik-rapor/gonder", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", rec.Code)
	}
}
