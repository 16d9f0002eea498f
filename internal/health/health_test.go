package health

import (
	"context"
	"errors"
	"testing"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestCheckBasic(t *testing.T) {
	status := NewHealthChecker(fakePinger{}).CheckBasic(context.Background())
	if status.Status != "healthy" || status.Database.Status != "healthy" {
		t.Errorf("Expected healthy, got %+v", status)
	}
	if status.Cache != "disabled" {
		t.Errorf("Expected cache disabled, got %q", status.Cache)
	}

	status = NewHealthChecker(fakePinger{err: errors.New("connection refused")}).CheckBasic(context.Background())
	if status.Status != "unhealthy" {
		t.Errorf("Expected unhealthy, got %q", status.Status)
	}
	if status.Database.Error != "connection refused" {
		t.Errorf("Unexpected error text %q", status.Database.Error)
	}
}

func TestCheckDetailedIncludesHost(t *testing.T) {
	status := NewHealthChecker(fakePinger{}).CheckDetailed(context.Background())
	if status.Host == nil {
		t.Fatal("Expected host section")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
