package repositories

import (
	"context"
	"testing"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/database"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/db"
)

func setupTestDB(t *testing.T) *db.Provider {
	t.Helper()
	p, err := db.Open(context.Background(), "sqlite://:memory:")
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(p.Close)

	if err := database.NewSchemaManager(p, nil).InitSchema(context.Background()); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return p
}
