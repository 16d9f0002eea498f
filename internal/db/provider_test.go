package db

import (
	"context"
	"errors"
	"testing"
)

func openTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := Open(context.Background(), "sqlite://:memory:")
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(p.Close)

	_, err = p.Exec(context.Background(), `CREATE TABLE items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT UNIQUE,
		qty INTEGER NOT NULL DEFAULT 0
	)`)
	if err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	return p
}

func TestRebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		in      string
		want    string
	}{
		{"sqlite untouched", DialectSQLite, "SELECT * FROM stok WHERE id = ?", "SELECT * FROM stok WHERE id = ?"},
		{"postgres numbered", DialectPostgres, "UPDATE stok SET a = ?, b = ? WHERE id = ?", "UPDATE stok SET a = $1, b = $2 WHERE id = $3"},
		{"quoted literal kept", DialectPostgres, "SELECT '?' FROM t WHERE x = ?", "SELECT '?' FROM t WHERE x = $1"},
		{"no placeholders", DialectPostgres, "SELECT 1", "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rebind(tt.dialect, tt.in); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestOpenRejectsEmptyURL(t *testing.T) {
	if _, err := Open(context.Background(), "  "); err == nil {
		t.Error("Expected error for empty url")
	}
}

func TestIsIntegrityViolation(t *testing.T) {
	p := openTestProvider(t)
	ctx := context.Background()

	if _, err := p.Exec(ctx, "INSERT INTO items (code) VALUES (?)", "A"); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}
	_, err := p.Exec(ctx, "INSERT INTO items (code) VALUES (?)", "A")
	if err == nil {
		t.Fatal("Expected unique violation")
	}
	if !IsIntegrityViolation(err) {
		t.Errorf("Expected integrity violation, got %v", err)
	}

	// NULL codes never collide
	for i := 0; i < 2; i++ {
		if _, err := p.Exec(ctx, "INSERT INTO items (code) VALUES (?)", nil); err != nil {
			t.Fatalf("Expected NULL code insert to succeed: %v", err)
		}
	}

	if IsIntegrityViolation(errors.New("boom")) {
		t.Error("Plain error must not be an integrity violation")
	}
	if IsIntegrityViolation(nil) {
		t.Error("nil must not be an integrity violation")
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	p := openTestProvider(t)
	ctx := context.Background()

	errStop := errors.New("stop")
	err := p.WithTx(ctx, func(tx Conn) error {
		if _, err := tx.Exec(ctx, "INSERT INTO items (code, qty) VALUES (?, ?)", "B", 5); err != nil {
			return err
		}
		return errStop
	})
	if !errors.Is(err, errStop) {
		t.Fatalf("Expected errStop, got %v", err)
	}

	var count int
	if err := p.QueryRow(ctx, "SELECT COUNT(*) FROM items").Scan(&count); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected rollback to leave 0 rows, got %d", count)
	}
}

func TestWithTxCommits(t *testing.T) {
	p := openTestProvider(t)
	ctx := context.Background()

	err := p.WithTx(ctx, func(tx Conn) error {
		_, err := tx.Exec(ctx, "INSERT INTO items (code, qty) VALUES (?, ?)", "C", 7)
		return err
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var qty int
	if err := p.QueryRow(ctx, "SELECT qty FROM items WHERE code = ?", "C").Scan(&qty); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if qty != 7 {
		t.Errorf("Expected qty 7, got %d", qty)
	}
}
