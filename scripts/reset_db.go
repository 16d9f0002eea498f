package main

import (
	"context"
	"fmt"
	"log"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/config"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/database"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/db"
)

// Child tables first so the foreign keys never block a delete.
var tables = []string{
	"is_prosesi_maddeleri",
	"is_prosesi",
	"is_evraki",
	"cari",
	"stok",
}

func main() {
	fmt.Println("========================================")
	fmt.Println("   Reset Database for Testing")
	fmt.Println("========================================")
	fmt.Println()
	fmt.Println("⚠️  WARNING: This will DELETE ALL DATA!")
	fmt.Println()
	fmt.Println("This will:")
	fmt.Println("  - Delete all stock items")
	fmt.Println("  - Delete all accounts")
	fmt.Println("  - Delete all work orders")
	fmt.Println("  - Delete all work process templates")
	fmt.Println("  - Reset all ID sequences")
	fmt.Println()
	fmt.Print("Type 'yes' to confirm: ")

	var confirm string
	fmt.Scanln(&confirm)

	if confirm != "yes" {
		fmt.Println("Reset cancelled.")
		return
	}

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.Open(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer pool.Close()

	if err := database.NewSchemaManager(pool, nil).InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialise schema: %v\n", err)
	}

	fmt.Println()
	fmt.Printf("🔄 Resetting %s database...\n", pool.Dialect())

	err = pool.WithTx(ctx, func(tx db.Conn) error {
		for _, table := range tables {
			if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
			fmt.Printf("  ✓ Cleared %s\n", table)
		}

		for _, table := range tables {
			var err error
			if pool.Dialect() == db.DialectPostgres {
				_, err = tx.Exec(ctx, fmt.Sprintf("ALTER SEQUENCE %s_id_seq RESTART WITH 1", table))
			} else {
				_, err = tx.Exec(ctx, "DELETE FROM sqlite_sequence WHERE name = ?", table)
			}
			if err != nil {
				log.Printf("Warning: Failed to reset sequence for %s: %v\n", table, err)
			}
		}
		fmt.Println("  ✓ Reset ID sequences")
		return nil
	})
	if err != nil {
		log.Fatalf("Reset failed: %v\n", err)
	}

	fmt.Println()
	fmt.Println("✅ Database reset successful!")
}
