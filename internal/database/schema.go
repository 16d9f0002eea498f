package database

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/db"
)

// Table definitions use tokens that are expanded per dialect:
//
//	{{pk}}   auto-increment integer primary key
//	{{num}}  decimal amount column
//	{{bool}} boolean flag column
//	{{ts}}   timestamp column
var tables = []struct {
	name string
	ddl  string
}{
	{"stok", `CREATE TABLE IF NOT EXISTS stok (
		id {{pk}},
		urun_kodu VARCHAR(100) UNIQUE,
		urun_adi VARCHAR(255) NOT NULL,
		marka VARCHAR(255),
		birim VARCHAR(50) DEFAULT 'Adet',
		stok_miktari {{num}} NOT NULL DEFAULT 0,
		birim_fiyat {{num}} NOT NULL DEFAULT 0,
		aciklama TEXT,
		olusturma_tarihi {{ts}} DEFAULT CURRENT_TIMESTAMP,
		guncelleme_tarihi {{ts}} DEFAULT CURRENT_TIMESTAMP
	)`},
	{"cari", `CREATE TABLE IF NOT EXISTS cari (
		id {{pk}},
		cari_kodu VARCHAR(100) UNIQUE,
		unvan VARCHAR(255) NOT NULL,
		tip VARCHAR(50) NOT NULL CHECK (tip IN ('Müşteri', 'Tedarikçi')),
		telefon VARCHAR(50),
		email VARCHAR(255),
		adres TEXT,
		tc_kimlik_no VARCHAR(20) UNIQUE,
		vergi_no VARCHAR(50),
		vergi_dairesi VARCHAR(255),
		bakiye {{num}} NOT NULL DEFAULT 0,
		aciklama TEXT,
		firma_tipi VARCHAR(50) DEFAULT 'Şahıs',
		olusturma_tarihi {{ts}} DEFAULT CURRENT_TIMESTAMP,
		guncelleme_tarihi {{ts}} DEFAULT CURRENT_TIMESTAMP
	)`},
	{"is_evraki", `CREATE TABLE IF NOT EXISTS is_evraki (
		id {{pk}},
		is_emri_no INTEGER NOT NULL,
		tarih VARCHAR(50) NOT NULL,
		musteri_unvan VARCHAR(255) NOT NULL,
		telefon VARCHAR(50),
		arac_plakasi VARCHAR(50),
		cekici_dorse VARCHAR(255),
		marka_model VARCHAR(255),
		talep_edilen_isler TEXT,
		musteri_sikayeti TEXT,
		yapilan_is TEXT,
		baslama_saati VARCHAR(20),
		bitis_saati VARCHAR(20),
		kullanilan_urunler TEXT,
		toplam_tutar {{num}} NOT NULL DEFAULT 0,
		tc_kimlik_no VARCHAR(20),
		olusturma_tarihi {{ts}} DEFAULT CURRENT_TIMESTAMP
	)`},
	{"is_prosesi", `CREATE TABLE IF NOT EXISTS is_prosesi (
		id {{pk}},
		proses_adi VARCHAR(255) NOT NULL,
		proses_tipi VARCHAR(50),
		aciklama TEXT,
		olusturma_tarihi {{ts}} DEFAULT CURRENT_TIMESTAMP,
		guncelleme_tarihi {{ts}} DEFAULT CURRENT_TIMESTAMP
	)`},
	{"is_prosesi_maddeleri", `CREATE TABLE IF NOT EXISTS is_prosesi_maddeleri (
		id {{pk}},
		proses_id INTEGER NOT NULL REFERENCES is_prosesi(id) ON DELETE CASCADE,
		sira_no INTEGER NOT NULL DEFAULT 0,
		madde_adi VARCHAR(255) NOT NULL,
		aciklama TEXT,
		kullanilan_malzemeler TEXT,
		tamamlandi {{bool}} NOT NULL DEFAULT {{false}},
		tamamlanma_tarihi {{ts}},
		olusturma_tarihi {{ts}} DEFAULT CURRENT_TIMESTAMP
	)`},
}

// Additive column migrations for databases created by older releases.
// Each runs on its own; a column that already exists is not an error.
var columnMigrations = []struct {
	table  string
	column string
	def    string
}{
	{"stok", "marka", "VARCHAR(255)"},
	{"cari", "tc_kimlik_no", "VARCHAR(20)"},
	{"cari", "firma_tipi", "VARCHAR(50) DEFAULT 'Şahıs'"},
	{"is_evraki", "tc_kimlik_no", "VARCHAR(20)"},
	{"is_prosesi", "proses_tipi", "VARCHAR(50)"},
	{"is_prosesi_maddeleri", "kullanilan_malzemeler", "TEXT"},
}

var indexes = []string{
	// Columns added by ALTER cannot carry UNIQUE on SQLite; the index covers both paths.
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_cari_tc_kimlik_no ON cari (tc_kimlik_no)",
	"CREATE INDEX IF NOT EXISTS idx_cari_unvan ON cari (unvan)",
	"CREATE INDEX IF NOT EXISTS idx_is_evraki_olusturma ON is_evraki (olusturma_tarihi)",
	"CREATE INDEX IF NOT EXISTS idx_maddeler_proses ON is_prosesi_maddeleri (proses_id, sira_no)",
}

// SchemaManager creates and evolves the schema without a version table.
type SchemaManager struct {
	db     *db.Provider
	logger *zap.Logger
}

// NewSchemaManager creates a schema manager
//
// Parameters:
//   - provider: open database provider
//   - logger: component logger (nil is allowed)
//
// Returns:
//   - *SchemaManager: New schema manager instance
func NewSchemaManager(provider *db.Provider, logger *zap.Logger) *SchemaManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchemaManager{db: provider, logger: logger}
}

// InitSchema creates all tables idempotently and applies additive migrations
//
// This function:
//  1. Runs CREATE TABLE IF NOT EXISTS for every table
//  2. Adds columns introduced after the first release, one statement at a time
//  3. Creates indexes
//
// A failing column migration or index is logged and skipped so the remaining
// statements still run. A failing CREATE TABLE aborts.
//
// Returns:
//   - error: If a table cannot be created
func (m *SchemaManager) InitSchema(ctx context.Context) error {
	m.logger.Info("initialising schema", zap.String("dialect", m.db.Dialect().String()))

	expand := replacerFor(m.db.Dialect())
	for _, t := range tables {
		if _, err := m.db.Exec(ctx, expand.Replace(t.ddl)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", t.name, err)
		}
	}

	applied := 0
	for _, c := range columnMigrations {
		ok, err := m.addColumn(ctx, c.table, c.column, c.def)
		if err != nil {
			m.logger.Warn("column migration failed",
				zap.String("table", c.table), zap.String("column", c.column), zap.Error(err))
			continue
		}
		if ok {
			applied++
			m.logger.Info("column added", zap.String("table", c.table), zap.String("column", c.column))
		}
	}

	for _, stmt := range indexes {
		if _, err := m.db.Exec(ctx, stmt); err != nil {
			m.logger.Warn("index creation failed", zap.String("statement", stmt), zap.Error(err))
		}
	}

	m.logger.Info("schema ready", zap.Int("columns_added", applied))
	return nil
}

// addColumn returns true when the column was created and false when it was
// already present.
func (m *SchemaManager) addColumn(ctx context.Context, table, column, def string) (bool, error) {
	if m.db.Dialect() == db.DialectPostgres {
		var exists bool
		err := m.db.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.columns
				WHERE table_name = ? AND column_name = ?
			)`, table, column).Scan(&exists)
		if err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
	}

	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, def)
	if _, err := m.db.Exec(ctx, stmt); err != nil {
		if isDuplicateColumn(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func isDuplicateColumn(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate column") || strings.Contains(msg, "already exists")
}

func replacerFor(d db.Dialect) *strings.Replacer {
	if d == db.DialectPostgres {
		return strings.NewReplacer(
			"{{pk}}", "SERIAL PRIMARY KEY",
			"{{num}}", "NUMERIC(15,3)",
			"{{bool}}", "BOOLEAN",
			"{{false}}", "FALSE",
			"{{ts}}", "TIMESTAMP",
		)
	}
	return strings.NewReplacer(
		"{{pk}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{num}}", "REAL",
		"{{bool}}", "INTEGER",
		"{{false}}", "0",
		"{{ts}}", "TIMESTAMP",
	)
}
