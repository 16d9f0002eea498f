package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/db"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
)

type StockRepository struct {
	DB *db.Provider
}

func NewStockRepository(provider *db.Provider) *StockRepository {
	return &StockRepository{DB: provider}
}

const stockColumns = `id, urun_kodu, urun_adi, COALESCE(marka, ''), COALESCE(birim, 'Adet'),
	stok_miktari, birim_fiyat, COALESCE(aciklama, ''), olusturma_tarihi, guncelleme_tarihi`

func scanStockItem(row scanner) (*models.StockItem, error) {
	var s models.StockItem
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.Brand, &s.Unit,
		&s.Quantity, &s.UnitPrice, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StockRepository) collect(rows *sql.Rows) ([]*models.StockItem, error) {
	defer rows.Close()

	var items []*models.StockItem
	for rows.Next() {
		item, err := scanStockItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Create inserts a stock item. ok is false when the code is already used.
func (r *StockRepository) Create(ctx context.Context, in *models.StockInput) (id int, ok bool, err error) {
	err = r.DB.QueryRow(ctx,
		`INSERT INTO stok (urun_kodu, urun_adi, marka, birim, stok_miktari, birim_fiyat, aciklama)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		nullIfBlank(in.Code), in.Name, in.Brand, unitOrDefault(in.Unit), in.Quantity, in.UnitPrice, in.Notes,
	).Scan(&id)
	if err != nil {
		if db.IsIntegrityViolation(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to create stock item: %w", err)
	}
	return id, true, nil
}

func (r *StockRepository) Get(ctx context.Context, id int) (*models.StockItem, error) {
	item, err := scanStockItem(r.DB.QueryRow(ctx,
		`SELECT `+stockColumns+` FROM stok WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStockNotFound
	}
	return item, err
}

// GetByCode looks an item up by its product code. A blank code is never found.
func (r *StockRepository) GetByCode(ctx context.Context, code string) (*models.StockItem, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrStockNotFound
	}
	item, err := scanStockItem(r.DB.QueryRow(ctx,
		`SELECT `+stockColumns+` FROM stok WHERE urun_kodu = ?`, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStockNotFound
	}
	return item, err
}

// List returns all items, optionally filtered by name, code or brand.
func (r *StockRepository) List(ctx context.Context, search string) ([]*models.StockItem, error) {
	query := `SELECT ` + stockColumns + ` FROM stok`
	var args []any
	if s := strings.TrimSpace(search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		query += ` WHERE LOWER(urun_adi) LIKE ? OR LOWER(COALESCE(urun_kodu, '')) LIKE ? OR LOWER(COALESCE(marka, '')) LIKE ?`
		args = append(args, pattern, pattern, pattern)
	}
	query += ` ORDER BY urun_adi`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// SearchByName matches the product name only.
func (r *StockRepository) SearchByName(ctx context.Context, name string) ([]*models.StockItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	rows, err := r.DB.Query(ctx,
		`SELECT `+stockColumns+` FROM stok WHERE LOWER(urun_adi) LIKE ? ORDER BY urun_adi`,
		"%"+strings.ToLower(name)+"%")
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// Update overwrites every field. ok is false when the new code collides.
func (r *StockRepository) Update(ctx context.Context, id int, in *models.StockInput) (ok bool, err error) {
	res, err := r.DB.Exec(ctx,
		`UPDATE stok SET urun_kodu = ?, urun_adi = ?, marka = ?, birim = ?, stok_miktari = ?,
			birim_fiyat = ?, aciklama = ?, guncelleme_tarihi = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		nullIfBlank(in.Code), in.Name, in.Brand, unitOrDefault(in.Unit), in.Quantity, in.UnitPrice, in.Notes, id)
	if err != nil {
		if db.IsIntegrityViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to update stock item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, ErrStockNotFound
	}
	return true, nil
}

func (r *StockRepository) Delete(ctx context.Context, id int) error {
	res, err := r.DB.Exec(ctx, `DELETE FROM stok WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete stock item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStockNotFound
	}
	return nil
}

// SetQuantity writes the on-hand quantity for a code.
func (r *StockRepository) SetQuantity(ctx context.Context, code string, qty decimal.Decimal) error {
	return setQuantity(ctx, r.DB.Conn, code, qty)
}

// DecrementBatchTx writes the post-decrement quantities of a batch in one
// transaction. Either every quantity is written or none is.
func (r *StockRepository) DecrementBatchTx(ctx context.Context, quantities map[string]decimal.Decimal) error {
	return r.DB.WithTx(ctx, func(tx db.Conn) error {
		for code, qty := range quantities {
			if err := setQuantity(ctx, tx, code, qty); err != nil {
				return err
			}
		}
		return nil
	})
}

func setQuantity(ctx context.Context, conn db.Conn, code string, qty decimal.Decimal) error {
	res, err := conn.Exec(ctx,
		`UPDATE stok SET stok_miktari = ?, guncelleme_tarihi = CURRENT_TIMESTAMP WHERE urun_kodu = ?`,
		qty, code)
	if err != nil {
		return fmt.Errorf("failed to update quantity for %s: %w", code, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStockNotFound
	}
	return nil
}

// Upsert updates the item with the same code or inserts a new one. Used by
// the spreadsheet import.
func (r *StockRepository) Upsert(ctx context.Context, in *models.StockInput) (inserted bool, err error) {
	if code := strings.TrimSpace(in.Code); code != "" {
		existing, err := r.GetByCode(ctx, code)
		if err == nil {
			if _, err := r.Update(ctx, existing.ID, in); err != nil {
				return false, err
			}
			return false, nil
		}
		if !errors.Is(err, ErrStockNotFound) {
			return false, err
		}
	}

	_, ok, err := r.Create(ctx, in)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("product code %q already exists", in.Code)
	}
	return true, nil
}

func unitOrDefault(unit string) string {
	if strings.TrimSpace(unit) == "" {
		return models.DefaultUnit
	}
	return unit
}
