package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/db"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
)

type AccountRepository struct {
	DB *db.Provider
}

func NewAccountRepository(provider *db.Provider) *AccountRepository {
	return &AccountRepository{DB: provider}
}

const accountColumns = `id, cari_kodu, unvan, tip, COALESCE(telefon, ''), COALESCE(email, ''),
	COALESCE(adres, ''), tc_kimlik_no, COALESCE(vergi_no, ''), COALESCE(vergi_dairesi, ''),
	bakiye, COALESCE(aciklama, ''), COALESCE(firma_tipi, 'Şahıs'), olusturma_tarihi, guncelleme_tarihi`

func scanAccount(row scanner) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Code, &a.Title, &a.Kind, &a.Phone, &a.Email,
		&a.Address, &a.NationalID, &a.TaxNumber, &a.TaxOffice,
		&a.Balance, &a.Notes, &a.LegalForm, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepository) one(ctx context.Context, where string, args ...any) (*models.Account, error) {
	a, err := scanAccount(r.DB.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM cari WHERE `+where+` ORDER BY id LIMIT 1`, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	return a, err
}

// Create inserts an account. ok is false on a unique or check violation so
// callers can report a duplicate without inspecting driver errors.
func (r *AccountRepository) Create(ctx context.Context, in *models.AccountInput) (id int, ok bool, err error) {
	err = r.DB.QueryRow(ctx,
		`INSERT INTO cari (cari_kodu, unvan, tip, telefon, email, adres, tc_kimlik_no,
			vergi_no, vergi_dairesi, bakiye, aciklama, firma_tipi)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		nullIfBlank(in.Code), in.Title, string(in.Kind), in.Phone, in.Email, in.Address,
		nullIfBlank(in.NationalID), in.TaxNumber, in.TaxOffice, in.Balance, in.Notes,
		string(in.LegalForm.OrDefault()),
	).Scan(&id)
	if err != nil {
		if db.IsIntegrityViolation(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to create account: %w", err)
	}
	return id, true, nil
}

func (r *AccountRepository) Get(ctx context.Context, id int) (*models.Account, error) {
	return r.one(ctx, `id = ?`, id)
}

// List returns accounts ordered by title, optionally filtered by a search
// term over title, code and phone, and by kind.
func (r *AccountRepository) List(ctx context.Context, search string, kind models.AccountKind) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM cari WHERE 1 = 1`
	var args []any
	if s := strings.TrimSpace(search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		query += ` AND (LOWER(unvan) LIKE ? OR LOWER(COALESCE(cari_kodu, '')) LIKE ? OR COALESCE(telefon, '') LIKE ?)`
		args = append(args, pattern, pattern, pattern)
	}
	if kind != "" {
		query += ` AND tip = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY unvan`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// Update overwrites every field except the national ID.
// ok is false on a unique or check violation.
func (r *AccountRepository) Update(ctx context.Context, id int, in *models.AccountInput) (ok bool, err error) {
	res, err := r.DB.Exec(ctx,
		`UPDATE cari SET cari_kodu = ?, unvan = ?, tip = ?, telefon = ?, email = ?, adres = ?,
			vergi_no = ?, vergi_dairesi = ?, bakiye = ?, aciklama = ?,
			firma_tipi = ?, guncelleme_tarihi = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		nullIfBlank(in.Code), in.Title, string(in.Kind), in.Phone, in.Email, in.Address,
		in.TaxNumber, in.TaxOffice, in.Balance, in.Notes,
		string(in.LegalForm.OrDefault()), id)
	if err != nil {
		if db.IsIntegrityViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, ErrAccountNotFound
	}
	return true, nil
}

func (r *AccountRepository) Delete(ctx context.Context, id int) error {
	res, err := r.DB.Exec(ctx, `DELETE FROM cari WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// FindByNationalID returns ErrAccountNotFound for a blank ID.
func (r *AccountRepository) FindByNationalID(ctx context.Context, nationalID string) (*models.Account, error) {
	nationalID = strings.TrimSpace(nationalID)
	if nationalID == "" {
		return nil, ErrAccountNotFound
	}
	return r.one(ctx, `tc_kimlik_no = ?`, nationalID)
}

// FindByTaxNumber returns ErrAccountNotFound for a blank number.
func (r *AccountRepository) FindByTaxNumber(ctx context.Context, taxNumber string) (*models.Account, error) {
	taxNumber = strings.TrimSpace(taxNumber)
	if taxNumber == "" {
		return nil, ErrAccountNotFound
	}
	return r.one(ctx, `vergi_no = ?`, taxNumber)
}

// FindByTitle matches the title exactly after trimming.
func (r *AccountRepository) FindByTitle(ctx context.Context, title string) (*models.Account, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrAccountNotFound
	}
	return r.one(ctx, `TRIM(unvan) = ?`, title)
}

// NumericCodes returns every account code made only of digits.
func (r *AccountRepository) NumericCodes(ctx context.Context) ([]string, error) {
	rows, err := r.DB.Query(ctx, `SELECT cari_kodu FROM cari WHERE cari_kodu IS NOT NULL AND cari_kodu <> ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		if isDigits(code) {
			codes = append(codes, code)
		}
	}
	return codes, rows.Err()
}

// CustomerContactByTitle returns the contact fields of the first customer
// account with the given title. A missing account yields an empty contact.
func (r *AccountRepository) CustomerContactByTitle(ctx context.Context, title string) (models.CustomerContact, error) {
	var c models.CustomerContact
	title = strings.TrimSpace(title)
	if title == "" {
		return c, nil
	}
	err := r.DB.QueryRow(ctx,
		`SELECT COALESCE(email, ''), COALESCE(adres, ''), COALESCE(vergi_dairesi, '') FROM cari
		 WHERE TRIM(unvan) = ? AND tip = ? ORDER BY id LIMIT 1`,
		title, string(models.AccountKindCustomer)).Scan(&c.Email, &c.Address, &c.TaxOffice)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CustomerContact{}, nil
	}
	return c, err
}

// CodeExists reports whether an account already uses code.
func (r *AccountRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var n int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM cari WHERE cari_kodu = ?`, code).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
