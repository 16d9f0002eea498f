package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/db"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
)

type WorkProcessRepository struct {
	DB *db.Provider
}

func NewWorkProcessRepository(provider *db.Provider) *WorkProcessRepository {
	return &WorkProcessRepository{DB: provider}
}

const processColumns = `id, proses_adi, COALESCE(proses_tipi, ''), COALESCE(aciklama, ''),
	olusturma_tarihi, guncelleme_tarihi`

const itemColumns = `id, proses_id, sira_no, madde_adi, COALESCE(aciklama, ''),
	COALESCE(kullanilan_malzemeler, ''), tamamlandi, tamamlanma_tarihi, olusturma_tarihi`

func scanProcess(row scanner) (*models.WorkProcess, error) {
	var p models.WorkProcess
	if err := row.Scan(&p.ID, &p.Name, &p.Type, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanItem(row scanner) (*models.ProcessItem, error) {
	var it models.ProcessItem
	var completedAt sql.NullTime
	err := row.Scan(&it.ID, &it.ProcessID, &it.Sequence, &it.Name, &it.Notes,
		&it.Materials, &it.Completed, &completedAt, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		it.CompletedAt = &t
	}
	return &it, nil
}

// Create inserts a process and its items in one transaction.
func (r *WorkProcessRepository) Create(ctx context.Context, in *models.WorkProcessInput) (int, error) {
	var id int
	err := r.DB.WithTx(ctx, func(tx db.Conn) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO is_prosesi (proses_adi, proses_tipi, aciklama) VALUES (?, ?, ?) RETURNING id`,
			in.Name, nullIfBlank(string(in.Type)), in.Notes,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to create work process: %w", err)
		}
		for i := range in.Items {
			if _, err := insertItem(ctx, tx, id, &in.Items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func insertItem(ctx context.Context, conn db.Conn, processID int, in *models.ProcessItemInput) (int, error) {
	var id int
	err := conn.QueryRow(ctx,
		`INSERT INTO is_prosesi_maddeleri (proses_id, sira_no, madde_adi, aciklama, kullanilan_malzemeler, tamamlandi)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		processID, in.Sequence, in.Name, in.Notes, in.Materials, in.Completed,
	).Scan(&id)
	if err != nil {
		if db.IsIntegrityViolation(err) {
			return 0, ErrProcessNotFound
		}
		return 0, fmt.Errorf("failed to create process item: %w", err)
	}
	return id, nil
}

func (r *WorkProcessRepository) Get(ctx context.Context, id int) (*models.WorkProcess, error) {
	p, err := scanProcess(r.DB.QueryRow(ctx,
		`SELECT `+processColumns+` FROM is_prosesi WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProcessNotFound
	}
	return p, err
}

func (r *WorkProcessRepository) List(ctx context.Context) ([]*models.WorkProcess, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+processColumns+` FROM is_prosesi ORDER BY proses_adi, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var processes []*models.WorkProcess
	for rows.Next() {
		p, err := scanProcess(rows)
		if err != nil {
			return nil, err
		}
		processes = append(processes, p)
	}
	return processes, rows.Err()
}

// Update changes the header fields. Items are managed separately.
func (r *WorkProcessRepository) Update(ctx context.Context, id int, in *models.WorkProcessInput) error {
	res, err := r.DB.Exec(ctx,
		`UPDATE is_prosesi SET proses_adi = ?, proses_tipi = ?, aciklama = ?,
			guncelleme_tarihi = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		in.Name, nullIfBlank(string(in.Type)), in.Notes, id)
	if err != nil {
		return fmt.Errorf("failed to update work process: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProcessNotFound
	}
	return nil
}

// Delete removes the process. Its items go with it through the foreign key.
func (r *WorkProcessRepository) Delete(ctx context.Context, id int) error {
	res, err := r.DB.Exec(ctx, `DELETE FROM is_prosesi WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete work process: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProcessNotFound
	}
	return nil
}

func (r *WorkProcessRepository) ListItems(ctx context.Context, processID int) ([]models.ProcessItem, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+itemColumns+` FROM is_prosesi_maddeleri WHERE proses_id = ? ORDER BY sira_no, id`,
		processID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.ProcessItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (r *WorkProcessRepository) GetItem(ctx context.Context, itemID int) (*models.ProcessItem, error) {
	it, err := scanItem(r.DB.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM is_prosesi_maddeleri WHERE id = ?`, itemID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	return it, err
}

// AddItem returns ErrProcessNotFound when the parent does not exist.
func (r *WorkProcessRepository) AddItem(ctx context.Context, processID int, in *models.ProcessItemInput) (int, error) {
	return insertItem(ctx, r.DB.Conn, processID, in)
}

// UpdateItem changes the text fields of an item. Completion is handled by
// MarkItemComplete.
func (r *WorkProcessRepository) UpdateItem(ctx context.Context, itemID int, in *models.ProcessItemInput) error {
	res, err := r.DB.Exec(ctx,
		`UPDATE is_prosesi_maddeleri SET sira_no = ?, madde_adi = ?, aciklama = ?, kullanilan_malzemeler = ?
		 WHERE id = ?`,
		in.Sequence, in.Name, in.Notes, in.Materials, itemID)
	if err != nil {
		return fmt.Errorf("failed to update process item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *WorkProcessRepository) DeleteItem(ctx context.Context, itemID int) error {
	res, err := r.DB.Exec(ctx, `DELETE FROM is_prosesi_maddeleri WHERE id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete process item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// MarkItemComplete sets the flag and stamps or clears the completion time.
func (r *WorkProcessRepository) MarkItemComplete(ctx context.Context, itemID int, done bool) error {
	query := `UPDATE is_prosesi_maddeleri SET tamamlandi = ?, tamamlanma_tarihi = CURRENT_TIMESTAMP WHERE id = ?`
	if !done {
		query = `UPDATE is_prosesi_maddeleri SET tamamlandi = ?, tamamlanma_tarihi = NULL WHERE id = ?`
	}
	res, err := r.DB.Exec(ctx, query, done, itemID)
	if err != nil {
		return fmt.Errorf("failed to update process item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	return nil
}
