package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/db"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
)

type WorkOrderRepository struct {
	DB *db.Provider
}

func NewWorkOrderRepository(provider *db.Provider) *WorkOrderRepository {
	return &WorkOrderRepository{DB: provider}
}

const workOrderColumns = `id, is_emri_no, tarih, musteri_unvan, COALESCE(telefon, ''),
	COALESCE(arac_plakasi, ''), COALESCE(cekici_dorse, ''), COALESCE(marka_model, ''),
	COALESCE(talep_edilen_isler, ''), COALESCE(musteri_sikayeti, ''), COALESCE(yapilan_is, ''),
	COALESCE(baslama_saati, ''), COALESCE(bitis_saati, ''), kullanilan_urunler,
	toplam_tutar, COALESCE(tc_kimlik_no, ''), olusturma_tarihi`

// createdAtLayout matches CURRENT_TIMESTAMP text on both backends.
const createdAtLayout = "2006-01-02 15:04:05"

func scanWorkOrder(row scanner) (*models.WorkOrder, error) {
	var w models.WorkOrder
	err := row.Scan(&w.ID, &w.OrderNo, &w.Date, &w.CustomerTitle, &w.Phone,
		&w.Plate, &w.TrailerInfo, &w.MakeModel,
		&w.RequestedWork, &w.Complaint, &w.WorkDone,
		&w.StartTime, &w.EndTime, &w.UsedProducts,
		&w.TotalAmount, &w.NationalID, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WorkOrderRepository) list(ctx context.Context, query string, args ...any) ([]*models.WorkOrder, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.WorkOrder
	for rows.Next() {
		w, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, w)
	}
	return orders, rows.Err()
}

func (r *WorkOrderRepository) Create(ctx context.Context, in *models.WorkOrderInput) (int, error) {
	var id int
	err := r.DB.QueryRow(ctx,
		`INSERT INTO is_evraki (is_emri_no, tarih, musteri_unvan, telefon, arac_plakasi,
			cekici_dorse, marka_model, talep_edilen_isler, musteri_sikayeti, yapilan_is,
			baslama_saati, bitis_saati, kullanilan_urunler, toplam_tutar, tc_kimlik_no)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		in.OrderNo, in.Date, in.CustomerTitle, in.Phone, in.Plate,
		in.TrailerInfo, in.MakeModel, in.RequestedWork, in.Complaint, in.WorkDone,
		in.StartTime, in.EndTime, in.UsedProducts, in.TotalAmount, nullIfBlank(in.NationalID),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create work order: %w", err)
	}
	return id, nil
}

func (r *WorkOrderRepository) Get(ctx context.Context, id int) (*models.WorkOrder, error) {
	w, err := scanWorkOrder(r.DB.QueryRow(ctx,
		`SELECT `+workOrderColumns+` FROM is_evraki WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkOrderNotFound
	}
	return w, err
}

// List returns every order, newest first.
func (r *WorkOrderRepository) List(ctx context.Context) ([]*models.WorkOrder, error) {
	return r.list(ctx, `SELECT `+workOrderColumns+` FROM is_evraki ORDER BY olusturma_tarihi DESC, id DESC`)
}

// ListBetween returns orders created in [from, to), oldest first.
func (r *WorkOrderRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*models.WorkOrder, error) {
	return r.list(ctx,
		`SELECT `+workOrderColumns+` FROM is_evraki
		 WHERE olusturma_tarihi >= ? AND olusturma_tarihi < ?
		 ORDER BY olusturma_tarihi, id`,
		from.UTC().Format(createdAtLayout), to.UTC().Format(createdAtLayout))
}

func (r *WorkOrderRepository) Update(ctx context.Context, id int, in *models.WorkOrderInput) error {
	res, err := r.DB.Exec(ctx,
		`UPDATE is_evraki SET is_emri_no = ?, tarih = ?, musteri_unvan = ?, telefon = ?,
			arac_plakasi = ?, cekici_dorse = ?, marka_model = ?, talep_edilen_isler = ?,
			musteri_sikayeti = ?, yapilan_is = ?, baslama_saati = ?, bitis_saati = ?,
			kullanilan_urunler = ?, toplam_tutar = ?, tc_kimlik_no = ?
		 WHERE id = ?`,
		in.OrderNo, in.Date, in.CustomerTitle, in.Phone,
		in.Plate, in.TrailerInfo, in.MakeModel, in.RequestedWork,
		in.Complaint, in.WorkDone, in.StartTime, in.EndTime,
		in.UsedProducts, in.TotalAmount, nullIfBlank(in.NationalID), id)
	if err != nil {
		return fmt.Errorf("failed to update work order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrWorkOrderNotFound
	}
	return nil
}

func (r *WorkOrderRepository) Delete(ctx context.Context, id int) error {
	res, err := r.DB.Exec(ctx, `DELETE FROM is_evraki WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete work order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrWorkOrderNotFound
	}
	return nil
}

// OrderNumbers returns every order number in use, ascending.
func (r *WorkOrderRepository) OrderNumbers(ctx context.Context) ([]int, error) {
	rows, err := r.DB.Query(ctx, `SELECT DISTINCT is_emri_no FROM is_evraki ORDER BY is_emri_no`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var numbers []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}
