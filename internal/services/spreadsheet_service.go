package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/cache"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/realtime"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/repositories"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/textutil"
)

// ErrNothingToExport is returned by ExportStock when the stok table is empty.
var ErrNothingToExport = errors.New("Dışa aktarılacak stok kaydı bulunamadı")

const (
	stockSheet       = "Stok"
	maxImportErrors  = 10
	importHeaderRows = 1
)

var stockExportHeaders = []string{"Ürün Kodu", "Ürün Adı", "Marka", "Birim", "Stok Miktarı", "Birim Fiyat", "Açıklama"}

// importColumns maps each stock field to the header keys accepted for it.
// Order matters: the first field to claim a column keeps it.
var importColumns = []struct {
	field   string
	aliases []string
}{
	{"urun_adi", []string{"urun", "adi", "isim", "name", "product", "urunadi"}},
	{"urun_kodu", []string{"kod", "code", "urunkodu", "productcode"}},
	{"marka", []string{"marka", "brand"}},
	{"birim", []string{"birim", "unit"}},
	{"miktar", []string{"miktar", "adet", "quantity", "stok", "stokmiktari"}},
	{"fiyat", []string{"fiyat", "price", "birimfiyat", "fiyati", "unitprice"}},
	{"aciklama", []string{"aciklama", "description", "not", "notlar", "notes"}},
}

var requiredImportColumns = []struct{ field, label string }{
	{"urun_adi", "Ürün Adı"},
	{"miktar", "Miktar"},
	{"fiyat", "Fiyat"},
}

type SpreadsheetService struct {
	Repo     *repositories.StockRepository
	Notifier ChangeNotifier
	logger   *zap.Logger
}

func NewSpreadsheetService(repo *repositories.StockRepository, notifier ChangeNotifier, logger *zap.Logger) *SpreadsheetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpreadsheetService{Repo: repo, Notifier: notifier, logger: logger}
}

// ExportStock writes every stock item to a single-sheet workbook.
func (s *SpreadsheetService) ExportStock(ctx context.Context) ([]byte, error) {
	items, err := s.Repo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNothingToExport
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(stockSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range stockExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(stockSheet, cell, header)
		f.SetCellStyle(stockSheet, cell, cell, headerStyle)
	}
	f.SetColWidth(stockSheet, "A", "A", 15)
	f.SetColWidth(stockSheet, "B", "B", 35)
	f.SetColWidth(stockSheet, "C", "F", 14)
	f.SetColWidth(stockSheet, "G", "G", 40)

	for r, item := range items {
		row := r + 2
		quantity, _ := item.Quantity.Float64()
		price, _ := item.UnitPrice.Float64()
		values := []any{item.CodeString(), item.Name, item.Brand, item.Unit, quantity, price, item.Notes}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			f.SetCellValue(stockSheet, cell, v)
		}
	}

	// The default sheet is left empty by NewFile.
	f.DeleteSheet("Sheet1")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	s.logger.Info("stock exported", zap.Int("rows", len(items)))
	return buf.Bytes(), nil
}

// ImportStock reads the first sheet of a workbook and upserts every row with
// a product name. Rows are matched to existing items by product code.
func (s *SpreadsheetService) ImportStock(ctx context.Context, r io.Reader) (*models.StockImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, invalid("Excel dosyası okunamadı: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, invalid("Excel dosyasında sayfa bulunamadı")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, invalid("Excel dosyası okunamadı: %v", err)
	}
	if len(rows) < importHeaderRows {
		return nil, invalid("Excel dosyasında şu sütunlar bulunamadı: Ürün Adı, Miktar, Fiyat")
	}

	columns := mapImportColumns(rows[0])
	var missing []string
	for _, req := range requiredImportColumns {
		if _, ok := columns[req.field]; !ok {
			missing = append(missing, req.label)
		}
	}
	if len(missing) > 0 {
		return nil, invalid("Excel dosyasında şu sütunlar bulunamadı: %s", strings.Join(missing, ", "))
	}

	result := &models.StockImportResult{Errors: []string{}}
	fail := func(line int, format string, args ...any) {
		result.ErrorCount++
		if len(result.Errors) < maxImportErrors {
			result.Errors = append(result.Errors, fmt.Sprintf("Satır %d: ", line)+fmt.Sprintf(format, args...))
		}
	}

	for i, row := range rows[importHeaderRows:] {
		line := i + importHeaderRows + 1
		cell := func(field string) string {
			idx, ok := columns[field]
			if !ok || idx >= len(row) {
				return ""
			}
			return cleanCell(row[idx])
		}

		name := cell("urun_adi")
		if name == "" {
			continue
		}
		in := &models.StockInput{
			Code:      cell("urun_kodu"),
			Name:      name,
			Brand:     cell("marka"),
			Unit:      cell("birim"),
			Quantity:  parseQuantity(cell("miktar")),
			UnitPrice: parsePrice(cell("fiyat")),
			Notes:     cell("aciklama"),
		}

		inserted, err := s.Repo.Upsert(ctx, in)
		if err != nil {
			s.logger.Warn("stock import row failed", zap.Int("line", line), zap.Error(err))
			if in.Code != "" {
				fail(line, "%s (Kod: %s) - Eklenemedi", name, in.Code)
			} else {
				fail(line, "%s - Eklenemedi", name)
			}
			continue
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	if result.Inserted+result.Updated > 0 {
		s.changed(ctx)
	}
	s.logger.Info("stock imported",
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated),
		zap.Int("errors", result.ErrorCount))
	return result, nil
}

func (s *SpreadsheetService) changed(ctx context.Context) {
	cache.InvalidateStockCaches(ctx)
	notify(s.Notifier, realtime.ResourceStock, "import", nil)
}

// mapImportColumns returns the column index chosen for each field.
func mapImportColumns(header []string) map[string]int {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = textutil.HeaderKey(h)
	}

	columns := make(map[string]int)
	claimed := make(map[int]bool)
	for _, col := range importColumns {
	search:
		for i, key := range keys {
			if claimed[i] || key == "" {
				continue
			}
			for _, alias := range col.aliases {
				if key == alias {
					columns[col.field] = i
					claimed[i] = true
					break search
				}
			}
		}
	}
	return columns
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case "nan", "none", "null":
		return ""
	}
	return v
}

func parseQuantity(v string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.ReplaceAll(v, ",", "."))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parsePrice also tolerates currency symbols and thousands spacing.
func parsePrice(v string) decimal.Decimal {
	v = strings.ReplaceAll(v, ",", ".")
	var b strings.Builder
	for _, r := range v {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}
