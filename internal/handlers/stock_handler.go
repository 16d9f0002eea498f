package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/cache"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/services"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/timeutil"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/pkg/utils"

	"github.com/gorilla/mux"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxUploadSize   = 32 << 20
)

const stockNotFound = "Ürün bulunamadı"

// StockHandler serves /api/stok.
type StockHandler struct {
	Service *services.InventoryService
	Sheets  *services.SpreadsheetService
}

func NewStockHandler(s *services.InventoryService, sheets *services.SpreadsheetService) *StockHandler {
	return &StockHandler{Service: s, Sheets: sheets}
}

func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("arama"))
	respondCachedList(w, r, cache.StockListKeyPrefix+search, func(ctx context.Context) ([]*models.StockItem, error) {
		return h.Service.List(ctx, search)
	})
}

func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	item, err := h.Service.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, stockNotFound)
		return
	}
	utils.RespondData(w, http.StatusOK, item)
}

func (h *StockHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.StockInput
	if !decodeBody(w, r, &req) {
		return
	}
	id, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err, "")
		return
	}
	utils.JSON(w, http.StatusOK, utils.Envelope{
		Success: true,
		Message: "Ürün başarıyla eklendi",
		Data:    map[string]int{"id": id},
	})
}

func (h *StockHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var req models.StockInput
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.Service.Update(r.Context(), id, &req); err != nil {
		respondServiceError(w, err, stockNotFound)
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Ürün başarıyla güncellendi")
}

func (h *StockHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, stockNotFound)
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Ürün başarıyla silindi")
}

// SearchByName returns the items whose name contains ?q= (or ?urun_adi=).
func (h *StockHandler) SearchByName(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		q = r.URL.Query().Get("urun_adi")
	}
	items, err := h.Service.SearchByName(r.Context(), q)
	if err != nil {
		respondServiceError(w, err, stockNotFound)
		return
	}
	if len(items) == 0 {
		utils.RespondError(w, http.StatusNotFound, stockNotFound)
		return
	}
	utils.RespondList(w, items)
}

// SearchByCode accepts the code as a path segment or as ?urun_kodu=.
func (h *StockHandler) SearchByCode(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["kod"]
	if code == "" {
		code = r.URL.Query().Get("urun_kodu")
	}
	if strings.TrimSpace(code) == "" {
		utils.RespondError(w, http.StatusBadRequest, "Ürün kodu zorunludur")
		return
	}
	item, err := h.Service.GetByCode(r.Context(), code)
	if err != nil {
		respondServiceError(w, err, stockNotFound)
		return
	}
	utils.RespondData(w, http.StatusOK, item)
}

func (h *StockHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	var req models.DecrementRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ok, msg, err := h.Service.Decrement(r.Context(), req.Code, req.Quantity)
	if err != nil {
		respondServiceError(w, err, "")
		return
	}
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, msg)
		return
	}
	utils.RespondMessage(w, http.StatusOK, msg)
}

type batchDecrementResponse struct {
	Success   bool     `json:"success"`
	Succeeded []string `json:"basarili_mesajlar"`
	Failed    []string `json:"hata_mesajlari"`
}

// DecrementBatch applies the valid lines and reports every line.
func (h *StockHandler) DecrementBatch(w http.ResponseWriter, r *http.Request) {
	var req models.DecrementBatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	succeeded, failed, err := h.Service.DecrementBatch(r.Context(), req.Lines)
	if err != nil {
		respondServiceError(w, err, "")
		return
	}
	if succeeded == nil {
		succeeded = []string{}
	}
	if failed == nil {
		failed = []string{}
	}
	utils.JSON(w, http.StatusOK, batchDecrementResponse{
		Success:   len(failed) == 0,
		Succeeded: succeeded,
		Failed:    failed,
	})
}

func (h *StockHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	data, err := h.Sheets.ExportStock(r.Context())
	if err != nil {
		respondServiceError(w, err, "")
		return
	}

	filename := fmt.Sprintf("stok_export_%s.xlsx", timeutil.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Write(data)
}

type importResponse struct {
	Success  bool     `json:"success"`
	Accepted int      `json:"basarili"`
	Failed   int      `json:"hatali"`
	Errors   []string `json:"hata_mesajlari"`
	Inserted int      `json:"eklenen"`
	Updated  int      `json:"guncellenen"`
}

// ImportExcel reads the multipart field "file".
func (h *StockHandler) ImportExcel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Dosya okunamadı")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Dosya bulunamadı")
		return
	}
	defer file.Close()

	res, err := h.Sheets.ImportStock(r.Context(), file)
	if err != nil {
		respondServiceError(w, err, "")
		return
	}
	errs := res.Errors
	if errs == nil {
		errs = []string{}
	}
	utils.JSON(w, http.StatusOK, importResponse{
		Success:  true,
		Accepted: res.Inserted + res.Updated,
		Failed:   res.ErrorCount,
		Errors:   errs,
		Inserted: res.Inserted,
		Updated:  res.Updated,
	})
}
