package handlers

import (
	"net/http"
	"strconv"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/services"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/pkg/utils"
)

const (
	processNotFound = "İş prosesi bulunamadı"
	itemNotFound    = "Proses maddesi bulunamadı"
)

// WorkProcessHandler serves /api/is-prosesi.
type WorkProcessHandler struct {
	Service *services.WorkProcessService
}

func NewWorkProcessHandler(s *services.WorkProcessService) *WorkProcessHandler {
	return &WorkProcessHandler{Service: s}
}

func (h *WorkProcessHandler) List(w http.ResponseWriter, r *http.Request) {
	processes, err := h.Service.List(r.Context())
	if err != nil {
		respondServiceError(w, err, "")
		return
	}
	utils.RespondList(w, processes)
}

func (h *WorkProcessHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	process, err := h.Service.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, processNotFound)
		return
	}
	utils.RespondData(w, http.StatusOK, process)
}

// Create stores the process and its optional items and returns the result.
func (h *WorkProcessHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.WorkProcessInput
	if !decodeBody(w, r, &req) {
		return
	}
	id, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err, "")
		return
	}
	process, err := h.Service.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, processNotFound)
		return
	}
	utils.JSON(w, http.StatusOK, utils.Envelope{
		Success: true,
		Message: "İş prosesi başarıyla kaydedildi",
		Data:    process,
	})
}

func (h *WorkProcessHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var req models.WorkProcessInput
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.Service.Update(r.Context(), id, &req); err != nil {
		respondServiceError(w, err, processNotFound)
		return
	}
	process, err := h.Service.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, processNotFound)
		return
	}
	utils.JSON(w, http.StatusOK, utils.Envelope{
		Success: true,
		Message: "İş prosesi başarıyla güncellendi",
		Data:    process,
	})
}

func (h *WorkProcessHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, processNotFound)
		return
	}
	utils.RespondMessage(w, http.StatusOK, "İş prosesi başarıyla silindi")
}

func (h *WorkProcessHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	items, err := h.Service.ListItems(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, processNotFound)
		return
	}
	utils.RespondList(w, items)
}

func (h *WorkProcessHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var req models.ProcessItemInput
	if !decodeBody(w, r, &req) {
		return
	}
	itemID, err := h.Service.AddItem(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err, processNotFound)
		return
	}
	utils.JSON(w, http.StatusOK, utils.Envelope{
		Success: true,
		Message: "Proses maddesi başarıyla kaydedildi",
		Data:    map[string]int{"id": itemID},
	})
}

func (h *WorkProcessHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathInt(w, r, "madde_id")
	if !ok {
		return
	}
	var req models.ProcessItemInput
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.Service.UpdateItem(r.Context(), itemID, &req); err != nil {
		respondServiceError(w, err, itemNotFound)
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Proses maddesi başarıyla güncellendi")
}

func (h *WorkProcessHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathInt(w, r, "madde_id")
	if !ok {
		return
	}
	if err := h.Service.DeleteItem(r.Context(), itemID); err != nil {
		respondServiceError(w, err, itemNotFound)
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Proses maddesi başarıyla silindi")
}

// CompleteItem sets the completion flag from ?tamamlandi= (default true).
func (h *WorkProcessHandler) CompleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathInt(w, r, "madde_id")
	if !ok {
		return
	}
	done := true
	if v := r.URL.Query().Get("tamamlandi"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Geçersiz tamamlandi değeri")
			return
		}
		done = b
	}
	if err := h.Service.MarkItemComplete(r.Context(), itemID, done); err != nil {
		respondServiceError(w, err, itemNotFound)
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Proses maddesi durumu güncellendi")
}
