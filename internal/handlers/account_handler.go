package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/cache"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/services"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/pkg/utils"

	"github.com/gorilla/mux"
)

const accountNotFound = "Cari hesap bulunamadı"

// AccountHandler serves /api/cari.
type AccountHandler struct {
	Service *services.AccountService
}

func NewAccountHandler(s *services.AccountService) *AccountHandler {
	return &AccountHandler{Service: s}
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("arama"))
	kind := models.AccountKind(r.URL.Query().Get("tip"))
	key := cache.AccountListKeyPrefix + string(kind) + ":" + search
	respondCachedList(w, r, key, func(ctx context.Context) ([]*models.Account, error) {
		return h.Service.List(ctx, search, kind)
	})
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	account, err := h.Service.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, accountNotFound)
		return
	}
	utils.RespondData(w, http.StatusOK, account)
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.AccountInput
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
		Message: "Cari hesap başarıyla eklendi",
		Data:    map[string]int{"id": id},
	})
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var req models.AccountInput
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.Service.Update(r.Context(), id, &req); err != nil {
		respondServiceError(w, err, accountNotFound)
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Cari hesap başarıyla güncellendi")
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, accountNotFound)
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Cari hesap başarıyla silindi")
}

// FindByNationalID accepts the ID as a path segment or as ?tc_kimlik_no=.
func (h *AccountHandler) FindByNationalID(w http.ResponseWriter, r *http.Request) {
	tc := mux.Vars(r)["tc"]
	if tc == "" {
		tc = r.URL.Query().Get("tc_kimlik_no")
	}
	if strings.TrimSpace(tc) == "" {
		utils.RespondError(w, http.StatusBadRequest, "TC kimlik no zorunludur")
		return
	}
	account, err := h.Service.FindByNationalID(r.Context(), tc)
	if err != nil {
		respondServiceError(w, err, accountNotFound)
		return
	}
	utils.RespondData(w, http.StatusOK, account)
}

func (h *AccountHandler) FindByTitle(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("q")
	if title == "" {
		title = r.URL.Query().Get("unvan")
	}
	if strings.TrimSpace(title) == "" {
		utils.RespondError(w, http.StatusBadRequest, "Ünvan zorunludur")
		return
	}
	account, err := h.Service.FindByTitle(r.Context(), title)
	if err != nil {
		respondServiceError(w, err, accountNotFound)
		return
	}
	utils.RespondData(w, http.StatusOK, account)
}

func (h *AccountHandler) NextCode(w http.ResponseWriter, r *http.Request) {
	code, err := h.Service.NextCode(r.Context())
	if err != nil {
		respondServiceError(w, err, "")
		return
	}
	utils.RespondData(w, http.StatusOK, map[string]string{"cari_kodu": code})
}

// CreateWithDedupCheck answers 200 for both inserts and existing matches;
// success is false only when the insert itself was refused.
func (h *AccountHandler) CreateWithDedupCheck(w http.ResponseWriter, r *http.Request) {
	var req models.AccountInput
	if !decodeBody(w, r, &req) {
		return
	}
	accepted, msg, err := h.Service.CreateWithDedupCheck(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err, "")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{"success": accepted, "message": msg})
}
