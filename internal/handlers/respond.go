package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/cache"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/services"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/pkg/utils"

	"github.com/gorilla/mux"
)

// respondServiceError maps service errors to statuses. notFound replaces the
// error text on 404 when set.
func respondServiceError(w http.ResponseWriter, err error, notFound string) {
	switch {
	case services.IsValidation(err):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case services.IsNotFound(err):
		if notFound == "" {
			notFound = err.Error()
		}
		utils.RespondError(w, http.StatusNotFound, notFound)
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func pathInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[key])
	if err != nil || id <= 0 {
		utils.RespondError(w, http.StatusBadRequest, "Geçersiz id")
		return 0, false
	}
	return id, true
}

// respondCachedList serves a list envelope from Redis when present and
// stores a fresh one otherwise.
func respondCachedList[T any](w http.ResponseWriter, r *http.Request, key string, load func(ctx context.Context) ([]T, error)) {
	ctx := r.Context()

	// Try cache first
	if data, ok := cache.GetCached(ctx, key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		w.Write(data)
		return
	}

	items, err := load(ctx)
	if err != nil {
		respondServiceError(w, err, "")
		return
	}
	if items == nil {
		items = []T{}
	}
	n := len(items)
	data, err := json.Marshal(utils.Envelope{Success: true, Data: items, Count: &n})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	cache.SetCached(ctx, key, data, cache.ListTTL)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.Write(data)
}
