package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/services"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/pkg/utils"
)

// MonthlyReportHandler serves POST /api/aylik-rapor/gonder.
type MonthlyReportHandler struct {
	Service    *services.MonthlyReportService
	CronSecret string
	now        func() time.Time
}

func NewMonthlyReportHandler(s *services.MonthlyReportService, cronSecret string) *MonthlyReportHandler {
	return &MonthlyReportHandler{Service: s, CronSecret: cronSecret, now: time.Now}
}

// Send builds and mails the report for ?ay=&yil=, or for the previous month
// when either is missing. With a configured secret the caller must present
// it as ?secret=, X-Cron-Secret or a bearer token.
func (h *MonthlyReportHandler) Send(w http.ResponseWriter, r *http.Request) {
	if h.CronSecret != "" && !h.authorized(r) {
		utils.RespondError(w, http.StatusForbidden, "Geçersiz veya eksik CRON_SECRET.")
		return
	}

	q := r.URL.Query()
	month, year := h.Service.PreviousMonth(h.now())
	if q.Get("ay") != "" && q.Get("yil") != "" {
		m, errM := strconv.Atoi(q.Get("ay"))
		y, errY := strconv.Atoi(q.Get("yil"))
		if errM != nil || errY != nil {
			utils.RespondError(w, http.StatusBadRequest, "Geçersiz ay veya yıl.")
			return
		}
		month, year = m, y
	}
	if err := h.Service.Validate(month, year); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	res, err := h.Service.Run(ctx, month, year)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, res)
}

func (h *MonthlyReportHandler) authorized(r *http.Request) bool {
	provided := r.URL.Query().Get("secret")
	if provided == "" {
		provided = r.Header.Get("X-Cron-Secret")
	}
	if provided == "" {
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			provided = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(h.CronSecret)) == 1
}
