package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/services"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/pkg/utils"
)

const workOrderNotFound = "İş evrakı bulunamadı"

// notifyTimeout bounds the render and mail calls of a single request.
const notifyTimeout = 60 * time.Second

// WorkOrderHandler serves /api/is-evraki.
type WorkOrderHandler struct {
	Service  *services.WorkOrderService
	Workflow *services.WorkflowService
}

func NewWorkOrderHandler(s *services.WorkOrderService, workflow *services.WorkflowService) *WorkOrderHandler {
	return &WorkOrderHandler{Service: s, Workflow: workflow}
}

func (h *WorkOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Service.List(r.Context())
	if err != nil {
		respondServiceError(w, err, "")
		return
	}
	utils.RespondList(w, orders)
}

func (h *WorkOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	order, err := h.Service.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, workOrderNotFound)
		return
	}
	utils.RespondData(w, http.StatusOK, order)
}

func (h *WorkOrderHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	no, err := h.Service.NextOrderNumber(r.Context())
	if err != nil {
		respondServiceError(w, err, "")
		return
	}
	utils.RespondData(w, http.StatusOK, map[string]int{"is_emri_no": no})
}

func (h *WorkOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.WorkOrderInput
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
		Message: "İş evrakı başarıyla kaydedildi",
		Data:    map[string]int{"id": id, "is_emri_no": req.OrderNo},
	})
}

func (h *WorkOrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var req models.WorkOrderInput
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.Service.Update(r.Context(), id, &req); err != nil {
		respondServiceError(w, err, workOrderNotFound)
		return
	}
	utils.RespondMessage(w, http.StatusOK, "İş evrakı başarıyla güncellendi")
}

func (h *WorkOrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, workOrderNotFound)
		return
	}
	utils.RespondMessage(w, http.StatusOK, "İş evrakı başarıyla silindi")
}

// SaveAndNotify decrements stock, upserts the customer, saves the order and
// mails the PDF. Only a failed save is an error response.
func (h *WorkOrderHandler) SaveAndNotify(w http.ResponseWriter, r *http.Request) {
	var req models.NotifyWorkOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), notifyTimeout)
	defer cancel()

	res, err := h.Workflow.SaveAndNotify(ctx, &req)
	if err != nil {
		respondServiceError(w, err, workOrderNotFound)
		return
	}
	utils.JSON(w, http.StatusOK, res)
}

func (h *WorkOrderHandler) UpdateAndNotify(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var req models.NotifyWorkOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), notifyTimeout)
	defer cancel()

	res, err := h.Workflow.UpdateAndNotify(ctx, id, &req)
	if err != nil {
		respondServiceError(w, err, workOrderNotFound)
		return
	}
	utils.JSON(w, http.StatusOK, res)
}

// SendExisting mails a stored order again.
func (h *WorkOrderHandler) SendExisting(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), notifyTimeout)
	defer cancel()

	res, err := h.Workflow.SendExisting(ctx, id)
	if err != nil {
		respondServiceError(w, err, workOrderNotFound)
		return
	}
	utils.JSON(w, http.StatusOK, res)
}
