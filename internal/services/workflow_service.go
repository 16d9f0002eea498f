package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/metrics"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
)

// DocumentRenderer turns documents into PDF files on local disk. The caller
// owns the returned file and removes it.
type DocumentRenderer interface {
	RenderWorkOrder(ctx context.Context, doc *models.WorkOrderDocument) (string, error)
	RenderMonthlyReport(ctx context.Context, report *models.MonthlyReport) (string, error)
}

// Mailer sends rendered documents to the configured recipients.
type Mailer interface {
	SendWorkOrder(ctx context.Context, doc *models.WorkOrderDocument, pdfPath string) error
	SendMonthlyReport(ctx context.Context, report *models.MonthlyReport, pdfPath string) error
}

// Archiver keeps a copy of a rendered file under key.
type Archiver interface {
	Archive(ctx context.Context, key, path string) error
}

const autoAccountNote = "İş evrakından otomatik eklendi"

// WorkflowService runs the composite work-order operations. Saving the order
// is the only step whose failure fails the operation; stock, account, PDF and
// mail failures are recorded on the result and reported as warnings.
type WorkflowService struct {
	Inventory *InventoryService
	Accounts  *AccountService
	Orders    *WorkOrderService
	Renderer  DocumentRenderer
	Mailer    Mailer
	Archiver  Archiver
	logger    *zap.Logger
}

func NewWorkflowService(inventory *InventoryService, accounts *AccountService, orders *WorkOrderService,
	renderer DocumentRenderer, mailer Mailer, archiver Archiver, logger *zap.Logger) *WorkflowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkflowService{
		Inventory: inventory,
		Accounts:  accounts,
		Orders:    orders,
		Renderer:  renderer,
		Mailer:    mailer,
		Archiver:  archiver,
		logger:    logger,
	}
}

func (s *WorkflowService) record(res *models.WorkflowResult, step string, status models.StepStatus, message string) {
	res.Record(step, status, message)
	metrics.WorkflowStepsTotal.WithLabelValues(step, string(status)).Inc()
	if status == models.StepFailedSoft || status == models.StepFailedFatal {
		s.logger.Warn("workflow step failed",
			zap.String("step", step), zap.String("status", string(status)), zap.String("message", message))
	}
}

// SaveAndNotify decrements stock for the used products, upserts the customer
// account, saves the order and, when requested, renders and mails the PDF.
// The returned error is non-nil only for a rejected request or a failed save;
// the result is returned in both cases.
func (s *WorkflowService) SaveAndNotify(ctx context.Context, req *models.NotifyWorkOrderRequest) (*models.WorkflowResult, error) {
	res := &models.WorkflowResult{
		StockMessages: &models.StockMessages{Succeeded: []string{}, Failed: []string{}},
	}
	if err := s.Orders.Validate(&req.WorkOrderInput); err != nil {
		return res, err
	}

	var lines []models.DecrementLine
	for _, p := range req.UsedProducts {
		if p.Code == "" {
			continue
		}
		lines = append(lines, models.DecrementLine{Code: p.Code, Quantity: p.Quantity, Name: p.Name})
	}
	if len(req.UsedProducts) == 0 {
		s.record(res, models.StepParseProducts, models.StepSkipped, "ürün yok")
	} else {
		s.record(res, models.StepParseProducts, models.StepSucceeded, fmt.Sprintf("%d ürün", len(req.UsedProducts)))
	}

	s.decrementStock(ctx, res, lines)
	s.upsertAccount(ctx, res, req)

	id, err := s.Orders.Create(ctx, &req.WorkOrderInput)
	if err != nil {
		s.record(res, models.StepSaveOrder, models.StepFailedFatal, err.Error())
		res.Message = fmt.Sprintf("İş evrakı kaydedilemedi: %v", err)
		return res, invalid("%s", res.Message)
	}
	res.OrderID = id
	s.record(res, models.StepSaveOrder, models.StepSucceeded, "")

	s.renderAndSend(ctx, res, req)

	res.Success = true
	res.Message = completionMessage("kaydedildi", res)
	return res, nil
}

// UpdateAndNotify updates an existing order and then renders and mails it
// like SaveAndNotify. Stock and accounts are not touched.
func (s *WorkflowService) UpdateAndNotify(ctx context.Context, id int, req *models.NotifyWorkOrderRequest) (*models.WorkflowResult, error) {
	res := &models.WorkflowResult{OrderID: id}
	if err := s.Orders.Validate(&req.WorkOrderInput); err != nil {
		return res, err
	}

	if err := s.Orders.Update(ctx, id, &req.WorkOrderInput); err != nil {
		s.record(res, models.StepUpdateOrder, models.StepFailedFatal, err.Error())
		if IsNotFound(err) {
			res.Message = "İş evrakı bulunamadı"
			return res, err
		}
		res.Message = fmt.Sprintf("İş evrakı güncellenemedi: %v", err)
		return res, invalid("%s", res.Message)
	}
	s.record(res, models.StepUpdateOrder, models.StepSucceeded, "")

	s.renderAndSend(ctx, res, req)

	res.Success = true
	res.Message = completionMessage("güncellendi", res)
	return res, nil
}

// SendExisting renders and mails a stored order. The customer's mail,
// address and tax office come from the customer account with the same
// title. Nothing is saved here, so a render or mail failure is an error.
func (s *WorkflowService) SendExisting(ctx context.Context, id int) (*models.WorkflowResult, error) {
	order, err := s.Orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	contact, err := s.Accounts.Repo.CustomerContactByTitle(ctx, order.CustomerTitle)
	if err != nil {
		s.logger.Warn("customer lookup failed", zap.String("title", order.CustomerTitle), zap.Error(err))
	}

	doc := &models.WorkOrderDocument{
		Order:           orderInput(order),
		CustomerEmail:   contact.Email,
		CustomerAddress: contact.Address,
		TaxOffice:       contact.TaxOffice,
	}

	res := &models.WorkflowResult{OrderID: id}
	path, err := s.Renderer.RenderWorkOrder(ctx, doc)
	if err != nil {
		s.record(res, models.StepRenderPDF, models.StepFailedFatal, err.Error())
		return res, fmt.Errorf("PDF/e-posta gönderiminde hata: %w", err)
	}
	defer os.Remove(path)
	s.record(res, models.StepRenderPDF, models.StepSucceeded, "")

	s.archive(ctx, res, "is-emirleri/", path)

	if err := s.Mailer.SendWorkOrder(ctx, doc, path); err != nil {
		metrics.EmailsSentTotal.WithLabelValues("work_order", "error").Inc()
		s.record(res, models.StepSendEmail, models.StepFailedFatal, err.Error())
		return res, fmt.Errorf("PDF/e-posta gönderiminde hata: %w", err)
	}
	metrics.EmailsSentTotal.WithLabelValues("work_order", "ok").Inc()
	s.record(res, models.StepSendEmail, models.StepSucceeded, "")

	res.Success = true
	res.EmailSent = true
	res.Message = "E-posta başarıyla gönderildi"
	return res, nil
}

func (s *WorkflowService) decrementStock(ctx context.Context, res *models.WorkflowResult, lines []models.DecrementLine) {
	if len(lines) == 0 {
		s.record(res, models.StepDecrementStock, models.StepSkipped, "")
		return
	}

	successes, failures, err := s.Inventory.DecrementBatch(ctx, lines)
	res.StockMessages.Succeeded = append(res.StockMessages.Succeeded, successes...)
	res.StockMessages.Failed = append(res.StockMessages.Failed, failures...)

	switch {
	case err != nil:
		s.record(res, models.StepDecrementStock, models.StepFailedSoft, err.Error())
	case len(failures) > 0:
		s.record(res, models.StepDecrementStock, models.StepFailedSoft,
			fmt.Sprintf("%d satır uygulanamadı", len(failures)))
	default:
		s.record(res, models.StepDecrementStock, models.StepSucceeded, "")
	}
}

func (s *WorkflowService) upsertAccount(ctx context.Context, res *models.WorkflowResult, req *models.NotifyWorkOrderRequest) {
	accepted, message, err := s.Accounts.CreateWithDedupCheck(ctx, &models.AccountInput{
		Title:      req.CustomerTitle,
		Kind:       models.AccountKindCustomer,
		Phone:      req.Phone,
		Email:      req.CustomerEmail,
		Address:    req.CustomerAddress,
		NationalID: req.NationalID,
		TaxNumber:  req.NationalID,
		TaxOffice:  req.TaxOffice,
		Notes:      autoAccountNote,
		LegalForm:  req.LegalForm,
	})
	switch {
	case err != nil:
		res.AccountMessage = err.Error()
		s.record(res, models.StepUpsertAccount, models.StepFailedSoft, err.Error())
	case !accepted:
		res.AccountMessage = message
		s.record(res, models.StepUpsertAccount, models.StepFailedSoft, message)
	default:
		res.AccountMessage = message
		s.record(res, models.StepUpsertAccount, models.StepSucceeded, message)
	}
}

// renderAndSend is the shared best-effort tail of the save and update flows.
func (s *WorkflowService) renderAndSend(ctx context.Context, res *models.WorkflowResult, req *models.NotifyWorkOrderRequest) {
	if !req.ShouldSendEmail() {
		s.record(res, models.StepRenderPDF, models.StepSkipped, "")
		s.record(res, models.StepArchivePDF, models.StepSkipped, "")
		s.record(res, models.StepSendEmail, models.StepSkipped, "")
		return
	}

	doc := &models.WorkOrderDocument{
		Order:           req.WorkOrderInput,
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
		TaxOffice:       req.TaxOffice,
	}

	path, err := s.Renderer.RenderWorkOrder(ctx, doc)
	if err != nil {
		res.Warning = err.Error()
		s.record(res, models.StepRenderPDF, models.StepFailedSoft, err.Error())
		s.record(res, models.StepArchivePDF, models.StepSkipped, "")
		s.record(res, models.StepSendEmail, models.StepSkipped, "")
		return
	}
	defer os.Remove(path)
	s.record(res, models.StepRenderPDF, models.StepSucceeded, "")

	s.archive(ctx, res, "is-emirleri/", path)

	if err := s.Mailer.SendWorkOrder(ctx, doc, path); err != nil {
		metrics.EmailsSentTotal.WithLabelValues("work_order", "error").Inc()
		res.Warning = err.Error()
		s.record(res, models.StepSendEmail, models.StepFailedSoft, err.Error())
		return
	}
	metrics.EmailsSentTotal.WithLabelValues("work_order", "ok").Inc()
	res.EmailSent = true
	s.record(res, models.StepSendEmail, models.StepSucceeded, "")
}

func (s *WorkflowService) archive(ctx context.Context, res *models.WorkflowResult, prefix, path string) {
	if s.Archiver == nil {
		s.record(res, models.StepArchivePDF, models.StepSkipped, "")
		return
	}
	if err := s.Archiver.Archive(ctx, prefix+filepath.Base(path), path); err != nil {
		s.record(res, models.StepArchivePDF, models.StepFailedSoft, err.Error())
		return
	}
	s.record(res, models.StepArchivePDF, models.StepSucceeded, "")
}

func completionMessage(verb string, res *models.WorkflowResult) string {
	if res.Warning != "" {
		return "İş evrakı " + verb + " ancak PDF/e-posta gönderiminde hata oluştu"
	}
	msg := "İş evrakı başarıyla " + verb
	if res.EmailSent {
		msg += " ve e-posta gönderildi"
	}
	return msg
}

func orderInput(w *models.WorkOrder) models.WorkOrderInput {
	return models.WorkOrderInput{
		OrderNo:       w.OrderNo,
		Date:          w.Date,
		CustomerTitle: w.CustomerTitle,
		Phone:         w.Phone,
		Plate:         w.Plate,
		TrailerInfo:   w.TrailerInfo,
		MakeModel:     w.MakeModel,
		RequestedWork: w.RequestedWork,
		Complaint:     w.Complaint,
		WorkDone:      w.WorkDone,
		StartTime:     w.StartTime,
		EndTime:       w.EndTime,
		UsedProducts:  w.UsedProducts,
		TotalAmount:   w.TotalAmount,
		NationalID:    w.NationalID,
	}
}
