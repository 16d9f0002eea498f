package models

// StepStatus is the outcome of one step of a composite work-order operation.
type StepStatus string

const (
	StepSucceeded   StepStatus = "succeeded"
	StepFailedSoft  StepStatus = "failed_soft"
	StepFailedFatal StepStatus = "failed_fatal"
	StepSkipped     StepStatus = "skipped"
)

// Workflow step names.
const (
	StepParseProducts  = "parse_products"
	StepDecrementStock = "decrement_stock"
	StepUpsertAccount  = "upsert_account"
	StepSaveOrder      = "save_order"
	StepUpdateOrder    = "update_order"
	StepRenderPDF      = "render_pdf"
	StepArchivePDF     = "archive_pdf"
	StepSendEmail      = "send_email"
)

type StepOutcome struct {
	Step    string     `json:"step"`
	Status  StepStatus `json:"status"`
	Message string     `json:"message,omitempty"`
}

// WorkflowResult is the response of save-and-notify and update-and-notify.
type WorkflowResult struct {
	Success        bool           `json:"success"`
	Message        string         `json:"message"`
	OrderID        int            `json:"id,omitempty"`
	StockMessages  *StockMessages `json:"stok_mesajlari,omitempty"`
	AccountMessage string         `json:"cari_mesaji,omitempty"`
	EmailSent      bool           `json:"email_sent"`
	Warning        string         `json:"warning,omitempty"`
	Steps          []StepOutcome  `json:"steps"`
}

// Record appends a step outcome.
func (r *WorkflowResult) Record(step string, status StepStatus, message string) {
	r.Steps = append(r.Steps, StepOutcome{Step: step, Status: status, Message: message})
}

// Status returns the recorded status of a step, or an empty value.
func (r *WorkflowResult) Status(step string) StepStatus {
	for _, s := range r.Steps {
		if s.Step == step {
			return s.Status
		}
	}
	return ""
}
