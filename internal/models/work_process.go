package models

import "time"

// ProcessType classifies a work process template.
type ProcessType string

const (
	ProcessTypeDisassembly ProcessType = "Söküm"
	ProcessTypeCleaning    ProcessType = "Temizlik"
	ProcessTypeOverhaul    ProcessType = "Revizyon"
	ProcessTypeAssembly    ProcessType = "Montaj"
)

// ProcessTypes lists the accepted types in display order.
var ProcessTypes = []ProcessType{
	ProcessTypeDisassembly,
	ProcessTypeCleaning,
	ProcessTypeOverhaul,
	ProcessTypeAssembly,
}

// Valid accepts the four types and the empty (untyped) value.
func (t ProcessType) Valid() bool {
	switch t {
	case "", ProcessTypeDisassembly, ProcessTypeCleaning, ProcessTypeOverhaul, ProcessTypeAssembly:
		return true
	}
	return false
}

type WorkProcess struct {
	ID        int           `json:"id"`
	Name      string        `json:"proses_adi"`
	Type      ProcessType   `json:"proses_tipi"`
	Notes     string        `json:"aciklama"`
	CreatedAt time.Time     `json:"olusturma_tarihi"`
	UpdatedAt time.Time     `json:"guncelleme_tarihi"`
	Items     []ProcessItem `json:"maddeler,omitempty"`
}

type ProcessItem struct {
	ID          int        `json:"id"`
	ProcessID   int        `json:"proses_id"`
	Sequence    int        `json:"sira_no"`
	Name        string     `json:"madde_adi"`
	Notes       string     `json:"aciklama"`
	Materials   string     `json:"kullanilan_malzemeler"`
	Completed   bool       `json:"tamamlandi"`
	CompletedAt *time.Time `json:"tamamlanma_tarihi"`
	CreatedAt   time.Time  `json:"olusturma_tarihi"`
}

// WorkProcessInput is the request body for creating or updating a process
type WorkProcessInput struct {
	Name  string             `json:"proses_adi"`
	Type  ProcessType        `json:"proses_tipi"`
	Notes string             `json:"aciklama"`
	Items []ProcessItemInput `json:"maddeler"`
}

// ProcessItemInput is the request body for creating or updating a process item
type ProcessItemInput struct {
	Sequence  int    `json:"sira_no"`
	Name      string `json:"madde_adi"`
	Notes     string `json:"aciklama"`
	Materials string `json:"kullanilan_malzemeler"`
	Completed bool   `json:"tamamlandi"`
}
