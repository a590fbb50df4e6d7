package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusProcessed  DocumentStatus = "processed"
	StatusCompleted  DocumentStatus = "completed"
	StatusError      DocumentStatus = "error"
)

type Document struct {
	ID           string         `json:"id"`
	Filename     string         `json:"filename"`
	MimeType     string         `json:"mime_type"`
	StoragePath  string         `json:"storage_path"`
	TemplatePath string         `json:"template_path,omitempty"`
	ContentText  string         `json:"content_text,omitempty"`
	Status       DocumentStatus `json:"status"`
	Error        string         `json:"error,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type PlaceholderType string

const (
	TypeText       PlaceholderType = "text"
	TypeName       PlaceholderType = "name"
	TypeDate       PlaceholderType = "date"
	TypeAmount     PlaceholderType = "amount"
	TypeEmail      PlaceholderType = "email"
	TypeAddress    PlaceholderType = "address"
	TypePhone      PlaceholderType = "phone"
	TypeNumber     PlaceholderType = "number"
	TypePercentage PlaceholderType = "percentage"
	TypeBoolean    PlaceholderType = "boolean"
)

// Placeholder is one fillable slot extracted from a document. StableName is
// unique within the document and doubles as the template tag name.
type Placeholder struct {
	ID          string          `json:"id"`
	DocumentID  string          `json:"document_id"`
	RawText     string          `json:"raw_text"`
	StableName  string          `json:"stable_name"`
	Type        PlaceholderType `json:"type"`
	Description string          `json:"description,omitempty"`
	Context     string          `json:"context,omitempty"`
	SpanStart   int             `json:"span_start"`
	SpanEnd     int             `json:"span_end"`
	FilledValue *string         `json:"filled_value,omitempty"`
	IsFilled    bool            `json:"is_filled"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Progress is always derived from the placeholder rows, never cached.
type Progress struct {
	Filled int `json:"filled"`
	Total  int `json:"total"`
}

func (p Progress) Percentage() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Filled) / float64(p.Total) * 100
}

func (p Progress) Complete() bool {
	return p.Total > 0 && p.Filled == p.Total
}
