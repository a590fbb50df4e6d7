package ports

import (
	"context"
	"io"

	"github.com/docufill/docufill/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, offset, limit int) ([]domain.Document, error)
	// ClaimProcessing transitions uploaded -> processing iff the document is
	// still in uploaded status; it is the mutual-exclusion gate against
	// concurrent processing requests.
	ClaimProcessing(ctx context.Context, id string) error
	SetProcessed(ctx context.Context, id, contentText, templatePath string) error
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	Delete(ctx context.Context, id string) error
}

// PlaceholderStore persists placeholders extracted from a document.
type PlaceholderStore interface {
	CreateBulk(ctx context.Context, placeholders []domain.Placeholder) error
	ListByDocument(ctx context.Context, documentID string) ([]domain.Placeholder, error)
	ListUnfilled(ctx context.Context, documentID string) ([]domain.Placeholder, error)
	GetByID(ctx context.Context, id string) (*domain.Placeholder, error)
	Fill(ctx context.Context, id, value string) error
	// Progress counts filled/total in one query so callers never cache it.
	Progress(ctx context.Context, documentID string) (domain.Progress, error)
}

// ConversationStore persists conversations and their transcript turns.
type ConversationStore interface {
	GetOrCreateActive(ctx context.Context, documentID, sessionID string) (*domain.Conversation, error)
	GetByID(ctx context.Context, id string) (*domain.Conversation, error)
	SetCurrentPlaceholder(ctx context.Context, conversationID string, placeholderID *string) error
	Complete(ctx context.Context, conversationID string) error
	AppendTurn(ctx context.Context, turn domain.Turn) error
	ListTurns(ctx context.Context, conversationID string) ([]domain.Turn, error)
}

// ObjectStorage stores source documents, templates and rendered output.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Abs resolves a storage key to a filesystem path for adapters that
	// operate on files directly.
	Abs(key string) string
}

// MessageQueue publishes/consumes document processing events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// ParagraphHandle exposes one paragraph's ordered text runs for read/write.
// Markers may span run boundaries, so callers concatenate RunTexts before
// scanning and write the rewritten text back with SetRunTexts.
type ParagraphHandle interface {
	RunTexts() []string
	SetRunTexts(texts []string)
}

// DocumentFile is an open structured document.
type DocumentFile interface {
	Paragraphs() []ParagraphHandle
	SaveAs(path string) error
	Close() error
}

// DocumentIO opens structured documents by filesystem path.
type DocumentIO interface {
	Open(ctx context.Context, path string) (DocumentFile, error)
}

// TemplateRenderer binds a name->value mapping into a template artifact.
// A tag without a feeding value is a hard error.
type TemplateRenderer interface {
	Render(ctx context.Context, templatePath string, values map[string]string, outputPath string) error
}

// DialogueContext is everything the language capability sees for one turn.
type DialogueContext struct {
	DocumentSummary string
	Placeholder     *domain.Placeholder
	Progress        domain.Progress
	ReuseHints      []domain.Placeholder
	Transcript      []domain.Turn
	Input           string
}

// LanguageCapability produces directives and placeholder introductions.
// Implementations map malformed or empty model output to domain.ErrCapability.
type LanguageCapability interface {
	NextDirective(ctx context.Context, dc DialogueContext) (domain.Directive, error)
	Introduce(ctx context.Context, dc DialogueContext) (string, error)
}
