package ports

import (
	"context"
	"io"

	"github.com/docufill/docufill/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for placeholder extraction.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// TurnResult is what one dialogue turn returns to the caller.
type TurnResult struct {
	Reply              string
	ConversationID     string
	SessionID          string
	CurrentPlaceholder *domain.Placeholder
	Progress           domain.Progress
	IsComplete         bool
}

// DialogueService is the inbound contract for conversation turns.
type DialogueService interface {
	HandleTurn(ctx context.Context, documentID, sessionID, message string) (*TurnResult, error)
}

// DocumentRenderer produces the completed document artifact.
type DocumentRenderer interface {
	Render(ctx context.Context, documentID string) (string, error)
}
