package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docufill/docufill/internal/core/domain"
)

type ConversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// GetOrCreateActive relies on the partial unique index over active
// conversations: the insert is a no-op when an active conversation already
// exists for the (document, session) pair, and the follow-up select returns
// the surviving row either way.
func (r *ConversationRepository) GetOrCreateActive(ctx context.Context, documentID, sessionID string) (*domain.Conversation, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO conversations (id, document_id, session_id, status, current_placeholder_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, NULL, $5, $5)
ON CONFLICT (document_id, session_id) WHERE status = 'active' DO NOTHING
`, uuid.NewString(), documentID, sessionID, string(domain.ConversationActive), now)
	if err != nil {
		return nil, fmt.Errorf("ensure conversation insert: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
SELECT id, document_id, session_id, status, current_placeholder_id, created_at, updated_at
FROM conversations
WHERE document_id = $1 AND session_id = $2 AND status = $3
`, documentID, sessionID, string(domain.ConversationActive))

	conv, err := scanConversation(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("ensure conversation select: %w", err)
	}
	return conv, nil
}

func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, document_id, session_id, status, current_placeholder_id, created_at, updated_at
FROM conversations
WHERE id = $1
`, id)

	conv, err := scanConversation(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrConversationNotFound, "get conversation", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan conversation: %w", err)
	}
	return conv, nil
}

func (r *ConversationRepository) SetCurrentPlaceholder(ctx context.Context, conversationID string, placeholderID *string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE conversations
SET current_placeholder_id = $2, updated_at = $3
WHERE id = $1
`, conversationID, placeholderID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set current placeholder: %w", err)
	}
	return requireConversationAffected(res, "set current placeholder", conversationID)
}

func (r *ConversationRepository) Complete(ctx context.Context, conversationID string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE conversations
SET status = $2, current_placeholder_id = NULL, updated_at = $3
WHERE id = $1
`, conversationID, string(domain.ConversationCompleted), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("complete conversation: %w", err)
	}
	return requireConversationAffected(res, "complete conversation", conversationID)
}

func (r *ConversationRepository) AppendTurn(ctx context.Context, turn domain.Turn) error {
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO conversation_turns (id, conversation_id, role, content, placeholder_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, turn.ID, turn.ConversationID, string(turn.Role), turn.Content, turn.PlaceholderID, turn.CreatedAt)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

func (r *ConversationRepository) ListTurns(ctx context.Context, conversationID string) ([]domain.Turn, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, conversation_id, role, content, placeholder_id, created_at
FROM conversation_turns
WHERE conversation_id = $1
ORDER BY created_at ASC, id ASC
`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Turn, 0, 16)
	for rows.Next() {
		var turn domain.Turn
		var role string
		if err := rows.Scan(
			&turn.ID,
			&turn.ConversationID,
			&role,
			&turn.Content,
			&turn.PlaceholderID,
			&turn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turn.Role = domain.TurnRole(role)
		out = append(out, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	return out, nil
}

func scanConversation(scan func(dest ...any) error) (*domain.Conversation, error) {
	var conv domain.Conversation
	var status string
	err := scan(
		&conv.ID,
		&conv.DocumentID,
		&conv.SessionID,
		&status,
		&conv.CurrentPlaceholderID,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	conv.Status = domain.ConversationStatus(status)
	return &conv, nil
}

func requireConversationAffected(res sql.Result, operation, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrConversationNotFound, operation, fmt.Errorf("id %s", id))
	}
	return nil
}
