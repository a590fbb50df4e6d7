package usecase

import (
	"context"
	"fmt"

	"github.com/docufill/docufill/internal/core/domain"
	"github.com/docufill/docufill/internal/core/ports"
)

// FillState tracks which placeholder a conversation is collecting. It is the
// only component allowed to move the conversation's current-placeholder
// reference; the dialogue orchestrator goes through Advance and Fill.
type FillState struct {
	conversations ports.ConversationStore
	placeholders  ports.PlaceholderStore
}

func NewFillState(conversations ports.ConversationStore, placeholders ports.PlaceholderStore) *FillState {
	return &FillState{
		conversations: conversations,
		placeholders:  placeholders,
	}
}

// GetOrCreate returns the unique active conversation for the (document,
// session) pair, creating it on first contact.
func (fs *FillState) GetOrCreate(ctx context.Context, documentID, sessionID string) (*domain.Conversation, error) {
	conv, err := fs.conversations.GetOrCreateActive(ctx, documentID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get or create conversation: %w", err)
	}
	return conv, nil
}

// NextUnfilled returns the first unfilled placeholder in creation order, or
// nil when every placeholder is filled.
func (fs *FillState) NextUnfilled(ctx context.Context, documentID string) (*domain.Placeholder, error) {
	unfilled, err := fs.placeholders.ListUnfilled(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list unfilled placeholders: %w", err)
	}
	if len(unfilled) == 0 {
		return nil, nil
	}
	first := unfilled[0]
	return &first, nil
}

// Advance resolves the conversation's current placeholder, assigning the
// next unfilled one when none is set. It returns nil when the document has
// no unfilled placeholders left.
func (fs *FillState) Advance(ctx context.Context, conv *domain.Conversation) (*domain.Placeholder, error) {
	if conv.CurrentPlaceholderID != nil {
		current, err := fs.placeholders.GetByID(ctx, *conv.CurrentPlaceholderID)
		if err == nil && !current.IsFilled {
			return current, nil
		}
		if err != nil && !domain.IsKind(err, domain.ErrPlaceholderNotFound) {
			return nil, fmt.Errorf("load current placeholder: %w", err)
		}
		// Stale reference (deleted or filled out of band): re-resolve below.
	}

	next, err := fs.NextUnfilled(ctx, conv.DocumentID)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, nil
	}
	if err := fs.conversations.SetCurrentPlaceholder(ctx, conv.ID, &next.ID); err != nil {
		return nil, fmt.Errorf("assign current placeholder: %w", err)
	}
	conv.CurrentPlaceholderID = &next.ID
	return next, nil
}

// Fill writes the value, then re-resolves the current placeholder. When no
// unfilled placeholder remains the current reference is cleared and the
// conversation is completed.
func (fs *FillState) Fill(ctx context.Context, conv *domain.Conversation, ph *domain.Placeholder, value string) (*domain.Placeholder, error) {
	if err := fs.placeholders.Fill(ctx, ph.ID, value); err != nil {
		return nil, fmt.Errorf("fill placeholder: %w", err)
	}

	next, err := fs.NextUnfilled(ctx, conv.DocumentID)
	if err != nil {
		return nil, err
	}
	if next == nil {
		if err := fs.conversations.Complete(ctx, conv.ID); err != nil {
			return nil, fmt.Errorf("complete conversation: %w", err)
		}
		conv.CurrentPlaceholderID = nil
		conv.Status = domain.ConversationCompleted
		return nil, nil
	}

	if err := fs.conversations.SetCurrentPlaceholder(ctx, conv.ID, &next.ID); err != nil {
		return nil, fmt.Errorf("advance current placeholder: %w", err)
	}
	conv.CurrentPlaceholderID = &next.ID
	return next, nil
}

// Progress is recomputed from the store on every call, never cached, so it
// stays correct after external mutation.
func (fs *FillState) Progress(ctx context.Context, documentID string) (domain.Progress, error) {
	progress, err := fs.placeholders.Progress(ctx, documentID)
	if err != nil {
		return domain.Progress{}, fmt.Errorf("compute progress: %w", err)
	}
	return progress, nil
}
