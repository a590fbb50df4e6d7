package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/docufill/docufill/internal/core/domain"
	"github.com/docufill/docufill/internal/core/placeholder"
	"github.com/docufill/docufill/internal/core/ports"
)

const (
	retryMessage = "I'm having trouble processing your request. Could you please try again?"

	readyInput = "I'm ready to help you fill out this document. Let's start with the first placeholder."

	contentPreviewChars = 500
)

var triggerPhrases = []string{"start", "begin", "help me fill", "initial", "trigger"}

// DialogueUseCase is the conversation-driven fill state machine. One user
// turn runs: ensure conversation, resolve current placeholder, obtain a
// directive from the language capability, apply it against the fill-state
// tracker and the value validator, and produce the next prompt. Turns within
// a conversation are serialized; the current-placeholder read/advance/fill
// sequence is not atomic on its own.
type DialogueUseCase struct {
	repo       ports.DocumentRepository
	state      *FillState
	transcript ports.ConversationStore
	capability ports.LanguageCapability
	timeout    time.Duration

	mu        sync.Mutex
	turnLocks map[string]*sync.Mutex
}

func NewDialogueUseCase(
	repo ports.DocumentRepository,
	state *FillState,
	transcript ports.ConversationStore,
	capability ports.LanguageCapability,
	timeout time.Duration,
) *DialogueUseCase {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &DialogueUseCase{
		repo:       repo,
		state:      state,
		transcript: transcript,
		capability: capability,
		timeout:    timeout,
		turnLocks:  make(map[string]*sync.Mutex),
	}
}

func (uc *DialogueUseCase) HandleTurn(ctx context.Context, documentID, sessionID, message string) (*ports.TurnResult, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	if doc.Status != domain.StatusProcessed && doc.Status != domain.StatusCompleted {
		return nil, domain.WrapError(domain.ErrInvalidStatus, "handle turn",
			fmt.Errorf("document %s is %s, not processed", doc.ID, doc.Status))
	}

	if strings.TrimSpace(sessionID) == "" {
		sessionID = uuid.NewString()
	}

	conv, err := uc.state.GetOrCreate(ctx, documentID, sessionID)
	if err != nil {
		return nil, err
	}

	lock := uc.conversationLock(conv.ID)
	lock.Lock()
	defer lock.Unlock()

	transcript, err := uc.transcript.ListTurns(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}

	current, err := uc.state.Advance(ctx, conv)
	if err != nil {
		return nil, err
	}

	input := message
	if isInitialTrigger(message, transcript) && current != nil {
		input = readyInput
	}

	if err := uc.appendTurn(ctx, conv.ID, domain.RoleUser, message, current); err != nil {
		return nil, err
	}

	reply, current := uc.evaluate(ctx, doc, conv, current, transcript, input)

	if err := uc.appendTurn(ctx, conv.ID, domain.RoleAssistant, reply, current); err != nil {
		return nil, err
	}

	progress, err := uc.state.Progress(ctx, documentID)
	if err != nil {
		return nil, err
	}

	isComplete := progress.Complete() || conv.Status == domain.ConversationCompleted
	if isComplete {
		// Completed conversations never mutate fill state again, so their
		// lock entry is dropped to keep the map bounded by active
		// conversations. Waiters already holding the old mutex are unaffected.
		uc.releaseConversationLock(conv.ID)
	}

	return &ports.TurnResult{
		Reply:              reply,
		ConversationID:     conv.ID,
		SessionID:          sessionID,
		CurrentPlaceholder: current,
		Progress:           progress,
		IsComplete:         isComplete,
	}, nil
}

// evaluate obtains one directive from the capability and applies it. Every
// failure path here is recoverable per turn: the conversation state is left
// unchanged and a retry message becomes the reply.
func (uc *DialogueUseCase) evaluate(
	ctx context.Context,
	doc *domain.Document,
	conv *domain.Conversation,
	current *domain.Placeholder,
	transcript []domain.Turn,
	input string,
) (string, *domain.Placeholder) {
	if current == nil {
		if conv.Status == domain.ConversationCompleted {
			return "This document is already complete and ready for download.", nil
		}
		return "There are no placeholders left to fill in this document.", nil
	}

	progress, err := uc.state.Progress(ctx, doc.ID)
	if err != nil {
		return retryMessage, current
	}

	dc := ports.DialogueContext{
		DocumentSummary: documentSummary(doc),
		Placeholder:     current,
		Progress:        progress,
		ReuseHints:      uc.reuseHints(ctx, doc.ID, current),
		Transcript:      transcript,
		Input:           input,
	}

	capCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	directive, err := uc.capability.NextDirective(capCtx, dc)
	cancel()
	if err != nil {
		return retryMessage, current
	}

	switch directive.Kind {
	case domain.DirectiveFill:
		return uc.applyFill(ctx, doc, conv, current, transcript, directive.Value)
	case domain.DirectiveRequestMoreInfo:
		reply := directive.Question
		if directive.Examples != "" {
			reply = fmt.Sprintf("%s\n\nFor example: %s", directive.Question, directive.Examples)
		}
		return reply, current
	case domain.DirectiveComplete:
		if err := uc.transcript.Complete(ctx, conv.ID); err != nil {
			return retryMessage, current
		}
		conv.Status = domain.ConversationCompleted
		conv.CurrentPlaceholderID = nil
		return directive.Message + "\n\nYour document is now complete and ready for download!", nil
	default:
		return retryMessage, current
	}
}

func (uc *DialogueUseCase) applyFill(
	ctx context.Context,
	doc *domain.Document,
	conv *domain.Conversation,
	current *domain.Placeholder,
	transcript []domain.Turn,
	value string,
) (string, *domain.Placeholder) {
	ok, reason := placeholder.Validate(current.Type, value)
	if !ok {
		return fmt.Sprintf("Validation failed: %s. Please provide a valid value.", reason), current
	}

	next, err := uc.state.Fill(ctx, conv, current, value)
	if err != nil {
		return retryMessage, current
	}

	confirmation := fmt.Sprintf("Perfect! I've filled '%s' with: %s", current.RawText, value)

	if next == nil {
		return confirmation + "\n\nCongratulations! All placeholders have been filled. Your document is now complete and ready for download!", nil
	}

	intro := uc.introduceNext(ctx, doc, next, transcript)
	return confirmation + "\n\n" + intro, next
}

// introduceNext synthesizes a second capability call so the user gets a
// smooth hand-off into the next field. Falling back to a plain prompt keeps
// the turn usable when the capability is unavailable.
func (uc *DialogueUseCase) introduceNext(ctx context.Context, doc *domain.Document, next *domain.Placeholder, transcript []domain.Turn) string {
	progress, err := uc.state.Progress(ctx, doc.ID)
	if err != nil {
		return fallbackIntro(next)
	}

	dc := ports.DialogueContext{
		DocumentSummary: documentSummary(doc),
		Placeholder:     next,
		Progress:        progress,
		ReuseHints:      uc.reuseHints(ctx, doc.ID, next),
		Transcript:      transcript,
		Input:           "The previous placeholder has been filled successfully. Please introduce the next placeholder and ask for the required information.",
	}

	capCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	intro, err := uc.capability.Introduce(capCtx, dc)
	if err != nil || strings.TrimSpace(intro) == "" {
		return fallbackIntro(next)
	}
	return intro
}

// reuseHints surfaces already-filled placeholders whose names share a token
// with the current one, so the capability can suggest reusing a value.
func (uc *DialogueUseCase) reuseHints(ctx context.Context, documentID string, current *domain.Placeholder) []domain.Placeholder {
	all, err := uc.state.placeholders.ListByDocument(ctx, documentID)
	if err != nil {
		return nil
	}
	currentTokens := nameTokens(current.StableName)
	hints := make([]domain.Placeholder, 0, 2)
	for _, p := range all {
		if !p.IsFilled || p.StableName == current.StableName {
			continue
		}
		if sharesToken(currentTokens, nameTokens(p.StableName)) {
			hints = append(hints, p)
		}
	}
	return hints
}

func (uc *DialogueUseCase) appendTurn(ctx context.Context, conversationID string, role domain.TurnRole, content string, ph *domain.Placeholder) error {
	turn := domain.Turn{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	if ph != nil {
		turn.PlaceholderID = &ph.ID
	}
	if err := uc.transcript.AppendTurn(ctx, turn); err != nil {
		return fmt.Errorf("append %s turn: %w", role, err)
	}
	return nil
}

func (uc *DialogueUseCase) conversationLock(conversationID string) *sync.Mutex {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	lock, ok := uc.turnLocks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		uc.turnLocks[conversationID] = lock
	}
	return lock
}

func (uc *DialogueUseCase) releaseConversationLock(conversationID string) {
	uc.mu.Lock()
	delete(uc.turnLocks, conversationID)
	uc.mu.Unlock()
}

// isInitialTrigger recognizes the content-free first message a frontend
// sends to open the dialogue, so the capability receives a canned "ready to
// start" instruction instead of echoing it.
func isInitialTrigger(message string, transcript []domain.Turn) bool {
	if len(transcript) == 0 {
		return true
	}
	lower := strings.ToLower(strings.TrimSpace(message))
	if len(lower) < 5 {
		return true
	}
	for _, phrase := range triggerPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func documentSummary(doc *domain.Document) string {
	summary := "Document: " + doc.Filename
	if doc.ContentText != "" {
		preview := doc.ContentText
		if len(preview) > contentPreviewChars {
			cut := contentPreviewChars
			for cut > 0 && !utf8.RuneStart(preview[cut]) {
				cut--
			}
			preview = preview[:cut] + "..."
		}
		summary += "\n\nContent preview: " + preview
	}
	return summary
}

func fallbackIntro(next *domain.Placeholder) string {
	return fmt.Sprintf("Now I need information for: %s. Could you please provide this information?", next.RawText)
}

func nameTokens(name string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range strings.Split(strings.ToLower(name), "_") {
		if len(tok) > 2 {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}

func sharesToken(a, b map[string]struct{}) bool {
	for tok := range a {
		if _, ok := b[tok]; ok {
			return true
		}
	}
	return false
}
