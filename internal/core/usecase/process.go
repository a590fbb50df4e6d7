package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docufill/docufill/internal/core/domain"
	"github.com/docufill/docufill/internal/core/placeholder"
	"github.com/docufill/docufill/internal/core/ports"
)

// ProcessDocumentUseCase runs the one-shot extraction pipeline: scan every
// paragraph for markers, rewrite them into template tags, persist the
// deduplicated placeholder list, and save the template artifact. The
// uploaded -> processing transition is the mutual-exclusion gate; a second
// processing request fails fast instead of reprocessing.
type ProcessDocumentUseCase struct {
	repo         ports.DocumentRepository
	placeholders ports.PlaceholderStore
	storage      ports.ObjectStorage
	docIO        ports.DocumentIO
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	placeholders ports.PlaceholderStore,
	storage ports.ObjectStorage,
	docIO ports.DocumentIO,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:         repo,
		placeholders: placeholders,
		storage:      storage,
		docIO:        docIO,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.repo.ClaimProcessing(ctx, documentID); err != nil {
		return fmt.Errorf("claim document for processing: %w", err)
	}

	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	templateKey, contentText, extracted, err := uc.extractAndRewrite(ctx, doc)
	if err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusError, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark error status: %v", err, failErr)
		}
		return err
	}

	if len(extracted) > 0 {
		if err := uc.placeholders.CreateBulk(ctx, extracted); err != nil {
			if failErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusError, err.Error()); failErr != nil {
				return fmt.Errorf("%w; mark error status: %v", err, failErr)
			}
			return fmt.Errorf("persist placeholders: %w", err)
		}
	}

	if err := uc.repo.SetProcessed(ctx, documentID, contentText, templateKey); err != nil {
		return fmt.Errorf("set status=processed: %w", err)
	}
	return nil
}

// extractAndRewrite is the single sequential traversal over the document's
// paragraphs. Each paragraph's runs are concatenated before scanning so
// markers split across run boundaries are still found; the rewritten text is
// assigned to the first run and the remaining runs are cleared.
func (uc *ProcessDocumentUseCase) extractAndRewrite(ctx context.Context, doc *domain.Document) (string, string, []domain.Placeholder, error) {
	file, err := uc.docIO.Open(ctx, uc.storage.Abs(doc.StoragePath))
	if err != nil {
		return "", "", nil, fmt.Errorf("open source document: %w", err)
	}
	defer file.Close()

	now := time.Now().UTC()
	var state placeholder.ScanState
	var extracted []domain.Placeholder
	var textParts []string

	for _, para := range file.Paragraphs() {
		runs := para.RunTexts()
		full := strings.Join(runs, "")
		if trimmed := strings.TrimSpace(full); trimmed != "" {
			textParts = append(textParts, trimmed)
		}

		matches := placeholder.Scan(full, &state)
		if len(matches) == 0 {
			continue
		}

		for _, m := range matches {
			extracted = append(extracted, domain.Placeholder{
				ID:          uuid.NewString(),
				DocumentID:  doc.ID,
				RawText:     m.Raw,
				StableName:  m.StableName,
				Type:        m.Type,
				Description: m.Description,
				Context:     m.Context,
				SpanStart:   m.Start,
				SpanEnd:     m.End,
				CreatedAt:   now,
			})
		}

		texts := make([]string, len(runs))
		if len(texts) > 0 {
			texts[0] = placeholder.Rewrite(full, matches)
		}
		para.SetRunTexts(texts)
	}

	templateKey := TemplateKey(doc)
	if err := file.SaveAs(uc.storage.Abs(templateKey)); err != nil {
		return "", "", nil, fmt.Errorf("save template artifact: %w", err)
	}

	return templateKey, strings.Join(textParts, "\n"), placeholder.Dedupe(extracted), nil
}

// TemplateKey is the storage key for a document's rewritten template. The
// source artifact is left untouched.
func TemplateKey(doc *domain.Document) string {
	return doc.ID + "_template" + strings.ToLower(filepath.Ext(doc.StoragePath))
}

// OutputKey is the deterministic storage key for the rendered document, so
// repeated renders overwrite the same location.
func OutputKey(doc *domain.Document) string {
	return doc.ID + "_completed" + strings.ToLower(filepath.Ext(doc.StoragePath))
}
