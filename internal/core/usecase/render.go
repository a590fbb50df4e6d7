package usecase

import (
	"context"
	"fmt"

	"github.com/docufill/docufill/internal/core/domain"
	"github.com/docufill/docufill/internal/core/ports"
)

// RenderDocumentUseCase binds filled values into the template artifact and
// produces the completed document. Rendering is only offered once every
// placeholder is filled; a failed render leaves document status untouched so
// the operation can simply be retried.
type RenderDocumentUseCase struct {
	repo         ports.DocumentRepository
	placeholders ports.PlaceholderStore
	storage      ports.ObjectStorage
	renderer     ports.TemplateRenderer
}

func NewRenderDocumentUseCase(
	repo ports.DocumentRepository,
	placeholders ports.PlaceholderStore,
	storage ports.ObjectStorage,
	renderer ports.TemplateRenderer,
) *RenderDocumentUseCase {
	return &RenderDocumentUseCase{
		repo:         repo,
		placeholders: placeholders,
		storage:      storage,
		renderer:     renderer,
	}
}

// Render produces the completed document and returns its storage key.
func (uc *RenderDocumentUseCase) Render(ctx context.Context, documentID string) (string, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("fetch document by id: %w", err)
	}
	if doc.TemplatePath == "" {
		return "", domain.WrapError(domain.ErrInvalidStatus, "render document",
			fmt.Errorf("document %s has no template artifact, status is %s", doc.ID, doc.Status))
	}

	all, err := uc.placeholders.ListByDocument(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("list placeholders: %w", err)
	}

	values := make(map[string]string, len(all))
	var unfilled []string
	for _, p := range all {
		if !p.IsFilled || p.FilledValue == nil {
			unfilled = append(unfilled, p.StableName)
			continue
		}
		values[p.StableName] = *p.FilledValue
	}
	if len(unfilled) > 0 {
		return "", domain.WrapError(domain.ErrInvalidInput, "render document",
			fmt.Errorf("%d placeholders still unfilled: %v", len(unfilled), unfilled))
	}

	outputKey := OutputKey(doc)
	if err := uc.renderer.Render(ctx, uc.storage.Abs(doc.TemplatePath), values, uc.storage.Abs(outputKey)); err != nil {
		return "", domain.WrapError(domain.ErrRender, "render document", err)
	}

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusCompleted, ""); err != nil {
		return "", fmt.Errorf("set status=completed: %w", err)
	}
	return outputKey, nil
}
