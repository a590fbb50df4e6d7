package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/docufill/docufill/internal/core/domain"
)

func TestRenderRequiresTemplateArtifact(t *testing.T) {
	doc := processedDoc("doc-1")
	doc.TemplatePath = ""
	doc.Status = domain.StatusProcessing
	repo := newFakeDocRepo(doc)
	uc := NewRenderDocumentUseCase(repo, &fakePlaceholderStore{}, newFakeStorage(), &fakeRenderer{})

	_, err := uc.Render(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrInvalidStatus) {
		t.Fatalf("error kind: %v", err)
	}
}

func TestRenderRejectsUnfilledPlaceholders(t *testing.T) {
	repo := newFakeDocRepo(processedDoc("doc-1"))
	store := &fakePlaceholderStore{}
	seedPlaceholders(store, "doc-1", "Client_Name", "Effective_Date")
	if err := store.Fill(context.Background(), "doc-1-Client_Name", "Acme"); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	renderer := &fakeRenderer{}
	uc := NewRenderDocumentUseCase(repo, store, newFakeStorage(), renderer)

	_, err := uc.Render(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("error kind: %v", err)
	}
	if renderer.output != "" {
		t.Fatal("renderer was invoked despite unfilled placeholders")
	}
}

func TestRenderProducesOutputAndCompletes(t *testing.T) {
	repo := newFakeDocRepo(processedDoc("doc-1"))
	store := &fakePlaceholderStore{}
	seedPlaceholders(store, "doc-1", "Client_Name", "Effective_Date")
	store.Fill(context.Background(), "doc-1-Client_Name", "Acme Corp")
	store.Fill(context.Background(), "doc-1-Effective_Date", "2026-01-15")
	renderer := &fakeRenderer{}
	storage := newFakeStorage()
	uc := NewRenderDocumentUseCase(repo, store, storage, renderer)

	key, err := uc.Render(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if key != "doc-1_completed.docx" {
		t.Fatalf("output key = %q", key)
	}
	if renderer.template != storage.Abs("doc-1_template.docx") {
		t.Fatalf("template path = %q", renderer.template)
	}
	if renderer.output != storage.Abs(key) {
		t.Fatalf("output path = %q", renderer.output)
	}
	if renderer.values["Client_Name"] != "Acme Corp" || renderer.values["Effective_Date"] != "2026-01-15" {
		t.Fatalf("values = %+v", renderer.values)
	}

	doc, _ := repo.GetByID(context.Background(), "doc-1")
	if doc.Status != domain.StatusCompleted {
		t.Fatalf("status = %s, want completed", doc.Status)
	}
}

func TestRenderRepeatableAfterCompletion(t *testing.T) {
	repo := newFakeDocRepo(processedDoc("doc-1"))
	store := &fakePlaceholderStore{}
	seedPlaceholders(store, "doc-1", "Client_Name")
	store.Fill(context.Background(), "doc-1-Client_Name", "Acme")
	uc := NewRenderDocumentUseCase(repo, store, newFakeStorage(), &fakeRenderer{})

	first, err := uc.Render(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("first Render: %v", err)
	}
	second, err := uc.Render(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("second Render: %v", err)
	}
	if first != second {
		t.Fatalf("output key changed between renders: %q vs %q", first, second)
	}
}

func TestRenderFailureKeepsStatus(t *testing.T) {
	repo := newFakeDocRepo(processedDoc("doc-1"))
	store := &fakePlaceholderStore{}
	seedPlaceholders(store, "doc-1", "Client_Name")
	store.Fill(context.Background(), "doc-1-Client_Name", "Acme")
	uc := NewRenderDocumentUseCase(repo, store, newFakeStorage(),
		&fakeRenderer{err: errors.New("template tag has no value")})

	_, err := uc.Render(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrRender) {
		t.Fatalf("error kind: %v", err)
	}
	doc, _ := repo.GetByID(context.Background(), "doc-1")
	if doc.Status != domain.StatusProcessed {
		t.Fatalf("status changed on failed render: %s", doc.Status)
	}
}
