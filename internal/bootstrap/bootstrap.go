package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/docufill/docufill/internal/config"
	"github.com/docufill/docufill/internal/core/ports"
	"github.com/docufill/docufill/internal/core/usecase"
	"github.com/docufill/docufill/internal/infrastructure/docio"
	"github.com/docufill/docufill/internal/infrastructure/llm/ollama"
	"github.com/docufill/docufill/internal/infrastructure/queue/nats"
	"github.com/docufill/docufill/internal/infrastructure/repository/postgres"
	"github.com/docufill/docufill/internal/infrastructure/resilience"
	"github.com/docufill/docufill/internal/infrastructure/storage/localfs"
	"github.com/docufill/docufill/internal/infrastructure/templating"
)

type App struct {
	Config config.Config

	Queue        ports.MessageQueue
	Repo         ports.DocumentRepository
	Placeholders ports.PlaceholderStore
	Storage      ports.ObjectStorage

	IngestUC   ports.DocumentIngestor
	ProcessUC  ports.DocumentProcessor
	DialogueUC ports.DialogueService
	RenderUC   ports.DocumentRenderer

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	placeholders := postgres.NewPlaceholderRepository(db)
	conversations := postgres.NewConversationRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	capability := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel).WithExecutor(executor)

	documents := docio.NewMux()
	renderer := templating.New(documents)

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, placeholders, storage, documents)
	fillState := usecase.NewFillState(conversations, placeholders)
	dialogueUC := usecase.NewDialogueUseCase(
		repo,
		fillState,
		conversations,
		capability,
		time.Duration(cfg.DialogueTimeoutSeconds)*time.Second,
	)
	renderUC := usecase.NewRenderDocumentUseCase(repo, placeholders, storage, renderer)

	return &App{
		Config: cfg,

		Queue:        queue,
		Repo:         repo,
		Placeholders: placeholders,
		Storage:      storage,

		IngestUC:   ingestUC,
		ProcessUC:  processUC,
		DialogueUC: dialogueUC,
		RenderUC:   renderUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
