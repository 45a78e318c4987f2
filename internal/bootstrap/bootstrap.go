package bootstrap

import (
	"context"
	"fmt"

	"github.com/avasilkov/secure-doc-portal/internal/config"
	"github.com/avasilkov/secure-doc-portal/internal/core/ports"
	"github.com/avasilkov/secure-doc-portal/internal/core/usecase"
	natsqueue "github.com/avasilkov/secure-doc-portal/internal/infrastructure/queue/nats"
	"github.com/avasilkov/secure-doc-portal/internal/infrastructure/repository/memory"
	"github.com/avasilkov/secure-doc-portal/internal/infrastructure/repository/postgres"
	"github.com/avasilkov/secure-doc-portal/internal/infrastructure/resilience"
	"github.com/avasilkov/secure-doc-portal/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Lifecycle ports.DocumentLifecycle
	Events    ports.EventStream

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	var (
		repo    ports.DocumentRepository
		audit   ports.AuditLog
		closeFn = func() {}
	)

	switch cfg.RepositoryDriver {
	case "memory":
		store := memory.NewStore()
		repo = store
		audit = store
	default:
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		repo = postgres.NewDocumentRepository(db)
		audit = postgres.NewAuditLogRepository(db)
		closeFn = func() { _ = db.Close() }
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		closeFn()
		return nil, fmt.Errorf("init payload storage: %w", err)
	}

	var events ports.EventStream
	if cfg.NATSURL != "" {
		queue, err := natsqueue.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsqueue.Options{
			ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
		})
		if err != nil {
			closeFn()
			return nil, fmt.Errorf("init event stream: %w", err)
		}
		events = queue
		dbClose := closeFn
		closeFn = func() {
			queue.Close()
			dbClose()
		}
	}

	var publisher ports.EventPublisher
	if events != nil {
		publisher = events
	}
	lifecycle := usecase.NewLifecycleUseCase(repo, audit, storage, publisher)

	return &App{
		Config:    cfg,
		Lifecycle: lifecycle,
		Events:    events,
		closeFn:   closeFn,
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
