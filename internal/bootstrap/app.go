package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"flash-backend/internal/bridge"
	"flash-backend/internal/flash"
	"flash-backend/internal/queue"
	"flash-backend/internal/sessions"
	"flash-backend/internal/shared/config"
	"flash-backend/internal/shared/server"
	"flash-backend/internal/shared/storage/db"
	"flash-backend/internal/shared/storage/docstore"
	firestoredocs "flash-backend/internal/shared/storage/docstore/firestore"
	memorydocs "flash-backend/internal/shared/storage/docstore/memory"
	pgdocs "flash-backend/internal/shared/storage/docstore/pg"
	"flash-backend/internal/shared/storage/object"
	gcsstore "flash-backend/internal/shared/storage/object/gcs"
	localstore "flash-backend/internal/shared/storage/object/local"
	s3store "flash-backend/internal/shared/storage/object/s3"
	"flash-backend/internal/shared/telemetry"
	"flash-backend/resume/render"
)

// App holds shared dependencies and the assembled router.
type App struct {
	Config       config.Config
	Router       *gin.Engine
	DB           *sql.DB
	Docs         docstore.Store
	Store        object.ObjectStore
	Queue        queue.Client
	Agent        *bridge.Client
	Sessions     *sessions.Broker
	Orchestrator *flash.Orchestrator
	FlashHandler *flash.Handler

	closers []io.Closer
}

// Build prepares every dependency and mounts the routes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	app := &App{Config: cfg}

	if err := app.buildDocs(ctx); err != nil {
		app.Close()
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Queue = queueClient

	app.Agent = bridge.NewClient(cfg.Flash.AgentSocket)
	app.buildFlash()

	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Features: []server.Routes{app.FlashHandler},
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"doc_store":    cfg.DocStoreType,
		"object_store": cfg.ObjectStoreType,
		"sync_queue":   cfg.SyncQueueURL != "",
		"agent_socket": cfg.Flash.AgentSocket,
	})
	return app, nil
}

// Close releases database and Firestore handles.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) buildDocs(ctx context.Context) error {
	cfg := a.Config
	switch cfg.DocStoreType {
	case "postgres":
		sqlDB, err := buildDB(ctx, cfg)
		if err != nil {
			return err
		}
		if sqlDB == nil {
			a.Docs = memorydocs.New()
			return nil
		}
		a.DB = sqlDB
		a.closers = append(a.closers, sqlDB)
		a.Docs = &pgdocs.Store{DB: sqlDB}
	case "firestore":
		if strings.TrimSpace(cfg.FirestoreProjectID) == "" {
			return errors.New("DOC_STORE=firestore requires FIRESTORE_PROJECT_ID")
		}
		fs, err := firestoredocs.New(ctx, cfg.FirestoreProjectID)
		if err != nil {
			return fmt.Errorf("firestore: %w", err)
		}
		a.closers = append(a.closers, fs)
		a.Docs = fs
	default:
		a.Docs = memorydocs.New()
	}
	return nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db_missing", map[string]any{"fallback": "memory"})
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db_unavailable", map[string]any{"fallback": "memory", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, errors.New("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "gcs":
		if strings.TrimSpace(cfg.GCSBucket) == "" {
			return nil, errors.New("OBJECT_STORE=gcs requires GCS_BUCKET")
		}
		return gcsstore.New(ctx, cfg.GCSBucket, cfg.GCSPrefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildQueue returns an SQS client when a queue URL is configured. The
// in-memory client keeps sync notices observable in dev.
func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.SyncQueueURL) == "" {
		return &queue.MemoryClient{}, nil
	}
	return queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.SyncQueueURL)
}

func (a *App) buildFlash() {
	flashCfg := a.Config.Flash
	a.Sessions = sessions.NewBroker(a.Docs)
	fallback := &flash.Fallback{Store: a.Store, Docs: a.Docs, Notices: a.Queue}

	a.Orchestrator = &flash.Orchestrator{
		Renderers:      []render.Renderer{render.PDF{}, render.DOCX{}},
		Probe:          &flash.Probe{Bridge: a.Agent, Timeout: flashCfg.ProbeTimeout},
		Sessions:       a.Sessions,
		Dispatcher:     &flash.Dispatcher{Bridge: a.Agent, Timeout: flashCfg.DispatchTimeout},
		Fallback:       fallback,
		Board:          flash.NewBoard(),
		UploadDeadline: flashCfg.UploadDeadline,
	}
	a.FlashHandler = flash.NewHandler(a.Orchestrator, a.Sessions, fallback)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
