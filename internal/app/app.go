package app

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/markdave123-py/Vivid/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/Vivid/internal/api/middlewares"
	"github.com/markdave123-py/Vivid/internal/config"
	"github.com/markdave123-py/Vivid/internal/core"
	db "github.com/markdave123-py/Vivid/internal/core/database"
	"github.com/markdave123-py/Vivid/internal/core/llm"
	objectclient "github.com/markdave123-py/Vivid/internal/core/object-client"
	"github.com/markdave123-py/Vivid/internal/core/profiles"
	"github.com/markdave123-py/Vivid/internal/core/session"
	"github.com/markdave123-py/Vivid/internal/services"
)

// Deps are the collaborators shared by every interaction context. Both the
// HTTP server and the CLI are built on them.
type Deps struct {
	Config      *config.Config
	Logger      *zap.Logger
	KV          core.KVStore
	Objects     core.ObjectClient
	Provider    core.ConversationProvider
	Profiles    *profiles.Store
	Preferences *services.PreferenceService
}

// ProviderOpener connects to the remote model.
type ProviderOpener func(ctx context.Context, cfg *config.Config) (core.ConversationProvider, error)

// OpenDeps connects the KV store, video staging and the remote model, and
// loads the saved profiles. A nil open uses OpenProvider.
func OpenDeps(ctx context.Context, cfg *config.Config, logger *zap.Logger, open ProviderOpener) (*Deps, error) {
	if open == nil {
		open = OpenProvider
	}
	initCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	d := &Deps{Config: cfg, Logger: logger}

	kv, err := OpenKV(initCtx, cfg)
	if err != nil {
		return nil, err
	}
	d.KV = kv
	logger.Info("key-value store ready", zap.String("backend", cfg.KVBackend))

	objects, err := OpenObjects(initCtx, cfg, logger)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.Objects = objects

	provider, err := open(initCtx, cfg)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("couldn't initialize the model provider: %w", err)
	}
	d.Provider = provider
	logger.Info("model provider ready", zap.String("backend", cfg.LLMBackend), zap.String("model", cfg.GenModel))

	d.Profiles = profiles.NewStore(kv, logger.Named("profiles"))
	if err := d.Profiles.Load(initCtx); err != nil {
		d.Close()
		return nil, err
	}
	d.Preferences = services.NewPreferenceService(kv, logger.Named("preferences"))
	return d, nil
}

// NewDescribeService builds the service for one interaction context. Staged
// videos live under a prefix named after the context.
func (d *Deps) NewDescribeService(contextID string) *services.DescribeService {
	sess := session.New(d.Provider, session.Options{
		Objects:   d.Objects,
		Bucket:    d.Config.BucketName,
		KeyPrefix: path.Join("sessions", contextID),
		Timeout:   d.Config.GenTimeout,
		Logger:    d.Logger.Named("session").With(zap.String("context_id", contextID)),
	})
	return services.NewDescribeService(sess, d.Profiles)
}

func (d *Deps) Close() {
	if c, ok := d.Provider.(io.Closer); ok {
		if err := c.Close(); err != nil {
			d.Logger.Warn("close model provider", zap.Error(err))
		}
	}
	if d.KV != nil {
		if err := d.KV.Close(); err != nil {
			d.Logger.Warn("close key-value store", zap.Error(err))
		}
	}
}

func OpenKV(ctx context.Context, cfg *config.Config) (core.KVStore, error) {
	switch cfg.KVBackend {
	case "postgres":
		return db.NewPostgresKV(ctx, cfg)
	case "memory":
		return db.NewMemoryKV(), nil
	case "bolt", "":
		return db.NewBoltKV(cfg.BoltPath)
	default:
		return nil, fmt.Errorf("unknown KV_BACKEND %q", cfg.KVBackend)
	}
}

func OpenObjects(ctx context.Context, cfg *config.Config, logger *zap.Logger) (core.ObjectClient, error) {
	if cfg.StorageType == "s3" {
		return objectclient.NewS3Client(ctx, cfg, logger)
	}
	logger.Info("video staging on local disk", zap.String("dir", cfg.UploadDir))
	return objectclient.NewLocalClient(cfg.UploadDir)
}

func OpenProvider(ctx context.Context, cfg *config.Config) (core.ConversationProvider, error) {
	if cfg.LLMBackend == "genai" {
		return llm.NewGenAIChat(ctx, llm.GenAIOptions{
			APIKey:   cfg.AIAPIKey,
			Model:    cfg.GenModel,
			Vertex:   cfg.UseVertex,
			Project:  cfg.CloudProject,
			Location: cfg.CloudLocation,
		})
	}
	return llm.NewGeminiChat(ctx, cfg.AIAPIKey, cfg.GenModel)
}

// App is the HTTP deployment: shared deps, per-context workspaces and the server.
type App struct {
	Deps       *Deps
	Workspaces *services.Workspaces
	Server     *Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	deps, err := OpenDeps(ctx, cfg, logger, nil)
	if err != nil {
		return nil, err
	}

	tokens, err := appMiddleware.NewSessionTokens(cfg.SessionSecret, cfg.ContextTTL, false, logger.Named("tokens"))
	if err != nil {
		deps.Close()
		return nil, err
	}

	ws := services.NewWorkspaces(deps.NewDescribeService, logger.Named("workspaces"))
	router := NewRouter(RouterDeps{
		Sessions:       handlers.NewSessionHandler(ws, logger.Named("http")),
		Profiles:       handlers.NewProfileHandler(deps.Profiles, logger.Named("http")),
		Preferences:    handlers.NewPreferencesHandler(deps.Preferences, logger.Named("http")),
		Tokens:         tokens,
		AllowedOrigins: cfg.AllowedOrigins,
		Timeout:        cfg.HTTPTimeout,
	})

	return &App{
		Deps:       deps,
		Workspaces: ws,
		Server:     NewServer(":"+cfg.Port, router, logger),
	}, nil
}

// RunEviction drops contexts idle for longer than the token lifetime. It
// blocks until ctx is done.
func (a *App) RunEviction(ctx context.Context) {
	ttl := a.Deps.Config.ContextTTL
	interval := ttl / 24
	if interval < time.Minute {
		interval = time.Minute
	}
	a.Workspaces.RunEviction(ctx, ttl, interval)
}

// Close releases every staged video and conversation, then the shared deps.
func (a *App) Close(ctx context.Context) {
	a.Workspaces.Close(ctx)
	a.Deps.Close()
}
