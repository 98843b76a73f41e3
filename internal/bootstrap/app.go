package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"skincare-backend/internal/analyses"
	"skincare-backend/internal/health"
	"skincare-backend/internal/shared/auth"
	"skincare-backend/internal/shared/config"
	"skincare-backend/internal/shared/server"
	"skincare-backend/internal/shared/server/middleware"
	"skincare-backend/internal/shared/storage/db"
	"skincare-backend/internal/shared/telemetry"
	"skincare-backend/internal/skinai"
	"skincare-backend/internal/skinai/gemini"
	"skincare-backend/internal/skinai/openai"
	"skincare-backend/internal/voice"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	AnalysesRepo    analyses.Repo
	AnalysesService *analyses.Service
	AnalysisHandler *analyses.Handler
	VoiceHandler    *voice.Handler
	AI              *skinai.Resilient
	Health          *health.Service
	Verifier        *auth.Verifier

	closers []func() error
}

// Build prepares dependencies and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	verifier, err := auth.NewVerifier(auth.Options{
		Env:          cfg.Env,
		PublicKeyPEM: cfg.AuthPublicKeyPEM,
		Secret:       cfg.JWTSecret,
		Issuer:       cfg.AuthIssuer,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Verifier: verifier,
	}
	if sqlDB != nil {
		app.closers = append(app.closers, sqlDB.Close)
	}

	if err := buildAI(ctx, app); err != nil {
		_ = app.Close()
		return nil, err
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		Verifier:        app.Verifier,
		Health:          app.Health.Handler(),
		AnalysisHandler: app.AnalysisHandler,
		VoiceHandler:    app.VoiceHandler,
		RateLimiter:     middleware.NewRateLimiter(nil),
	})

	return app, nil
}

// Close releases provider clients and the database pool.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_store", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.Merge(db.DefaultServerOptions(), db.Options{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.DB.ConnMaxIdleTime,
		PingTimeout:     cfg.DB.PingTimeout,
	})
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_store", map[string]any{"reason": "database connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildAI(ctx context.Context, app *App) error {
	cfg := app.Config
	var (
		analyzer    analyses.Analyzer  = skinai.Placeholder{}
		transcriber skinai.Transcriber = skinai.Placeholder{}
		speaker     skinai.Speaker     = skinai.SilentSpeaker{}
	)

	var oa *openai.Client
	if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			return err
		}
		oa = client
		speaker = client
	}

	switch cfg.AIProvider {
	case "openai":
		if oa != nil {
			analyzer, transcriber = oa, oa
		}
	default:
		if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
			client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				return err
			}
			app.closers = append(app.closers, client.Close)
			analyzer, transcriber = client, client
		}
	}

	if _, ok := analyzer.(skinai.Placeholder); ok {
		telemetry.Warn("bootstrap.ai_not_configured", map[string]any{"provider": cfg.AIProvider})
	}
	app.AI = skinai.NewResilient(analyzer, transcriber, speaker, cfg.AITimeout)
	return nil
}

func buildServices(app *App) {
	var analysisRepo analyses.Repo
	if app.DB != nil {
		analysisRepo = analyses.NewPGRepo(app.DB, db.DriverName)
		app.Health = health.NewService(app.DB)
	} else {
		analysisRepo = analyses.NewMemoryRepo()
		app.Health = health.NewService(nil)
	}

	app.AnalysesRepo = analysisRepo
	app.AnalysesService = analyses.NewService(analysisRepo)
	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService, app.AI)
	app.VoiceHandler = voice.NewHandler(app.AI, app.AI)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
