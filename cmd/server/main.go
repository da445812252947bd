package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/config"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/handler"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/observability"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/service"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/store"
)

func main() {
	// .env はローカル開発用（存在しなくてもよい）
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	settings, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	observability.Init(observability.LogOptions{
		Format: settings.LogFormat,
		Level:  settings.LogLevel,
	})
	gin.SetMode(settings.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// サービスの初期化
	services, cleanup, err := initServices(ctx, settings)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	defer cleanup()

	router := handler.NewRouter(settings, services)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: settings.AllowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Admin-Token", "X-Cloud-Trace-Context", "traceparent"},
		ExposedHeaders: []string{"Content-Disposition", "X-Export-Id", "X-Artifact-Url", "X-Request-Id"},
	})

	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           corsHandler.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", settings.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), settings.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: graceful shutdown failed: %v", err)
	}
}

// initServices は全サービスを初期化
//
// Workspace・Gemini・S3・Redis は任意。未設定でもエクスポートAPIは動く。
func initServices(ctx context.Context, settings *config.Settings) (*service.Services, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Printf("Warning: cleanup failed: %v", err)
			}
		}
	}

	// エクスポート履歴
	if dir := filepath.Dir(settings.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, cleanup, err
		}
	}
	db, err := store.Open(settings.DatabasePath)
	if err != nil {
		return nil, cleanup, err
	}
	exportRepo := store.NewExportRepo(db)
	closers = append(closers, exportRepo.Close)

	// Discord通知（URL未設定なら何もしない）
	notifier := service.NewDiscordNotifier(settings.DiscordWebhookURL)

	// 成果物ストレージ (オプショナル)
	var artifacts service.ArtifactStore
	if settings.ArtifactBucket != "" {
		s3Store, err := service.NewS3ArtifactStore(service.S3Config{
			Bucket:   settings.ArtifactBucket,
			Region:   settings.ArtifactRegion,
			Endpoint: settings.ArtifactEndpoint,
		})
		if err != nil {
			log.Printf("Warning: artifact storage initialization failed: %v", err)
		} else {
			artifacts = s3Store
		}
	}

	// トークンキャッシュ（Redis 未設定ならプロセス内）
	var tokenCache service.TokenCache = service.NewMemoryTokenCache()
	if settings.RedisURL != "" {
		opts, err := redis.ParseURL(settings.RedisURL)
		if err != nil {
			log.Printf("Warning: invalid REDIS_URL, using in-memory token cache: %v", err)
		} else {
			client := redis.NewClient(opts)
			closers = append(closers, client.Close)
			tokenCache = service.NewRedisTokenCache(client, settings.RedisTokenKey)
		}
	}

	// WorkspaceClient (オプショナル)
	var workspace *service.WorkspaceClient
	key, err := service.LoadServiceAccountKey(ctx, settings.GCPProjectID, settings.ServiceAccountSecret, settings.ServiceAccountKey)
	if err == nil {
		var auth *service.ServiceAccountAuth
		auth, err = service.NewServiceAccountAuth(key, tokenCache)
		if err == nil {
			workspace, err = service.NewWorkspaceClient(ctx, auth, service.WorkspaceOptions{
				Endpoint: settings.WorkspaceEndpoint,
				Notifier: notifier,
			})
		}
	}
	switch {
	case err == nil:
		log.Printf("WorkspaceClient initialized (%s)", workspace.Auth().ClientEmail())
	case errors.Is(err, service.ErrNotConfigured):
		log.Printf("Warning: Google Workspace not configured, workspace endpoints disabled")
	default:
		log.Printf("Warning: WorkspaceClient initialization failed: %v", err)
	}

	// BlurbWriter (オプショナル)
	blurbWriter, err := service.NewBlurbWriter(ctx, settings.GCPProjectID, settings.GeminiAPIKey, settings.GeminiModel)
	if err != nil {
		log.Printf("Warning: BlurbWriter initialization failed: %v", err)
		blurbWriter = nil
	} else {
		closers = append(closers, blurbWriter.Close)
	}

	return &service.Services{
		Exports:         service.NewExportService(exportRepo, artifacts, notifier),
		ExportRepo:      exportRepo,
		Workspace:       workspace,
		BlurbWriter:     blurbWriter,
		DiscordNotifier: notifier,
		Getenv:          os.Getenv,
	}, cleanup, nil
}
