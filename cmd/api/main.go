package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"ytstream.api/internal/app"
	"ytstream.api/internal/config"
	"ytstream.api/internal/cookie"
	"ytstream.api/internal/extractor"
	"ytstream.api/internal/keys"
	"ytstream.api/internal/metrics"
	"ytstream.api/internal/resolver"
	"ytstream.api/internal/retry"
	"ytstream.api/internal/stream"
	"ytstream.api/pkg/cache"
	"ytstream.api/pkg/database"
	"ytstream.api/pkg/logger"
	"ytstream.api/pkg/storage"
	"ytstream.api/pkg/token"
)

// @title           ytstream API
// @version         1.0
// @description     Resolves YouTube queries to metadata and proxies the media stream.

// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	appLogger := logger.NewLogger(cfg.Server.Mode)
	defer appLogger.Sync()

	// 2. Connect DB and make sure an admin key exists
	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	keyStore := keys.NewStore(db)
	if err := keyStore.Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	admin, created, err := keyStore.EnsureAdmin(context.Background(), cfg.Auth.AdminKey)
	if err != nil {
		log.Fatalf("Failed to seed admin key: %v", err)
	}
	if created && cfg.Auth.AdminKey == "" {
		appLogger.Warn("Generated default admin key, store it now", "key", admin.Key)
	}

	// 3. Cache: Redis when configured, in-process otherwise
	var c cache.Cache
	if cfg.Redis.Addr != "" {
		c, err = cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cache.WithKeyPrefix(cfg.Redis.KeyPrefix))
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
	} else {
		c = cache.NewMemoryCache(cache.WithSweepInterval(cfg.Cache.SweepInterval))
	}
	defer c.Close()

	m := metrics.New()

	// 4. Cookie artifact and its refresher
	artifact := cookie.NewArtifact(afero.NewOsFs(), cfg.Cookies.Path, cfg.Cookies.MaxAge)
	var source cookie.Source
	s3Provider, err := storage.NewS3Provider(cfg)
	switch {
	case err == nil:
		source = cookie.NewObjectSource(s3Provider, cfg.Cookies.ObjectKey)
	case errors.Is(err, storage.ErrDisabled):
		appLogger.Info("Cookie refresher disabled, no bucket configured")
	default:
		appLogger.Error("Failed to initialize S3 provider", "error", err)
	}
	refresher := cookie.NewRefresher(artifact, source, cookie.RefresherConfig{
		Interval: cfg.Cookies.RefreshInterval,
		Backups:  cfg.Cookies.Backups,
		Logger:   logger.Named(appLogger, "cookie"),
		OnResult: m.CookieRefreshed,
	})
	refresher.Start(context.Background())
	defer refresher.Stop()

	// 5. Resolution and streaming
	ext, searcher := backends(cfg)
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = cfg.Extractor.Retries
	res := resolver.New(resolver.Config{
		Extractor:     ext,
		Searcher:      searcher,
		Memo:          cache.NewMemo(c, time.Now, m.ObserveMemo),
		Cookies:       artifact,
		Logger:        logger.Named(appLogger, "resolver"),
		TTL:           cfg.Cache.TTL,
		MaxConcurrent: cfg.Extractor.MaxConcurrent,
		Retry:         retryCfg,
		OnFailure:     m.ResolutionFailed,
	})
	registry := stream.NewRegistry(c, cfg.Stream.TTL, stream.OnCreate(m.HandleCreated))
	proxy := stream.NewProxy(registry, stream.ProxyConfig{
		ChunkSize:     cfg.Stream.ChunkSize,
		HeaderTimeout: cfg.Stream.UpstreamTimeout,
		Logger:        logger.Named(appLogger, "proxy"),
		OnBytes:       m.BytesProxied,
	})

	secret, generated, err := sessionSecret(cfg.JWT.Secret, keys.GenerateKey)
	if err != nil {
		log.Fatalf("Failed to generate jwt secret: %v", err)
	}
	if generated {
		// sessions then only survive until restart
		appLogger.Warn("jwt.secret is not set, using a random secret")
	}

	// 6. Setup Router
	r := app.SetupRouter(cfg, app.Deps{
		Keys:      keyStore,
		Token:     token.NewJWTProvider(secret, cfg.JWT.SessionTTL),
		Resolver:  res,
		Registry:  registry,
		Proxy:     proxy,
		Cookies:   artifact,
		Refresher: refresher,
		Metrics:   m,
		Logger:    appLogger,
	})

	// 7. Run Server with Graceful Shutdown. No write timeout: /stream
	// responses last as long as the media.
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Starting server", "port", cfg.Server.Port, "extractor", cfg.Extractor.Backend, "search", cfg.Extractor.SearchBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to run server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}

	appLogger.Info("Server exiting")
}

// sessionSecret returns the configured signing secret, or a generated one
// when none is set. It never returns an empty secret without an error.
func sessionSecret(configured string, generate func() (string, error)) (secret string, generated bool, err error) {
	if configured != "" {
		return configured, false, nil
	}
	secret, err = generate()
	if err != nil {
		return "", false, err
	}
	if secret == "" {
		return "", false, errors.New("generated secret is empty")
	}
	return secret, true, nil
}

// backends picks the extraction and search capabilities named in config.
func backends(cfg *config.Config) (extractor.Extractor, extractor.Searcher) {
	ytdlp := extractor.NewYtdlp(cfg.Extractor.YtdlpPath, cfg.Extractor.Timeout)

	var ext extractor.Extractor = ytdlp
	if cfg.Extractor.Backend == "kkdai" {
		ext = extractor.NewKkdai(cfg.Extractor.Timeout)
	}

	var searcher extractor.Searcher
	switch cfg.Extractor.SearchBackend {
	case "ytsearch":
		searcher = extractor.NewYTSearch(cfg.Extractor.Timeout)
	case "ytdlp":
		searcher = ytdlp
	default:
		searcher = extractor.Fallback{extractor.NewYTSearch(cfg.Extractor.Timeout), ytdlp}
	}
	return ext, searcher
}
