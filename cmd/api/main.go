package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sentraSalon/internal/advisor"
	"sentraSalon/internal/auth"
	"sentraSalon/internal/cache"
	"sentraSalon/internal/config"
	"sentraSalon/internal/events"
	"sentraSalon/internal/media"
	"sentraSalon/internal/media/webpcopy"
	"sentraSalon/internal/prompts"
	"sentraSalon/internal/server"
	"sentraSalon/internal/storage"
	"sentraSalon/internal/transform"
	"sentraSalon/internal/vision"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	defer store.Close()

	var (
		uploader media.Uploader
		mediaDir string
	)
	if cfg.Media.Bucket != "" && cfg.Media.Region != "" {
		uploader, err = media.NewUploader(ctx, media.Config{
			Bucket:          cfg.Media.Bucket,
			Region:          cfg.Media.Region,
			Endpoint:        cfg.Media.Endpoint,
			PublicURL:       cfg.Media.PublicURL,
			KeyPrefix:       cfg.Media.KeyPrefix,
			ForcePathStyle:  cfg.Media.ForcePathStyle,
			AccessKeyID:     cfg.Media.AccessKeyID,
			SecretAccessKey: cfg.Media.SecretAccessKey,
		})
		if err != nil {
			log.Fatalf("failed to init media uploader: %v", err)
		}
		log.Printf("media uploader: s3 bucket %s", cfg.Media.Bucket)
	} else {
		local, err := media.NewLocalUploader(cfg.Media.Dir)
		if err != nil {
			log.Fatalf("failed to init local media storage: %v", err)
		}
		local.PublicPrefix = "/media"
		uploader = local
		mediaDir = local.BaseDir
		log.Printf("media uploader: local directory %s", local.BaseDir)
	}

	var analysisCache cache.Cache = cache.Noop{}
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.Connect(ctx, cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			TLS:      cfg.Redis.TLS,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			log.Printf("analysis cache disabled: %v", err)
		} else {
			analysisCache = redisCache
			log.Printf("analysis cache: redis %s", cfg.Redis.Addr)
		}
	}
	defer analysisCache.Close()

	backends, err := vision.NewBackends(ctx, cfg, analysisCache)
	if err != nil {
		log.Fatalf("failed to init backends: %v", err)
	}
	defer backends.Close()
	log.Printf("backends ready: %v (default %s)", backends.Registry.Names(), backends.Registry.Default())

	catalog, err := prompts.LoadCatalog(cfg.TemplatesFile)
	if err != nil {
		log.Fatalf("failed to load templates: %v", err)
	}

	eventBroker := events.NewBroker()

	service := &transform.Service{
		Backends: backends.Registry,
		Media:    uploader,
		History:  store,
		Events:   eventBroker,
		Catalog:  catalog,
		Timeout:  cfg.RequestTimeout(),
	}
	if cfg.Media.WebPCopy {
		service.WebPCopy = webpcopy.Encoder(float32(cfg.Media.WebPQuality))
	}

	var styleAdvisor *advisor.Advisor
	if backends.Vision != nil {
		styleAdvisor = advisor.New(backends.Vision, cfg.Gemini.AdvisorModel)
	} else {
		log.Println("advisor inactive: no Gemini credentials")
	}

	srv := server.New(cfg.Port, server.Handlers{
		Transform: transform.Handler{
			Service:      service,
			History:      store,
			Catalog:      catalog,
			Events:       eventBroker,
			HistoryLimit: cfg.HistoryLimit,
		},
		Vision:   vision.Handler{Analyzer: backends.Analyzer},
		Advisor:  advisor.Handler{Advisor: styleAdvisor},
		Admin:    auth.AdminGuard{PasswordHash: cfg.AdminPasswordHash},
		MediaDir: mediaDir,
	}, cfg.RequestTimeout())

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown error: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}
