package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/mercaba/catalog-media/pkg/catalogmedia"
	"github.com/mercaba/catalog-media/pkg/catalogmedia/api"
	"github.com/mercaba/catalog-media/pkg/catalogmedia/config"
)

// HTTPConfig holds server-level tunables that are not service
// configuration.
type HTTPConfig struct {
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"5s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

func main() {
	var httpCfg HTTPConfig
	if err := cleanenv.ReadEnv(&httpCfg); err != nil {
		log.Fatalf("Failed to read HTTP configuration: %v", err)
	}

	serverConfig, err := config.Load(config.WithEnv(""))
	if err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	svc, err := serverConfig.BuildService()
	if err != nil {
		log.Fatalf("Failed to build service: %v", err)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", serverConfig.Port),
		Handler:           routes(svc, serverConfig),
		ReadHeaderTimeout: httpCfg.ReadHeaderTimeout,
	}

	go func() {
		slog.Info("Catalog media server starting",
			"port", serverConfig.Port,
			"environment", serverConfig.Environment,
			"primary_backend", serverConfig.PrimaryBackend,
			"fallback_backend", serverConfig.FallbackBackend)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	slog.Info("Server exiting")
}

// routes sets up the HTTP routes
func routes(svc catalogmedia.Service, cfg *config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	catalogHandler := api.NewCatalogHandler(svc)
	filesHandler := api.NewFilesHandler(svc, cfg.UploadsDir)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(api.WithIdentity)
		r.Use(api.RequireIdentity)
		r.Mount("/catalogs", catalogHandler.Routes())
		r.Mount("/files", filesHandler.Routes())
	})

	// Asset routes stay public: they back <img> tags that carry no
	// session headers.
	r.Get("/proxy/{key}", filesHandler.ProxyAsset)
	r.Get("/uploads/{name}", filesHandler.ServeUpload)

	return r
}
