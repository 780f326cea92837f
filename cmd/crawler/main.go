// cmd/crawler/main.go

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/ps-vitor/imoveis-crawler/internal/api/handlers"
	"github.com/ps-vitor/imoveis-crawler/internal/config"
	"github.com/ps-vitor/imoveis-crawler/internal/services"
	"github.com/ps-vitor/imoveis-crawler/internal/sink"
	"github.com/ps-vitor/imoveis-crawler/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.New("main").WithError(err).Fatal("Error loading config")
	}
	if err := logger.Configure(logger.Options{Level: cfg.App.LogLevel, Format: cfg.App.LogFormat}); err != nil {
		logger.New("main").WithError(err).Fatal("Error configuring logger")
	}
	log := logger.New("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := services.NewStatusRegistry()
	svc := services.NewCrawlerService(cfg.Scraping.Headers, sink.NewJSONLines(os.Stdout), services.WithRegistry(registry))

	var server *http.Server
	if cfg.App.StatusAddr != "" {
		r := mux.NewRouter()
		handlers.NewStatusHandler(registry).RegisterRoutes(r)
		server = &http.Server{Addr: cfg.App.StatusAddr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.WithField("addr", cfg.App.StatusAddr).Info("status server listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("status server stopped")
			}
		}()
	}

	// Plain group: a failing site does not cancel the others. Wait reports the first error.
	var g errgroup.Group
	for _, site := range cfg.Scraping.Sites {
		site := site
		g.Go(func() error {
			_, err := svc.Crawl(ctx, site)
			return err
		})
	}
	crawlErr := g.Wait()

	var emitted, failed int64
	for _, st := range registry.Snapshot() {
		emitted += st.Emitted
		failed += st.Failed
	}

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = server.Shutdown(shutdownCtx)
		cancel()
	}

	summary := log.WithFields(logger.Fields{"sites": len(cfg.Scraping.Sites), "emitted": emitted, "failed": failed})
	switch {
	case interrupted(crawlErr):
		summary.Info("crawl interrupted, queued listings drained")
	case crawlErr != nil:
		summary.WithError(crawlErr).Error("crawl failed")
		os.Exit(1)
	default:
		summary.Info("crawl completed")
	}
}

// interrupted reports whether err only comes from a shutdown signal.
func interrupted(err error) bool {
	return err != nil && errors.Is(err, context.Canceled)
}
