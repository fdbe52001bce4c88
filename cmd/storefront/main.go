package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JBBSoftech/watter/config"
	"github.com/JBBSoftech/watter/internal/api"
	"github.com/JBBSoftech/watter/internal/configstore"
	"github.com/JBBSoftech/watter/internal/fetcher"
	"github.com/JBBSoftech/watter/internal/localstate"
	"github.com/JBBSoftech/watter/internal/platform"
	"github.com/JBBSoftech/watter/internal/realtime"
	"github.com/JBBSoftech/watter/internal/syncer"
	"github.com/JBBSoftech/watter/internal/util"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront runtime")

	tp, err := util.InitTracer("storefront", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	session, err := platform.NewSession(cfg.Upstream.TenantID, cfg.Upstream.AuthToken)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	log.Printf("Session created for tenant %s", session.TenantID())

	persister, err := newPersister(cfg, session)
	if err != nil {
		log.Fatalf("Failed to initialize persistence: %v", err)
	}
	if persister != nil {
		defer persister.Close()
	}

	local := localstate.New(localstate.Options{
		MaxUnits:       cfg.Cart.MaxUnits,
		TaxRatePercent: cfg.Cart.TaxRatePercent,
		Persister:      persister,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := local.Restore(ctx); err != nil {
		log.Printf("Failed to restore local state, starting empty: %v", err)
	}

	configs := configstore.New()
	configFetcher := fetcher.New(cfg.Upstream.BaseURL, session, cfg.Upstream.Timeout)
	coordinator := syncer.New(configFetcher, configs)

	if err := coordinator.Bootstrap(ctx); err != nil {
		log.Printf("Initial configuration load failed, serving error state: %v", err)
	}

	channel := realtime.NewChannel(realtime.Options{
		URL:               cfg.Realtime.URL,
		MaxReconnects:     cfg.Realtime.MaxReconnects,
		ReconnectInterval: cfg.Realtime.ReconnectInterval,
	}, session)
	channel.OnEvent(coordinator.HandleEvent)
	channel.Start(ctx)
	defer channel.Close()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(configs, local, coordinator, channel)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down storefront...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	cancel()
	if err := channel.Close(); err != nil {
		log.Printf("Error closing realtime channel: %v", err)
	}

	log.Println("Storefront exited")
}

func newPersister(cfg *config.Config, session *platform.Session) (localstate.Persister, error) {
	switch cfg.Persistence.Driver {
	case "sqlite":
		return localstate.NewSQLitePersister(cfg.Persistence.SQLitePath)
	case "redis":
		return localstate.NewRedisPersister(
			cfg.Persistence.RedisAddr,
			cfg.Persistence.RedisPass,
			cfg.Persistence.RedisDB,
			session.TenantID(),
		)
	default:
		return nil, nil
	}
}
