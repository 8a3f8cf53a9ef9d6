package cli

import (
	"context"
	"errors"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	apihttp "ozzus/logroute/internal/api/http"
	"ozzus/logroute/internal/backend"
	"ozzus/logroute/internal/lib/logger/sl"
	"ozzus/logroute/internal/service"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP ingest API",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log := setupLogger(cfg.Env, os.Stderr)
		log.Info("starting logroute",
			"env", cfg.Env,
			"service", cfg.Service.Name,
			"config", loader.ConfigFileUsed(),
		)

		if cfg.Env == envProd {
			gin.SetMode(gin.ReleaseMode)
		}

		minLevel, _ := cfg.MinLevel()

		rs, err := buildRoutes(cfg, log)
		if err != nil {
			log.Error("failed to build routes", sl.Err(err))
			return err
		}
		defer func() {
			if err := rs.Close(); err != nil {
				log.Error("failed to close sinks", sl.Err(err))
			}
		}()

		logService := service.NewLogService(rs.routes, service.Config{
			Name:     cfg.Service.Name,
			MinLevel: minLevel,
		}, log)

		if loader.ConfigFileUsed() != "" {
			loader.WatchMinLevel(logService.SetMinLevel, func(err error) {
				log.Warn("config reload rejected", sl.Err(err))
			})
		}

		router := apihttp.NewRouter(
			apihttp.NewHealthController(logService, rs.checkers...),
			apihttp.NewLogController(logService, log),
			log,
		)

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		var wg sync.WaitGroup

		if rs.backend != nil {
			startHeartbeat(ctx, &wg, rs.backend, log, cfg.GetHeartbeatInterval())
		}

		httpServer := &nethttp.Server{
			Addr:              ":" + cfg.Server.Port,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info("starting http server", "port", cfg.Server.Port)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
				log.Error("HTTP server failed", sl.Err(err))
				cancel()
			}
		}()

		logService.SetRunning(true)
		log.Info("service started and ready",
			"port", cfg.Server.Port,
			"min_level", minLevel.String(),
		)

		<-ctx.Done()
		log.Info("shutting down...")
		logService.SetRunning(false)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown failed", sl.Err(err))
		}

		wg.Wait()
		log.Info("stopped gracefully")
		return nil
	},
}

func startHeartbeat(ctx context.Context, wg *sync.WaitGroup, client *backend.Client, log *slog.Logger, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	send := func() {
		hbCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := client.Heartbeat(hbCtx); err != nil {
			log.Error("heartbeat failed", sl.Err(err))
			return
		}

		log.Debug("heartbeat sent")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()

		send()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				send()
			case <-ctx.Done():
				log.Debug("heartbeat loop stopped")
				return
			}
		}
	}()
}
