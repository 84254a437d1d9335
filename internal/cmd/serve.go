package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lughati/lughati/internal/config"
	errwrap "github.com/lughati/lughati/internal/errors"
	"github.com/lughati/lughati/internal/gate"
	"github.com/lughati/lughati/internal/metrics"
	"github.com/lughati/lughati/internal/observability"
	"github.com/lughati/lughati/internal/server"
	"github.com/lughati/lughati/internal/server/handlers"
	"github.com/lughati/lughati/internal/store"
	"github.com/lughati/lughati/internal/textgen"
)

var (
	serverPort int
	serverHost string
)

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

// modesHealthChecker verifies the mode registry loaded at least one mode
type modesHealthChecker struct {
	service *textgen.Service
}

func (m modesHealthChecker) CheckHealth(ctx context.Context) error {
	if m.service == nil || m.service.Modes() == nil || len(m.service.Modes().List()) == 0 {
		return errwrap.NewConfigInvalidError("no processing modes loaded")
	}
	return nil
}

// usageLedger adapts the store to the handler-side recorder interface.
type usageLedger struct {
	store *store.Store
}

func (l usageLedger) Record(ctx context.Context, ev handlers.UsageEvent) error {
	return l.store.RecordUsage(ctx, store.UsageEvent{
		ClientID:   ev.ClientID,
		Mode:       ev.Mode,
		TextLength: ev.TextLength,
		Allowed:    ev.Allowed,
		Reason:     ev.Reason,
		BYOKey:     ev.BYOKey,
		DurationMs: ev.DurationMs,
	})
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server with graceful shutdown support.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Config reload (placeholder - restart recommended)

The server will cleanly shut down the HTTP server and flush logs on shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		host := cfg.Server.Host
		port := cfg.Server.Port
		if cmd.Flags().Changed("host") {
			host = serverHost
		}
		if cmd.Flags().Changed("port") {
			port = serverPort
		}

		// Initialize server logger
		observability.InitServerLogger(appName, cfg.Logging.Level)

		// Initialize metrics
		if cfg.Metrics.Enabled {
			if err := observability.InitMetrics(appName, cfg.Metrics.Port); err != nil {
				observability.ServerLogger.Error("Failed to initialize metrics",
					zap.Error(err))
				return errwrap.WrapInternal(cmd.Context(), err, "metrics initialization failed")
			}
		}

		observability.ServerLogger.Info("Initializing server",
			zap.String("service", appName),
			zap.String("version", versionInfo.Version),
			zap.String("host", host),
			zap.Int("port", port),
			zap.Bool("metrics_enabled", cfg.Metrics.Enabled))

		// Text generation service (provider driver + mode registry)
		svc, err := textgen.NewService(cfg.Generate)
		if err != nil {
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "failed to initialize generation service")
		}

		if !svc.HasServerCredential() {
			observability.ServerLogger.Warn("No server provider credential configured; callers must supply their own key")
		}

		// Admission gate
		g := gate.New(gate.NewClientStore(), gateLimits(cfg.Gate), svc.HasServerCredential())

		// Optional usage ledger
		var usage handlers.UsageRecorder
		var usageStore *store.Store
		if cfg.Store.Enabled {
			usageStore, err = store.Open(cmd.Context(), cfg.Store)
			if err != nil {
				return errwrap.WrapDatabaseError(cmd.Context(), err, "failed to open usage store")
			}
			if err := usageStore.Migrate(cmd.Context()); err != nil {
				_ = usageStore.Close()
				return errwrap.WrapDatabaseError(cmd.Context(), err, "failed to migrate usage store")
			}
			usage = usageLedger{store: usageStore}
		}

		// Initialize health manager
		handlers.InitHealthManager(versionInfo.Version)
		hm := handlers.GetHealthManager()
		hm.RegisterChecker("modes", modesHealthChecker{service: svc})
		if cfg.Metrics.Enabled {
			hm.RegisterChecker("telemetry", telemetryHealthChecker{})
		}
		if usageStore != nil {
			hm.RegisterChecker("usage_store", usageStore)
		}

		// Version metadata for /version
		handlers.SetVersionInfo(appName, versionInfo.Version, versionInfo.Commit, versionInfo.BuildDate)

		// Create server
		srv := server.New(host, port, server.Deps{
			Gate:              g,
			Generator:         svc,
			Modes:             svc.Modes(),
			Usage:             usage,
			TrustForwardedFor: cfg.Server.TrustForwardedFor,
		})

		shutdownTimeout := cfg.Server.ShutdownTimeout
		if shutdownTimeout == 0 {
			shutdownTimeout = 10 * time.Second
		}

		// Register graceful shutdown handlers (LIFO order - last registered, first executed)
		// Handler 1: Flush logger (executed last)
		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Flushing logger...")
			if err := observability.ServerLogger.Sync(); err != nil {
				// Sync errors are often benign (stdout/stderr already closed)
				observability.ServerLogger.Warn("Logger sync returned error (may be benign)",
					zap.Error(err))
			}
			return nil
		})

		// Handler 2: Close usage store
		if usageStore != nil {
			signals.OnShutdown(func(ctx context.Context) error {
				observability.ServerLogger.Info("Closing usage store...")
				return usageStore.Close()
			})
		}

		// Handler 3: Shutdown HTTP server (executed first)
		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Shutting down HTTP server...")
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errwrap.WrapInternal(ctx, err, "server shutdown failed")
			}

			observability.ServerLogger.Info("HTTP server stopped gracefully")
			return nil
		})

		// Enable double-tap force quit (Ctrl+C within 2 seconds)
		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			observability.ServerLogger.Warn("Failed to enable double-tap force quit",
				zap.Error(err))
		}

		metrics.SetServerStartTime(time.Now().Unix())

		// Start server in background goroutine
		errChan := make(chan error, 1)
		go func() {
			observability.ServerLogger.Info("Starting HTTP server...",
				zap.String("host", host),
				zap.Int("port", port))
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		// Start signal listener in background
		go func() {
			if err := signals.Listen(cmd.Context()); err != nil {
				observability.ServerLogger.Error("Signal handler error", zap.Error(err))
				errChan <- err
			}
		}()

		// Wait for error or shutdown completion
		if err := <-errChan; err != nil {
			return errwrap.WrapInternal(cmd.Context(), err, "server error")
		}

		return nil
	},
}

// gateLimits maps configuration values onto gate thresholds.
func gateLimits(cfg config.GateConfig) gate.Limits {
	return gate.Limits{
		MaxTextLength:  cfg.MaxTextLength,
		MaxRequests:    cfg.MaxRequests,
		Window:         cfg.Window,
		MinInterval:    cfg.MinInterval,
		DailyFreeLimit: cfg.DailyFreeLimit,
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")
}
