package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lughati/lughati/internal/observability"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display comprehensive environment, configuration, and version information.",
	Run: func(cmd *cobra.Command, args []string) {
		observability.CLILogger.Info("=== Lughati Environment Information ===")
		observability.CLILogger.Info("")

		// Application Info
		observability.CLILogger.Info("Application:")
		observability.CLILogger.Info("  Name:       " + appName)
		observability.CLILogger.Info("  Version:    " + versionInfo.Version)
		observability.CLILogger.Info("  Commit:     " + versionInfo.Commit)
		observability.CLILogger.Info("  Built:      " + versionInfo.BuildDate)
		observability.CLILogger.Info("")

		// Runtime Info
		observability.CLILogger.Info("Runtime:")
		observability.CLILogger.Info("  Go Version: "+runtime.Version(), zap.String("go_version", runtime.Version()))
		observability.CLILogger.Info("  GOOS:       "+runtime.GOOS, zap.String("goos", runtime.GOOS))
		observability.CLILogger.Info("  GOARCH:     "+runtime.GOARCH, zap.String("goarch", runtime.GOARCH))
		observability.CLILogger.Info(fmt.Sprintf("  NumCPU:     %d", runtime.NumCPU()), zap.Int("num_cpu", runtime.NumCPU()))
		observability.CLILogger.Info("")

		cfg := loadConfig()

		// Configuration
		observability.CLILogger.Info("Configuration:")
		observability.CLILogger.Info("  Server Host:    "+cfg.Server.Host, zap.String("host", cfg.Server.Host))
		observability.CLILogger.Info(fmt.Sprintf("  Server Port:    %d", cfg.Server.Port), zap.Int("port", cfg.Server.Port))
		observability.CLILogger.Info("  Log Level:      "+cfg.Logging.Level, zap.String("log_level", cfg.Logging.Level))
		observability.CLILogger.Info("  Provider Model: "+cfg.Generate.Model, zap.String("model", cfg.Generate.Model))
		observability.CLILogger.Info("  Provider URL:   "+cfg.Generate.BaseURL, zap.String("base_url", cfg.Generate.BaseURL))
		observability.CLILogger.Info(fmt.Sprintf("  Metrics:        %t (port %d)", cfg.Metrics.Enabled, cfg.Metrics.Port))
		observability.CLILogger.Info(fmt.Sprintf("  Usage Ledger:   %t", cfg.Store.Enabled))

		// Gate thresholds
		observability.CLILogger.Info("")
		observability.CLILogger.Info("Admission Gate:")
		observability.CLILogger.Info(fmt.Sprintf("  Max Text Length:  %d", cfg.Gate.MaxTextLength))
		observability.CLILogger.Info(fmt.Sprintf("  Window:           %d per %s", cfg.Gate.MaxRequests, cfg.Gate.Window))
		observability.CLILogger.Info(fmt.Sprintf("  Min Interval:     %s", cfg.Gate.MinInterval))
		observability.CLILogger.Info(fmt.Sprintf("  Daily Free Limit: %d", cfg.Gate.DailyFreeLimit))
	},
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}
