package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	errwrap "github.com/lughati/lughati/internal/errors"
	"github.com/lughati/lughati/internal/observability"
	"github.com/lughati/lughati/internal/textgen/prompt"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long:  "Run a self-health check to verify the application can start successfully.",
	Run: func(cmd *cobra.Command, args []string) {
		observability.CLILogger.Info("Running health check...")

		// Check 1: Version info available
		if versionInfo.Version == "" {
			observability.CLILogger.Error("❌ FAIL: Version information missing")
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Version information missing", errwrap.NewConfigInvalidError("Version information missing"))
			return
		}
		observability.CLILogger.Debug("Version check passed", zap.String("version", versionInfo.Version))
		observability.CLILogger.Info("✅ Version information available")

		// Check 2: Configuration loads and validates
		cfg := loadConfig()
		observability.CLILogger.Info("✅ Configuration valid")

		// Check 3: Processing modes load
		var modeCount int
		if dir := cfg.Generate.ModesDir; dir != "" {
			modes, err := prompt.LoadFromDir(dir)
			if err != nil {
				ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Failed to load processing modes", err)
				return
			}
			modeCount = len(modes)
		} else {
			modes, err := prompt.LoadDefaults()
			if err != nil {
				ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Failed to load embedded processing modes", err)
				return
			}
			modeCount = len(modes)
		}
		observability.CLILogger.Info("✅ Processing modes loaded", zap.Int("modes", modeCount))

		// Check 4: Provider credential presence (informational)
		if cfg.Generate.APIKey == "" {
			observability.CLILogger.Warn("⚠️  No server provider credential configured; callers must supply their own key")
		} else {
			observability.CLILogger.Info("✅ Server provider credential configured")
		}

		// Overall status
		observability.CLILogger.Info("")
		observability.CLILogger.Info("✅ All health checks passed")
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
