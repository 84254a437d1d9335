package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lughati/lughati/internal/config"
	"github.com/lughati/lughati/internal/observability"
	"github.com/lughati/lughati/internal/textgen"
	"github.com/lughati/lughati/internal/textgen/prompt"
)

var doctorLive bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long: `Run diagnostic checks on the system and suggest fixes for common issues.

With --live, performs a real provider round trip using the configured
credential. This consumes provider quota.`,
	Run: func(cmd *cobra.Command, args []string) {
		observability.CLILogger.Info("=== " + appName + " doctor ===")
		observability.CLILogger.Info("")
		observability.CLILogger.Info("Running diagnostic checks...")
		observability.CLILogger.Info("")

		allChecks := true
		totalChecks := 6
		if doctorLive {
			totalChecks = 7
		}

		// Check 1: Go version
		goVersion := runtime.Version()
		observability.CLILogger.Info(fmt.Sprintf("[1/%d] Checking Go version... ✅ %s", totalChecks, goVersion), zap.String("go_version", goVersion))

		// Check 2: Environment
		observability.CLILogger.Info(fmt.Sprintf("[2/%d] Checking environment... ✅ %s/%s", totalChecks, runtime.GOOS, runtime.GOARCH),
			zap.String("os", runtime.GOOS),
			zap.String("arch", runtime.GOARCH))

		// Check 3: Configuration
		cfg, cfgErr := config.Load(cfgFile)
		if cfgErr != nil {
			observability.CLILogger.Error(fmt.Sprintf("[3/%d] Checking configuration... ❌ %v", totalChecks, cfgErr), zap.Error(cfgErr))
			allChecks = false
		} else if err := cfg.Validate(); err != nil {
			observability.CLILogger.Error(fmt.Sprintf("[3/%d] Checking configuration... ❌ %v", totalChecks, err), zap.Error(err))
			allChecks = false
		} else {
			observability.CLILogger.Info(fmt.Sprintf("[3/%d] Checking configuration... ✅ valid", totalChecks))
		}

		// Check 4: Processing modes
		if cfg != nil {
			var modes []*prompt.Mode
			var err error
			if dir := cfg.Generate.ModesDir; dir != "" {
				modes, err = prompt.LoadFromDir(dir)
			} else {
				modes, err = prompt.LoadDefaults()
			}
			if err != nil {
				observability.CLILogger.Error(fmt.Sprintf("[4/%d] Checking processing modes... ❌ %v", totalChecks, err), zap.Error(err))
				allChecks = false
			} else {
				observability.CLILogger.Info(fmt.Sprintf("[4/%d] Checking processing modes... ✅ %d modes", totalChecks, len(modes)), zap.Int("modes", len(modes)))
			}
		} else {
			observability.CLILogger.Warn(fmt.Sprintf("[4/%d] Checking processing modes... ⚠️  skipped (config not loaded)", totalChecks))
		}

		// Check 5: Provider credential
		if cfg != nil && cfg.Generate.APIKey != "" {
			observability.CLILogger.Info(fmt.Sprintf("[5/%d] Checking provider credential... ✅ configured", totalChecks))
		} else {
			observability.CLILogger.Warn(fmt.Sprintf("[5/%d] Checking provider credential... ⚠️  not set (callers must bring their own key)", totalChecks))
		}

		// Check 6: Usage ledger
		if cfg != nil && cfg.Store.Enabled {
			absPath, _ := filepath.Abs(cfg.Store.Path)
			if info, statErr := os.Stat(absPath); statErr == nil {
				observability.CLILogger.Info(fmt.Sprintf("[6/%d] Checking usage ledger... ✅ %s (%d bytes)", totalChecks, absPath, info.Size()),
					zap.String("db_path", absPath),
					zap.Int64("db_size", info.Size()))
			} else if os.IsNotExist(statErr) {
				observability.CLILogger.Warn(fmt.Sprintf("[6/%d] Checking usage ledger... ⚠️  %s (not created yet)", totalChecks, absPath),
					zap.String("db_path", absPath))
			} else {
				observability.CLILogger.Warn(fmt.Sprintf("[6/%d] Checking usage ledger... ⚠️  %v", totalChecks, statErr), zap.Error(statErr))
				allChecks = false
			}
		} else {
			observability.CLILogger.Info(fmt.Sprintf("[6/%d] Checking usage ledger... ✅ disabled", totalChecks))
		}

		// Check 7: Live provider round trip (optional)
		if doctorLive && cfg != nil {
			svc, err := textgen.NewService(cfg.Generate)
			if err != nil {
				observability.CLILogger.Error(fmt.Sprintf("[7/%d] Checking provider connectivity... ❌ %v", totalChecks, err), zap.Error(err))
				allChecks = false
			} else {
				start := time.Now()
				_, err := svc.Generate(cmd.Context(), "grammar_fix", "مرحبا", "")
				if err != nil {
					observability.CLILogger.Error(fmt.Sprintf("[7/%d] Checking provider connectivity... ❌ %v", totalChecks, err), zap.Error(err))
					allChecks = false
				} else {
					observability.CLILogger.Info(fmt.Sprintf("[7/%d] Checking provider connectivity... ✅ %s", totalChecks, time.Since(start).Round(time.Millisecond)),
						zap.Duration("latency", time.Since(start)))
				}
			}
		}

		observability.CLILogger.Info("")
		if allChecks {
			observability.CLILogger.Info("✅ All diagnostic checks passed")
		} else {
			observability.CLILogger.Warn("⚠️  Some diagnostic checks reported issues")
		}
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorLive, "live", false, "perform a live provider round trip (consumes quota)")
}
