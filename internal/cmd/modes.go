package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/lughati/lughati/internal/observability"
	"github.com/lughati/lughati/internal/output"
	"github.com/lughati/lughati/internal/textgen/prompt"
)

var modesFormat string

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List the available processing modes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		format, err := output.ParseFormat(modesFormat)
		if err != nil {
			return err
		}

		var modes []*prompt.Mode
		if dir := cfg.Generate.ModesDir; dir != "" {
			modes, err = prompt.LoadFromDir(dir)
		} else {
			modes, err = prompt.LoadDefaults()
		}
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Failed to load processing modes", err)
		}

		registry, err := prompt.NewRegistry(modes)
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Failed to build mode registry", err)
		}

		rendered, err := output.FormatModes(format, registry.List())
		if err != nil {
			return err
		}

		fmt.Println(rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modesCmd)
	modesCmd.Flags().StringVarP(&modesFormat, "format", "f", "table", "output format: table, json, markdown")
}
