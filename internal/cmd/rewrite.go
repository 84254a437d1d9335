package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	errwrap "github.com/lughati/lughati/internal/errors"
	"github.com/lughati/lughati/internal/observability"
	"github.com/lughati/lughati/internal/textgen"
)

var (
	rewriteMode   string
	rewriteAPIKey string
	rewriteStdin  bool
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [text]",
	Short: "Rewrite text through the configured provider",
	Long: `Rewrite text using one of the processing modes, without starting the server.

The text is taken from the argument, or from stdin with --stdin. The provider
credential comes from configuration (generate.api_key / OPENAI_API_KEY) unless
--api-key overrides it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		text, err := rewriteInput(args)
		if err != nil {
			return errwrap.NewInvalidInputError(err.Error())
		}

		// Mirror the server-side input bound so CLI results match API results.
		if maxLen := cfg.Gate.MaxTextLength; maxLen > 0 && utf8.RuneCountInString(text) > maxLen {
			return errwrap.NewTextTooLongError(
				fmt.Sprintf("Text is too long (maximum %d characters)", maxLen))
		}

		svc, err := textgen.NewService(cfg.Generate)
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Failed to initialize generation service", err)
		}

		observability.CLILogger.Debug("Rewriting text",
			zap.String("mode", rewriteMode),
			zap.Int("length", utf8.RuneCountInString(text)))

		result, err := svc.Generate(cmd.Context(), rewriteMode, text, rewriteAPIKey)
		if err != nil {
			return errwrap.WrapExternalService(cmd.Context(), err, "text generation failed")
		}

		fmt.Println(result)
		return nil
	},
}

func rewriteInput(args []string) (string, error) {
	if rewriteStdin {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			return "", fmt.Errorf("no text provided on stdin")
		}
		return text, nil
	}

	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("text argument is required (or use --stdin)")
	}
	return args[0], nil
}

func init() {
	rootCmd.AddCommand(rewriteCmd)

	rewriteCmd.Flags().StringVarP(&rewriteMode, "mode", "m", "grammar_fix", "processing mode slug")
	rewriteCmd.Flags().StringVar(&rewriteAPIKey, "api-key", "", "provider API key (overrides configuration)")
	rewriteCmd.Flags().BoolVar(&rewriteStdin, "stdin", false, "read text from stdin")
}
