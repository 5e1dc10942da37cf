package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ocrflow/ocrflow/internal/config"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ocrflow",
		Short: "Document OCR tooling backed by Mistral's OCR service",
		Long: `ocrflow extracts text from PDF and image documents using Mistral AI's
OCR service.

It provides a web interface for single-document and camera-capture OCR,
and a batch mode that processes a whole folder of documents into one
consolidated report.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newBatchCmd())
	cmd.AddCommand(newValidateCmd())

	return cmd
}

// resolveAPIKey returns the configured gateway credential, prompting on
// stdin when the environment does not supply one. The key is only held in
// memory for this run.
func resolveAPIKey(cfg *config.Config) (string, error) {
	if cfg.APIKey != "" {
		return cfg.APIKey, nil
	}

	fmt.Fprintln(os.Stderr, "MISTRAL_API_KEY is not set.")
	fmt.Fprint(os.Stderr, "Enter your Mistral API key: ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	key := strings.TrimSpace(line)
	if key == "" {
		return "", fmt.Errorf("API key cannot be empty")
	}
	cfg.APIKey = key
	return key, nil
}
