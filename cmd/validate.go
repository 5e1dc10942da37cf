package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ocrflow/ocrflow/internal/config"
	"github.com/ocrflow/ocrflow/internal/mistral"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that the configured Mistral API key works",
		Long: `Makes a minimal test call against the Mistral API to confirm the
configured key is accepted.

This check is advisory: processing commands never require it and will
attempt real calls with whatever key is supplied.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			apiKey, err := resolveAPIKey(&cfg)
			if err != nil {
				return err
			}

			var opts []mistral.Option
			if cfg.BaseURL != "" {
				opts = append(opts, mistral.WithBaseURL(cfg.BaseURL))
			}
			client := mistral.NewClient(apiKey, opts...)

			if err := client.ValidateKey(cmd.Context()); err != nil {
				switch mistral.Classify(err) {
				case mistral.KindAuth:
					fmt.Println("API key validation failed: invalid or expired API key")
				case mistral.KindPermission:
					fmt.Println("API key validation failed: access denied or insufficient permissions")
				case mistral.KindQuota:
					fmt.Println("API key validation failed: quota exceeded or rate limit reached")
				case mistral.KindBilling:
					fmt.Println("API key validation failed: insufficient credits or billing issue")
				default:
					fmt.Printf("API key validation failed: %v\n", err)
				}
				fmt.Println("\nCheck your key at https://console.mistral.ai/ and verify your account has available credits.")
				return err
			}

			fmt.Println("API key is valid")
			return nil
		},
	}

	return cmd
}
