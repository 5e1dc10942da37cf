package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ocrflow/ocrflow/internal/batch"
	"github.com/ocrflow/ocrflow/internal/config"
)

func newBatchCmd() *cobra.Command {
	var (
		inputFolder  string
		outputFolder string
		delay        time.Duration
		parquet      bool
		configFile   string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "OCR every supported document in a folder",
		Long: `Processes all PDF, JPG, JPEG and PNG files directly inside the input
folder, in name order, and writes one consolidated JSON report into the
output folder.

A single document's failure is recorded and the run continues; the report
is only written when at least one document succeeded.`,
		Example: `  # Process ./scans into ./ocr_results
  ocrflow batch --input ./scans --output ./ocr_results

  # Slow the pacing between documents and also export parquet
  ocrflow batch --input ./scans --output ./ocr_results --delay 2s --parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if configFile != "" {
				if err := cfg.ApplyFile(configFile); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("delay") {
				cfg.BatchDelay = delay
			}
			if outputFolder == "" {
				outputFolder = filepath.Join(filepath.Dir(inputFolder), "ocr_results")
			}

			apiKey, err := resolveAPIKey(&cfg)
			if err != nil {
				return err
			}

			runner := batch.NewRunner(
				newPipeline(apiKey, cfg),
				batch.WithDelay(cfg.BatchDelay),
				batch.WithParquet(parquet),
			)

			report, err := runner.Run(cmd.Context(), inputFolder, outputFolder)
			if err != nil {
				return err
			}

			summary := report.ProcessingSummary
			fmt.Printf("\nBatch processing complete\n")
			fmt.Printf("  Total documents: %d\n", summary.TotalDocuments)
			fmt.Printf("  Successful:      %d\n", summary.Successful)
			fmt.Printf("  Failed:          %d\n", summary.Failed)
			if report.ReportPath != "" {
				fmt.Printf("\nResults saved to: %s\n", report.ReportPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputFolder, "input", "", "Folder containing documents to process (required)")
	cmd.Flags().StringVar(&outputFolder, "output", "", "Folder for the consolidated report (default: ocr_results next to input)")
	cmd.Flags().DurationVar(&delay, "delay", time.Second, "Pacing delay between consecutive documents")
	cmd.Flags().BoolVar(&parquet, "parquet", false, "Also export per-document records as parquet")
	cmd.Flags().StringVar(&configFile, "config", "", "Optional YAML config file")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
