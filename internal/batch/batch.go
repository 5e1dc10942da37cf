// Package batch runs the OCR pipeline over every eligible file in a folder
// and writes one consolidated report per run.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ocrflow/ocrflow/internal/metrics"
	"github.com/ocrflow/ocrflow/internal/models"
	"github.com/ocrflow/ocrflow/internal/pipeline"
	"github.com/ocrflow/ocrflow/internal/render"
)

var supportedExtensions = map[string]struct{}{
	".pdf":  {},
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// Processor is the per-document pipeline contract.
type Processor interface {
	Process(ctx context.Context, doc pipeline.Document) (*models.OCRResult, error)
}

// Runner processes folders sequentially: each document finishes before the
// next begins, with a pacing delay between documents as a rate-limiting
// courtesy to the gateway.
type Runner struct {
	proc    Processor
	limiter *rate.Limiter
	parquet bool
}

type Option func(*Runner)

// WithDelay sets the pause between consecutive documents. Zero disables
// pacing.
func WithDelay(d time.Duration) Option {
	return func(r *Runner) { r.limiter = rate.NewLimiter(rate.Every(d), 1) }
}

// WithParquet additionally writes the per-document records as a parquet
// file next to the JSON report.
func WithParquet(enabled bool) Option {
	return func(r *Runner) { r.parquet = enabled }
}

func NewRunner(proc Processor, opts ...Option) *Runner {
	r := &Runner{
		proc:    proc,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindDocuments lists files directly inside inputFolder (non-recursive)
// whose extension is on the allow-list, sorted by name so runs are
// reproducible. A missing folder is an error.
func FindDocuments(inputFolder string) ([]string, error) {
	entries, err := os.ReadDir(inputFolder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("input folder does not exist: %s", inputFolder)
		}
		return nil, fmt.Errorf("failed to read input folder: %w", err)
	}

	var documents []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := supportedExtensions[ext]; ok {
			documents = append(documents, filepath.Join(inputFolder, entry.Name()))
		}
	}
	sort.Strings(documents)
	return documents, nil
}

// Run processes every eligible document in inputFolder and, when at least
// one succeeds, writes the consolidated report into outputFolder. One
// document's failure is recorded and counted; it never aborts the batch.
func (r *Runner) Run(ctx context.Context, inputFolder, outputFolder string) (*models.BatchReport, error) {
	documents, err := FindDocuments(inputFolder)
	if err != nil {
		return nil, err
	}

	report := &models.BatchReport{
		ProcessingSummary: models.ProcessingSummary{
			TotalDocuments: len(documents),
			ProcessedAt:    time.Now().Format("2006-01-02 15:04:05"),
			InputFolder:    inputFolder,
			OutputFolder:   outputFolder,
		},
		Documents: []models.DocumentRecord{},
	}

	if len(documents) == 0 {
		slog.Info("No supported documents found", "folder", inputFolder)
		return report, nil
	}

	if err := os.MkdirAll(outputFolder, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output folder: %w", err)
	}

	slog.Info("Starting batch run", "documents", len(documents), "output", outputFolder)

	// Spend the limiter's initial burst token up front so the very first
	// inter-document gap is paced like the rest.
	r.limiter.Allow()

	for i, path := range documents {
		if i > 0 {
			if err := r.limiter.Wait(ctx); err != nil {
				return r.abandon(report, err)
			}
		} else if err := ctx.Err(); err != nil {
			return r.abandon(report, err)
		}

		name := filepath.Base(path)
		slog.Info("Processing document", "document", name, "progress", fmt.Sprintf("%d/%d", i+1, len(documents)))

		record, err := r.processFile(ctx, path)
		metrics.RecordOutcome("batch", err)
		if err != nil {
			slog.Error("Document failed", "document", name, "err", err)
			report.ProcessingSummary.Failed++
			continue
		}

		report.Documents = append(report.Documents, *record)
		report.ProcessingSummary.Successful++
	}

	if report.ProcessingSummary.Successful > 0 {
		if err := r.writeReport(outputFolder, report); err != nil {
			return report, err
		}
	}

	slog.Info("Batch run complete",
		"successful", report.ProcessingSummary.Successful,
		"failed", report.ProcessingSummary.Failed)
	return report, nil
}

// abandon finalizes a partial report after cancellation. The total shrinks
// to the files actually attempted so successful + failed == total still
// holds in what the caller gets back.
func (r *Runner) abandon(report *models.BatchReport, err error) (*models.BatchReport, error) {
	summary := &report.ProcessingSummary
	summary.TotalDocuments = summary.Successful + summary.Failed
	return report, err
}

func (r *Runner) processFile(ctx context.Context, path string) (*models.DocumentRecord, error) {
	name := filepath.Base(path)

	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		logPDFPageCount(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	result, err := r.proc.Process(ctx, pipeline.Document{Name: name, Data: data})
	if err != nil {
		return nil, err
	}

	return &models.DocumentRecord{
		DocumentName:    name,
		MarkdownContent: render.Document(result),
		RawOCRData:      result,
	}, nil
}

func (r *Runner) writeReport(outputFolder string, report *models.BatchReport) error {
	timestamp := time.Now().Unix()
	path := filepath.Join(outputFolder, fmt.Sprintf("batch_ocr_results_%d.json", timestamp))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal batch report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write batch report: %w", err)
	}
	report.ReportPath = path
	slog.Info("Batch report written", "path", path)

	if r.parquet {
		parquetPath := filepath.Join(outputFolder, fmt.Sprintf("batch_ocr_results_%d.parquet", timestamp))
		if err := writeParquet(parquetPath, report.Documents); err != nil {
			return fmt.Errorf("failed to write parquet export: %w", err)
		}
		slog.Info("Parquet export written", "path", parquetPath)
	}
	return nil
}
