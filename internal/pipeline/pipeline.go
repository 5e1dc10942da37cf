// Package pipeline sequences the three gateway calls for one document:
// upload the staged bytes, mint a signed URL, run OCR against it. One
// Pipeline value must not be invoked for two documents at once.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ocrflow/ocrflow/internal/metrics"
	"github.com/ocrflow/ocrflow/internal/mistral"
	"github.com/ocrflow/ocrflow/internal/models"
	"github.com/ocrflow/ocrflow/internal/staging"
)

// Gateway is the remote OCR service boundary.
type Gateway interface {
	UploadFile(ctx context.Context, filename string, r io.Reader) (*mistral.UploadResponse, error)
	GetSignedURL(ctx context.Context, fileID string) (*mistral.SignedURLResponse, error)
	ProcessOCR(ctx context.Context, doc mistral.DocumentSource) (*mistral.OCRResponse, error)
}

// Document is a named binary payload awaiting processing. The bytes are
// never persisted; they only exist in memory and in the scratch file for
// the duration of one Process call.
type Document struct {
	Name string
	Data []byte
}

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// IsImage reports whether the document should be submitted as an image
// rather than a document. The gateway's OCR behavior differs by declared
// type, so this distinction must be preserved.
func (d Document) IsImage() bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(d.Name))]
	return ok
}

// Stage names the pipeline step that failed.
type Stage string

const (
	StageStaging Stage = "staging"
	StageUpload  Stage = "upload"
	StageSign    Stage = "sign"
	StageOCR     Stage = "ocr"
)

// Error tags a failure with the stage it occurred in. The wrapped cause is
// already classified at the client boundary; no raw provider error type
// crosses past here.
type Error struct {
	Stage    Stage
	Document string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Stage, e.Document, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Pipeline struct {
	gw Gateway
}

func New(gw Gateway) *Pipeline {
	return &Pipeline{gw: gw}
}

// Process runs the full sequence for one document and normalizes the raw
// response. The staged file is removed unconditionally before returning,
// success or failure.
func (p *Pipeline) Process(ctx context.Context, doc Document) (*models.OCRResult, error) {
	path, cleanup, err := staging.Stage(doc.Data, doc.Name)
	if err != nil {
		return nil, p.fail(StageStaging, doc.Name, err)
	}
	defer cleanup()

	file, err := os.Open(path)
	if err != nil {
		return nil, p.fail(StageStaging, doc.Name, err)
	}
	uploaded, err := p.gw.UploadFile(ctx, doc.Name, file)
	file.Close()
	if err != nil {
		return nil, p.fail(StageUpload, doc.Name, err)
	}
	slog.Info("Document uploaded", "document", doc.Name, "file_id", uploaded.ID)

	signed, err := p.gw.GetSignedURL(ctx, uploaded.ID)
	if err != nil {
		return nil, p.fail(StageSign, doc.Name, err)
	}

	src := mistral.DocumentURL(signed.URL)
	if doc.IsImage() {
		src = mistral.ImageURL(signed.URL)
	}

	resp, err := p.gw.ProcessOCR(ctx, src)
	if err != nil {
		return nil, p.fail(StageOCR, doc.Name, err)
	}
	if resp == nil {
		return nil, p.fail(StageOCR, doc.Name, fmt.Errorf("gateway returned no OCR response"))
	}

	result := normalize(resp)
	slog.Info("Document processed", "document", doc.Name, "pages", result.PageCount())
	return result, nil
}

func (p *Pipeline) fail(stage Stage, name string, err error) error {
	metrics.StageFailures.WithLabelValues(string(stage)).Inc()
	return &Error{Stage: stage, Document: name, Err: err}
}

// normalize reshapes the raw response. Pages keep their declared index; a
// missing index stays nil and renders as "unknown" downstream. Zero pages
// is a valid result.
func normalize(resp *mistral.OCRResponse) *models.OCRResult {
	result := &models.OCRResult{
		Pages: make([]models.OCRPage, 0, len(resp.Pages)),
		Model: resp.Model,
	}
	for _, page := range resp.Pages {
		result.Pages = append(result.Pages, models.OCRPage{
			Index:    page.Index,
			Markdown: page.Markdown,
		})
	}
	return result
}
