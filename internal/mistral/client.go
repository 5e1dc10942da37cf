// Package mistral is a thin client for the Mistral files and OCR endpoints.
// Each processing run is three calls: upload a file, mint a short-lived
// signed URL for it, then run OCR against that URL.
package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the production Mistral API endpoint.
	DefaultBaseURL = "https://api.mistral.ai"

	// DefaultOCRModel is the fixed model identifier for OCR processing.
	DefaultOCRModel = "mistral-ocr-latest"

	// validationModel is a small chat model used only for the advisory
	// key check.
	validationModel = "mistral-small-latest"
)

// Client calls the Mistral API. It is safe for concurrent use.
type Client struct {
	apiKey   string
	baseURL  string
	ocrModel string
	httpc    *http.Client

	maxAttempts int
	backoff     time.Duration
}

type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

func WithOCRModel(model string) Option {
	return func(c *Client) { c.ocrModel = model }
}

// WithRetry bounds the retry loop for transient failures. attempts counts
// the first try; attempts <= 1 disables retries.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxAttempts = attempts
		c.backoff = backoff
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:      apiKey,
		baseURL:     DefaultBaseURL,
		ocrModel:    DefaultOCRModel,
		httpc:       &http.Client{Timeout: 120 * time.Second},
		maxAttempts: 3,
		backoff:     time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = 1
	}
	return c
}

// UploadResponse is the gateway's record of a staged file.
type UploadResponse struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	Filename  string `json:"filename"`
	Purpose   string `json:"purpose"`
	CreatedAt int64  `json:"created_at"`
}

// SignedURLResponse is a short-lived retrieval URL for an uploaded file.
type SignedURLResponse struct {
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}

// DocumentSource selects the OCR request shape. The gateway's behavior
// differs by declared type, so images must be submitted as image_url and
// PDFs as document_url.
type DocumentSource struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

func DocumentURL(u string) DocumentSource {
	return DocumentSource{Type: "document_url", DocumentURL: u}
}

func ImageURL(u string) DocumentSource {
	return DocumentSource{Type: "image_url", ImageURL: u}
}

// Page is one page of the raw OCR response.
type Page struct {
	Index    *int   `json:"index"`
	Markdown string `json:"markdown"`
}

// OCRResponse is the raw OCR result as returned by the gateway.
type OCRResponse struct {
	Pages     []Page `json:"pages"`
	Model     string `json:"model"`
	UsageInfo struct {
		PagesProcessed int  `json:"pages_processed"`
		DocSizeBytes   *int `json:"doc_size_bytes"`
	} `json:"usage_info"`
}

// UploadFile stages a file with the gateway under purpose=ocr and returns
// its handle. The handle is only valid for the current processing run.
func (c *Client) UploadFile(ctx context.Context, filename string, r io.Reader) (*UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("purpose", "ocr"); err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read file contents: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}

	var uploaded UploadResponse
	if err := c.do(ctx, http.MethodPost, "/v1/files", mw.FormDataContentType(), buf.Bytes(), &uploaded); err != nil {
		return nil, err
	}

	slog.Debug("File uploaded", "file_id", uploaded.ID, "filename", filename)
	return &uploaded, nil
}

// GetSignedURL mints a short-lived retrieval URL for an uploaded file. The
// TTL is controlled by the provider.
func (c *Client) GetSignedURL(ctx context.Context, fileID string) (*SignedURLResponse, error) {
	var signed SignedURLResponse
	if err := c.do(ctx, http.MethodGet, "/v1/files/"+fileID+"/url", "", nil, &signed); err != nil {
		return nil, err
	}
	if signed.URL == "" {
		return nil, fmt.Errorf("gateway returned an empty signed URL for file %s", fileID)
	}
	return &signed, nil
}

// ProcessOCR runs OCR against a URL-addressable document. Zero pages is a
// valid response; callers must not treat it as an error.
func (c *Client) ProcessOCR(ctx context.Context, doc DocumentSource) (*OCRResponse, error) {
	body, err := json.Marshal(map[string]any{
		"model":    c.ocrModel,
		"document": doc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal OCR request: %w", err)
	}

	var resp OCRResponse
	if err := c.do(ctx, http.MethodPost, "/v1/ocr", "application/json", body, &resp); err != nil {
		return nil, err
	}

	slog.Info("OCR processed", "model", resp.Model, "pages", len(resp.Pages))
	return &resp, nil
}

// ValidateKey makes a minimal chat completion call to confirm the API key
// works. It is advisory only; a skipped or failed check never blocks real
// processing when a key is supplied.
func (c *Client) ValidateKey(ctx context.Context) error {
	body, err := json.Marshal(map[string]any{
		"model":      validationModel,
		"messages":   []map[string]string{{"role": "user", "content": "Hello"}},
		"max_tokens": 5,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal validation request: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/v1/chat/completions", "application/json", body, nil)
}

// do issues one API call with bounded retries for transient failures. The
// body is held as bytes so each attempt gets a fresh reader.
func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte, out any) error {
	backoff := c.backoff

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = c.doOnce(ctx, method, path, contentType, body, out)
		if lastErr == nil {
			return nil
		}
		if Classify(lastErr) != KindTransient || attempt == c.maxAttempts {
			return lastErr
		}

		slog.Warn("Transient gateway failure, retrying",
			"path", path, "attempt", attempt, "backoff", backoff, "err", lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, method, path, contentType string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("gateway returned an empty response for %s", path)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}
