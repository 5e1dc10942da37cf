package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/ocrflow/ocrflow/internal/metrics"
	"github.com/ocrflow/ocrflow/internal/pipeline"
	"github.com/ocrflow/ocrflow/internal/render"
)

// HandleUpload processes one uploaded document end to end and returns the
// rendered Markdown alongside the raw result. With ?format=markdown or
// ?format=json the response is a timestamped downloadable artifact instead.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	doc, ok := h.readUploadedFile(w, r)
	if !ok {
		return
	}

	result, err := h.proc.Process(r.Context(), *doc)
	metrics.RecordOutcome("single", err)
	if err != nil {
		h.writeError(w, err.Error(), pipelineStatus(err))
		return
	}

	markdown := render.Document(result)

	switch r.URL.Query().Get("format") {
	case "markdown":
		timestamp := time.Now().Unix()
		w.Header().Set("Content-Type", "text/markdown")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ocr_result_%d.md"`, timestamp))
		_, _ = io.WriteString(w, markdown)
	case "json":
		timestamp := time.Now().Unix()
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			h.writeError(w, "Failed to encode result: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ocr_result_%d.json"`, timestamp))
		_, _ = w.Write(data)
	default:
		h.writeJSON(w, map[string]any{
			"document_name": doc.Name,
			"page_count":    result.PageCount(),
			"markdown":      markdown,
			"result":        result,
		})
	}
}

func (h *Handler) readUploadedFile(w http.ResponseWriter, r *http.Request) (*pipeline.Document, bool) {
	file, header, err := r.FormFile("files")
	if err != nil {
		file, header, err = r.FormFile("file")
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return nil, false
		}
	}
	defer file.Close()

	// Images get a tighter cap than PDFs.
	limit := int64(h.uploadLimitMB) * 1024 * 1024
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		limit = 10 * 1024 * 1024
	}

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	if int64(len(data)) > limit {
		h.writeError(w, fmt.Sprintf("File too large (max %d MB)", limit/1024/1024), http.StatusBadRequest)
		return nil, false
	}
	if len(data) == 0 {
		h.writeError(w, "Uploaded file is empty", http.StatusBadRequest)
		return nil, false
	}

	return &pipeline.Document{Name: header.Filename, Data: data}, true
}
