package handlers

import (
	"bytes"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/ocrflow/ocrflow/internal/session"
)

var markdownHTML = goldmark.New()

// handleSessionPreview renders the session's accumulated Markdown to HTML
// so a front end can show a formatted preview without its own renderer.
func (h *Handler) handleSessionPreview(w http.ResponseWriter, r *http.Request, sess *session.CaptureSession) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var buf bytes.Buffer
	if err := markdownHTML.Convert([]byte(sess.AccumulatedText), &buf); err != nil {
		h.writeError(w, "Failed to render preview: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
