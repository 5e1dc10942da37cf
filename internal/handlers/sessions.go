package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ocrflow/ocrflow/internal/render"
	"github.com/ocrflow/ocrflow/internal/session"
)

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, h.sessionStore.GetAll())
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	sessionID, action, _ := strings.Cut(path, "/")

	sess, ok := h.getSessionOrError(w, sessionID)
	if !ok {
		return
	}

	switch action {
	case "download":
		h.handleSessionDownload(w, r, sess)
		return
	case "preview":
		h.handleSessionPreview(w, r, sess)
		return
	case "":
	default:
		h.writeError(w, "Not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case "GET":
		h.writeJSON(w, sess)
	case "PUT":
		var update struct {
			AccumulatedText string `json:"accumulated_text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		sess.SetText(update.AccumulatedText)
		h.writeJSON(w, sess)
	case "DELETE":
		sess.Clear()
		h.writeJSON(w, sess)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSessionDownload serves a timestamped artifact: the accumulated text
// as Markdown by default, a JSON snapshot of the session, or the captures
// merged into a single camera document.
func (h *Handler) handleSessionDownload(w http.ResponseWriter, r *http.Request, sess *session.CaptureSession) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	timestamp := time.Now().Unix()
	switch r.URL.Query().Get("format") {
	case "combined":
		markdown := render.Combined(sess.Combined(time.Now()))
		w.Header().Set("Content-Type", "text/markdown")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="camera_ocr_document_%d.md"`, timestamp))
		_, _ = io.WriteString(w, markdown)
	case "json":
		data, err := json.MarshalIndent(sess, "", "  ")
		if err != nil {
			h.writeError(w, "Failed to encode session: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="camera_ocr_%d.json"`, timestamp))
		_, _ = w.Write(data)
	default:
		w.Header().Set("Content-Type", "text/markdown")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="camera_ocr_%d.md"`, timestamp))
		_, _ = io.WriteString(w, sess.AccumulatedText)
	}
}
