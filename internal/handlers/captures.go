package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/ocrflow/ocrflow/internal/metrics"
	"github.com/ocrflow/ocrflow/internal/render"
	"github.com/ocrflow/ocrflow/internal/session"
)

// HandleCaptures accepts one camera shot, runs it through the pipeline and
// folds the extracted text into the capture session. A failed or empty
// capture never touches the accumulated text, and the image count only
// reflects captures that actually contributed text.
func (h *Handler) HandleCaptures(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	doc, ok := h.readUploadedFile(w, r)
	if !ok {
		return
	}

	var sess *session.CaptureSession
	if sessionID := r.FormValue("session_id"); sessionID != "" {
		sess, ok = h.getSessionOrError(w, sessionID)
		if !ok {
			return
		}
	} else {
		sess = h.sessionStore.Create()
	}

	// Captures arrive without a meaningful name; synthesize one so the
	// gateway sees an image extension.
	if filepath.Ext(doc.Name) == "" {
		doc.Name = fmt.Sprintf("camera_image_%d.jpg", sess.ImageCount+1)
	}

	result, err := h.proc.Process(r.Context(), *doc)
	metrics.RecordOutcome("capture", err)

	appended := false
	if err != nil {
		sess.Fail("Error processing image: " + err.Error())
	} else {
		appended = sess.Append(render.PlainText(result), result)
	}

	h.writeJSON(w, captureResponse(sess, appended))
}

func captureResponse(sess *session.CaptureSession, appended bool) map[string]any {
	return map[string]any{
		"session_id":       sess.ID,
		"success":          appended,
		"image_count":      sess.ImageCount,
		"accumulated_text": sess.AccumulatedText,
		"last_error":       sess.LastError,
	}
}
