package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ocrflow/ocrflow/internal/mistral"
	"github.com/ocrflow/ocrflow/internal/models"
	"github.com/ocrflow/ocrflow/internal/pipeline"
	"github.com/ocrflow/ocrflow/internal/session"
)

// Processor is the per-document pipeline contract the handlers depend on.
type Processor interface {
	Process(ctx context.Context, doc pipeline.Document) (*models.OCRResult, error)
}

type Handler struct {
	proc          Processor
	sessionStore  *session.Store
	uploadLimitMB int
}

func New(proc Processor, store *session.Store, uploadLimitMB int) *Handler {
	if uploadLimitMB <= 0 {
		uploadLimitMB = 50
	}
	return &Handler{
		proc:          proc,
		sessionStore:  store,
		uploadLimitMB: uploadLimitMB,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// pipelineStatus maps a pipeline failure onto an HTTP status. The upstream
// gateway owns most failures, so its classification drives the mapping.
func pipelineStatus(err error) int {
	var perr *pipeline.Error
	if errors.As(err, &perr) && perr.Stage == pipeline.StageStaging {
		return http.StatusInternalServerError
	}
	switch mistral.Classify(err) {
	case mistral.KindAuth:
		return http.StatusUnauthorized
	case mistral.KindPermission:
		return http.StatusForbidden
	case mistral.KindQuota:
		return http.StatusTooManyRequests
	case mistral.KindBilling:
		return http.StatusPaymentRequired
	case mistral.KindTransient:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*session.CaptureSession, bool) {
	sess, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return sess, true
}
