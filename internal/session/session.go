// Package session holds the mutable state for camera-style multi-capture
// OCR. A CaptureSession accumulates extracted text across shots; all
// mutation goes through named methods so the state machine stays testable
// without any front end.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/ocrflow/ocrflow/internal/models"
)

// CaptureSession is single-writer state: one capture-handling routine per
// session. Concurrent use requires external mutual exclusion.
type CaptureSession struct {
	ID              string    `json:"id"`
	AccumulatedText string    `json:"accumulated_text"`
	ImageCount      int       `json:"image_count"`
	LastError       *string   `json:"last_error"`
	CreatedAt       time.Time `json:"created_at"`

	// results holds the normalized result of every contributing capture,
	// in capture order, so the session can be exported as one merged
	// document. Failed and empty captures leave no entry.
	results []*models.OCRResult
}

func New(id string) *CaptureSession {
	return &CaptureSession{
		ID:        id,
		CreatedAt: time.Now(),
	}
}

// Append records one capture's extracted text. Empty text counts as a
// failed capture: the visible image count stays at its pre-attempt value so
// it always equals the number of captures that actually contributed text.
// The capture's normalized result, when given, is retained for Combined.
func (s *CaptureSession) Append(text string, result *models.OCRResult) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		s.Fail(fmt.Sprintf("No text found in image %d. Please try again with a clearer image.", s.ImageCount+1))
		return false
	}

	s.ImageCount++
	header := fmt.Sprintf("--- Image %d ---\n\n", s.ImageCount)
	if s.AccumulatedText != "" {
		s.AccumulatedText += "\n\n"
	}
	s.AccumulatedText += header + trimmed
	s.LastError = nil
	if result != nil {
		s.results = append(s.results, result)
	}
	return true
}

// Fail records a processing error. Count and accumulated text are
// untouched; prior captures stay intact.
func (s *CaptureSession) Fail(msg string) {
	s.LastError = &msg
}

// Clear resets the session to idle. Clearing twice is the same as once.
func (s *CaptureSession) Clear() {
	s.AccumulatedText = ""
	s.ImageCount = 0
	s.LastError = nil
	s.results = nil
}

// SetText overwrites the accumulated text with a user edit. The edit is
// authoritative until the next capture appends to it. Retained capture
// results are untouched; the merged document always reflects the captures
// themselves, not edits.
func (s *CaptureSession) SetText(text string) {
	s.AccumulatedText = text
}

// Combined merges the retained per-capture results into one document via
// Combine.
func (s *CaptureSession) Combined(at time.Time) *models.OCRResult {
	return Combine(s.results, at)
}

// Combine merges successive single-capture results into one document with
// contiguous, render-ordered page indices. TotalPages counts source
// captures, matching the downloadable artifact's historical shape.
func Combine(results []*models.OCRResult, at time.Time) *models.OCRResult {
	combined := &models.OCRResult{
		Pages: []models.OCRPage{},
		DocumentInfo: &models.DocumentInfo{
			TotalPages:  len(results),
			ProcessedAt: at.Format("2006-01-02 15:04:05"),
			Source:      "camera_capture",
		},
	}

	pageIndex := 0
	for _, result := range results {
		if result == nil {
			continue
		}
		for _, page := range result.Pages {
			idx := pageIndex
			combined.Pages = append(combined.Pages, models.OCRPage{
				Index:    &idx,
				Markdown: page.Markdown,
			})
			pageIndex++
		}
	}
	return combined
}
