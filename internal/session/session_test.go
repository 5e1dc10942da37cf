package session

import (
	"strings"
	"testing"
	"time"

	"github.com/ocrflow/ocrflow/internal/models"
)

func TestAppend(t *testing.T) {
	sess := New("test")

	if !sess.Append("first page text", nil) {
		t.Fatal("expected first append to succeed")
	}
	if sess.ImageCount != 1 {
		t.Errorf("ImageCount = %d, want 1", sess.ImageCount)
	}
	if !strings.HasPrefix(sess.AccumulatedText, "--- Image 1 ---\n\n") {
		t.Errorf("first entry should start with its header, got %q", sess.AccumulatedText)
	}

	if !sess.Append("second page text", nil) {
		t.Fatal("expected second append to succeed")
	}
	if sess.ImageCount != 2 {
		t.Errorf("ImageCount = %d, want 2", sess.ImageCount)
	}
	if !strings.Contains(sess.AccumulatedText, "first page text\n\n--- Image 2 ---\n\nsecond page text") {
		t.Errorf("second entry should follow a blank separator, got %q", sess.AccumulatedText)
	}
	if sess.LastError != nil {
		t.Errorf("LastError = %v, want nil after success", *sess.LastError)
	}
}

func TestAppendTrimsText(t *testing.T) {
	sess := New("test")
	sess.Append("  \n padded \n ", nil)
	if !strings.HasSuffix(sess.AccumulatedText, "padded") {
		t.Errorf("appended text should be trimmed, got %q", sess.AccumulatedText)
	}
}

func TestAppendEmptyTextIsFailedCapture(t *testing.T) {
	sess := New("test")
	sess.Append("real text", nil)

	before := sess.AccumulatedText
	if sess.Append("   \n  ", nil) {
		t.Fatal("expected empty-text capture to fail")
	}

	// Failed captures never increase the visible count or touch prior text.
	if sess.ImageCount != 1 {
		t.Errorf("ImageCount = %d, want 1 after failed capture", sess.ImageCount)
	}
	if sess.AccumulatedText != before {
		t.Errorf("accumulated text changed on failed capture:\nbefore: %q\nafter:  %q", before, sess.AccumulatedText)
	}
	if sess.LastError == nil {
		t.Fatal("expected LastError to be set")
	}
	if !strings.Contains(*sess.LastError, "image 2") {
		t.Errorf("error should name the attempted image, got %q", *sess.LastError)
	}
}

func TestFailLeavesStateIntact(t *testing.T) {
	sess := New("test")
	sess.Append("text", nil)

	sess.Fail("gateway exploded")

	if sess.ImageCount != 1 {
		t.Errorf("ImageCount = %d, want 1", sess.ImageCount)
	}
	if sess.LastError == nil || *sess.LastError != "gateway exploded" {
		t.Errorf("LastError = %v, want gateway exploded", sess.LastError)
	}
	if !strings.Contains(sess.AccumulatedText, "text") {
		t.Error("accumulated text lost after Fail")
	}
}

func TestCounterMatchesContributingCaptures(t *testing.T) {
	sess := New("test")

	attempts := []struct {
		text string
		fail bool
	}{
		{text: "one"},
		{text: ""},
		{text: "two"},
		{fail: true},
		{text: "   "},
		{text: "three"},
	}

	contributed := 0
	for _, a := range attempts {
		if a.fail {
			sess.Fail("boom")
			continue
		}
		if sess.Append(a.text, nil) {
			contributed++
		}
	}

	if sess.ImageCount != contributed {
		t.Errorf("ImageCount = %d, want %d (captures with non-empty text)", sess.ImageCount, contributed)
	}
	if contributed != 3 {
		t.Fatalf("test setup: contributed = %d, want 3", contributed)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	sess := New("test")
	sess.Append("some text", &models.OCRResult{Pages: []models.OCRPage{{Markdown: "some text"}}})
	sess.Fail("an error")

	sess.Clear()
	sess.Clear()

	if sess.AccumulatedText != "" || sess.ImageCount != 0 || sess.LastError != nil {
		t.Errorf("after Clear: text=%q count=%d err=%v, want empty/0/nil",
			sess.AccumulatedText, sess.ImageCount, sess.LastError)
	}
	if pages := sess.Combined(time.Now()).Pages; len(pages) != 0 {
		t.Errorf("retained results survived Clear: %d pages", len(pages))
	}
}

func TestSetTextIsAuthoritative(t *testing.T) {
	sess := New("test")
	sess.Append("original", nil)

	sess.SetText("user edited version")
	if sess.AccumulatedText != "user edited version" {
		t.Fatalf("AccumulatedText = %q", sess.AccumulatedText)
	}

	// The next capture appends to the edited text.
	sess.Append("more", nil)
	if !strings.HasPrefix(sess.AccumulatedText, "user edited version\n\n--- Image 2 ---") {
		t.Errorf("append should build on the edit, got %q", sess.AccumulatedText)
	}
}

func intp(i int) *int {
	return &i
}

func TestCombinedTracksContributingCaptures(t *testing.T) {
	at := time.Date(2026, 8, 29, 12, 30, 0, 0, time.UTC)
	sess := New("test")

	sess.Append("alpha", &models.OCRResult{Pages: []models.OCRPage{{Index: intp(0), Markdown: "alpha"}}})
	sess.Append("   ", &models.OCRResult{Pages: []models.OCRPage{{Index: intp(0), Markdown: "   "}}})
	sess.Append("beta", &models.OCRResult{Pages: []models.OCRPage{{Index: intp(0), Markdown: "beta"}}})

	combined := sess.Combined(at)
	if len(combined.Pages) != 2 {
		t.Fatalf("combined pages = %d, want 2 (empty capture excluded)", len(combined.Pages))
	}
	if combined.Pages[0].Markdown != "alpha" || combined.Pages[1].Markdown != "beta" {
		t.Errorf("combined pages out of order: %+v", combined.Pages)
	}
	for i, page := range combined.Pages {
		if page.Index == nil || *page.Index != i {
			t.Errorf("page %d has index %v, want contiguous re-index", i, page.Index)
		}
	}
	if combined.DocumentInfo == nil || combined.DocumentInfo.TotalPages != 2 {
		t.Errorf("document info = %+v", combined.DocumentInfo)
	}

	// Text edits do not rewrite the captured results.
	sess.SetText("completely rewritten")
	if got := sess.Combined(at); len(got.Pages) != 2 {
		t.Errorf("combined pages after edit = %d, want 2", len(got.Pages))
	}
}

func TestCombine(t *testing.T) {
	at := time.Date(2026, 8, 29, 12, 30, 0, 0, time.UTC)
	results := []*models.OCRResult{
		{Pages: []models.OCRPage{{Index: intp(0), Markdown: "a"}, {Index: intp(1), Markdown: "b"}}},
		nil,
		{Pages: []models.OCRPage{{Index: intp(0), Markdown: "c"}}},
	}

	combined := Combine(results, at)

	if len(combined.Pages) != 3 {
		t.Fatalf("combined pages = %d, want 3", len(combined.Pages))
	}
	for i, page := range combined.Pages {
		if page.Index == nil || *page.Index != i {
			t.Errorf("page %d has index %v, want contiguous re-index", i, page.Index)
		}
	}
	if combined.DocumentInfo == nil {
		t.Fatal("expected document info on combined result")
	}
	if combined.DocumentInfo.Source != "camera_capture" {
		t.Errorf("Source = %q", combined.DocumentInfo.Source)
	}
	if combined.DocumentInfo.ProcessedAt != "2026-08-29 12:30:00" {
		t.Errorf("ProcessedAt = %q", combined.DocumentInfo.ProcessedAt)
	}
}

func TestStore(t *testing.T) {
	store := NewStore()

	sess := store.Create()
	if sess.ID == "" {
		t.Fatal("Create should assign an ID")
	}

	got, ok := store.Get(sess.ID)
	if !ok || got != sess {
		t.Fatal("Get should return the created session")
	}

	if _, ok := store.Get("missing"); ok {
		t.Error("Get of unknown ID should report absence")
	}

	if n := len(store.GetAll()); n != 1 {
		t.Errorf("GetAll returned %d sessions, want 1", n)
	}

	store.Delete(sess.ID)
	if _, ok := store.Get(sess.ID); ok {
		t.Error("session still present after Delete")
	}
}
