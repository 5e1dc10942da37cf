// Package render converts normalized OCR results into Markdown. All
// renderers are pure: equal inputs always produce identical strings.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ocrflow/ocrflow/internal/models"
)

// Document renders one section per page: a level-2 heading with the raw
// gateway index ("unknown" when the gateway omitted it), the page body
// verbatim, then a horizontal rule. Pages with empty bodies still get a
// heading and separator so no page is silently dropped.
func Document(result *models.OCRResult) string {
	var b strings.Builder
	for _, page := range result.Pages {
		label := "unknown"
		if page.Index != nil {
			label = strconv.Itoa(*page.Index)
		}
		fmt.Fprintf(&b, "## Page %s\n\n", label)
		b.WriteString(page.Markdown)
		b.WriteString("\n\n---\n\n")
	}
	return b.String()
}

// Combined renders a merged multi-capture document. Unlike Document, page
// headings use 1-based display numbers derived from the stored index, and a
// document header with capture metadata precedes the pages.
func Combined(result *models.OCRResult) string {
	var b strings.Builder

	processedAt := "Unknown"
	if result.DocumentInfo != nil && result.DocumentInfo.ProcessedAt != "" {
		processedAt = result.DocumentInfo.ProcessedAt
	}

	b.WriteString("# Camera OCR Document\n\n")
	fmt.Fprintf(&b, "**Total Pages:** %d\n", len(result.Pages))
	fmt.Fprintf(&b, "**Processed:** %s\n\n", processedAt)
	b.WriteString("---\n\n")

	for _, page := range result.Pages {
		display := 1
		if page.Index != nil {
			display = *page.Index + 1
		}
		fmt.Fprintf(&b, "## Page %d\n\n", display)
		b.WriteString(page.Markdown)
		b.WriteString("\n\n---\n\n")
	}
	return b.String()
}

// PlainText concatenates the trimmed page bodies with no headings or
// separators. This is the shape the capture accumulator appends, which adds
// its own per-image headers.
func PlainText(result *models.OCRResult) string {
	var b strings.Builder
	for _, page := range result.Pages {
		body := strings.TrimSpace(page.Markdown)
		if body == "" {
			continue
		}
		b.WriteString(body)
	}
	return b.String()
}
