package batch

import (
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// logPDFPageCount inspects a PDF before upload so the run log shows the
// expected page count next to what the gateway reports. The gateway is
// authoritative; a local parse failure only logs.
func logPDFPageCount(path string) {
	pages, err := api.PageCountFile(path)
	if err != nil {
		slog.Warn("Could not read PDF page count", "path", path, "err", err)
		return
	}
	slog.Info("PDF precheck", "path", path, "pages", pages)
}
