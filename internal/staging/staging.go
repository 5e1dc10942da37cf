// Package staging writes in-memory document bytes to a scratch file so they
// can be streamed to the OCR gateway, and guarantees removal afterwards.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
)

// Stage writes data to a temporary file whose suffix is derived from
// suggestedName's extension (".jpg" when absent, since captures arrive
// without one). The returned cleanup removes the file and never fails the
// caller; on error no file is left behind and cleanup is nil.
func Stage(data []byte, suggestedName string) (string, func(), error) {
	suffix := filepath.Ext(suggestedName)
	if suffix == "" {
		suffix = ".jpg"
	}

	tmp, err := os.CreateTemp("", "ocrflow-*"+suffix)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	path := tmp.Name()
	cleanup := func() {
		_ = os.Remove(path)
	}
	return path, cleanup, nil
}
