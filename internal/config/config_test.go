package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"MISTRAL_API_KEY", "MISTRAL_BASE_URL", "OCR_MODEL", "PORT", "BATCH_DELAY", "UPLOAD_LIMIT_MB"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.OCRModel != "mistral-ocr-latest" {
		t.Errorf("OCRModel = %q", cfg.OCRModel)
	}
	if cfg.Port != "8888" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.BatchDelay != time.Second {
		t.Errorf("BatchDelay = %v", cfg.BatchDelay)
	}
	if cfg.UploadLimitMB != 50 {
		t.Errorf("UploadLimitMB = %d", cfg.UploadLimitMB)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MISTRAL_API_KEY", "key-from-env")
	t.Setenv("PORT", "9000")
	t.Setenv("BATCH_DELAY", "2s")
	t.Setenv("UPLOAD_LIMIT_MB", "25")

	cfg := Load()

	if cfg.APIKey != "key-from-env" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if cfg.Port != "9000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.BatchDelay != 2*time.Second {
		t.Errorf("BatchDelay = %v", cfg.BatchDelay)
	}
	if cfg.UploadLimitMB != 25 {
		t.Errorf("UploadLimitMB = %d", cfg.UploadLimitMB)
	}
}

func TestApplyFile(t *testing.T) {
	t.Setenv("MISTRAL_API_KEY", "env-key")
	t.Setenv("PORT", "")

	path := filepath.Join(t.TempDir(), "ocrflow.yaml")
	content := `
port: "7777"
batch_delay: 500ms
upload_limit_mb: 20
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Load()
	if err := cfg.ApplyFile(path); err != nil {
		t.Fatalf("ApplyFile: %v", err)
	}

	if cfg.Port != "7777" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.BatchDelay != 500*time.Millisecond {
		t.Errorf("BatchDelay = %v", cfg.BatchDelay)
	}
	if cfg.UploadLimitMB != 20 {
		t.Errorf("UploadLimitMB = %d", cfg.UploadLimitMB)
	}
	// The overlay file never carries credentials.
	if cfg.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env value preserved", cfg.APIKey)
	}
}

func TestApplyFileErrors(t *testing.T) {
	cfg := Load()

	if err := cfg.ApplyFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("batch_delay: [not, a, duration]"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := cfg.ApplyFile(bad); err == nil {
		t.Error("expected error for malformed file")
	}
}
