package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ocrflow/ocrflow/internal/config"
	"github.com/ocrflow/ocrflow/internal/handlers"
	"github.com/ocrflow/ocrflow/internal/metrics"
	"github.com/ocrflow/ocrflow/internal/mistral"
	"github.com/ocrflow/ocrflow/internal/pipeline"
	"github.com/ocrflow/ocrflow/internal/session"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web API for document and camera OCR",
		Long: `Starts the ocrflow web API on the specified port.

The API accepts single-document uploads and camera captures. Captures
accumulate extracted text into a session that can be edited, cleared,
previewed as HTML, and downloaded as Markdown or JSON.`,
		Example: `  # Start server on default port 8888
  ocrflow serve

  # Start server on custom port
  ocrflow serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if port != "" {
				cfg.Port = port
			}
			apiKey, err := resolveAPIKey(&cfg)
			if err != nil {
				return err
			}

			handler := handlers.New(newPipeline(apiKey, cfg), session.NewStore(), cfg.UploadLimitMB)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/upload", handler.HandleUpload)
			mux.HandleFunc("/api/captures", handler.HandleCaptures)
			mux.HandleFunc("/api/sessions", handler.HandleSessions)
			mux.HandleFunc("/api/sessions/", handler.HandleSessionDetail)
			mux.Handle("/metrics", metrics.Handler())
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("ocrflow API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default 8888)")

	return cmd
}

func newPipeline(apiKey string, cfg config.Config) *pipeline.Pipeline {
	opts := []mistral.Option{mistral.WithOCRModel(cfg.OCRModel)}
	if cfg.BaseURL != "" {
		opts = append(opts, mistral.WithBaseURL(cfg.BaseURL))
	}
	return pipeline.New(mistral.NewClient(apiKey, opts...))
}
