package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roadscan/roadscan-cli/internal/config"
	"github.com/roadscan/roadscan-cli/internal/model"
	"github.com/roadscan/roadscan-cli/internal/pipeline"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scan HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		p, cleanup, err := initPipeline(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           newRouter(cfg, p),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("server listening", zap.Int("port", cfg.Server.Port))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return eris.Wrap(err, "serve: listen")
		case <-ctx.Done():
		}

		zap.L().Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return eris.Wrap(err, "serve: shutdown")
		}
		return nil
	},
}

// scanRunner is the slice of the pipeline the HTTP layer needs.
type scanRunner interface {
	Run(ctx context.Context, address string) (*model.ScanResult, error)
}

func newRouter(cfg *config.Config, runner scanRunner) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", handleHealth)
	r.Get("/", handleUIConfig(cfg))
	r.Post("/scan", handleScan(runner))
	r.Get("/reports/{filename}", handleReport(cfg.Reports.Dir))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUIConfig exposes the cosmetic toggles the frontend reads.
func handleUIConfig(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":          "roadscan",
			"background_image": cfg.UI.BackgroundImage,
			"show_map_link":    cfg.UI.ShowMapLink,
		})
	}
}

type scanRequest struct {
	Address string `json:"address"`
}

type scanResponse struct {
	ScanID string `json:"scan_id"`
	*model.ScanResult
	Report      string `json:"report,omitempty"`          // download path under /reports/
	StreetImage string `json:"street_image,omitempty"`    // base64, as fetched
	Annotated   string `json:"annotated_image,omitempty"` // base64 JPEG with boxes drawn
}

type errorResponse struct {
	Error string `json:"error"`
}

func handleScan(runner scanRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		scanID := uuid.NewString()
		log := zap.L().With(
			zap.String("scan_id", scanID),
			zap.String("address", req.Address),
		)
		log.Info("scan request received")

		result, err := runner.Run(r.Context(), req.Address)
		switch {
		case eris.Is(err, pipeline.ErrEmptyAddress):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "address is required"})
			return
		case eris.Is(err, pipeline.ErrAddressNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "address not found"})
			return
		case err != nil:
			log.Error("scan failed", zap.Error(err))
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "scan failed"})
			return
		}

		resp := scanResponse{
			ScanID:     scanID,
			ScanResult: result,
		}
		if result.ReportPath != "" {
			resp.Report = "/reports/" + filepath.Base(result.ReportPath)
		}
		if len(result.Image) > 0 {
			resp.StreetImage = base64.StdEncoding.EncodeToString(result.Image)
		}
		if len(result.Annotated) > 0 {
			resp.Annotated = base64.StdEncoding.EncodeToString(result.Annotated)
		}

		log.Info("scan request complete",
			zap.String("state", string(result.State)),
			zap.Int("detections", len(result.Detections)),
		)
		writeJSON(w, http.StatusOK, resp)
	}
}

// handleReport serves a previously generated PDF. Only bare report filenames
// are accepted; anything with a path component is rejected.
func handleReport(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := chi.URLParam(r, "filename")
		if filepath.Base(filename) != filename ||
			!strings.HasPrefix(filename, "defect_report_") ||
			!strings.HasSuffix(filename, ".pdf") {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "report not found"})
			return
		}

		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err != nil {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "report not found"})
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		http.ServeFile(w, r, path)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}
