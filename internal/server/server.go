// Package server exposes the fraud detection pipeline over HTTP: CSV
// upload, training, scoring, model metadata, and data statistics, plus
// the Prometheus scrape endpoint.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/alert"
	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/cfg"
	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/detector"
	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/table"
)

// Server is the HTTP front of the detection pipeline.
type Server struct {
	settings cfg.Settings
	detector *detector.Detector
	notifier *alert.Notifier
	httpSrv  *http.Server
}

// New builds a Server around the given detector. The notifier may be
// nil when alerting is not configured.
func New(settings cfg.Settings, det *detector.Detector, notifier *alert.Notifier) *Server {
	s := &Server{settings: settings, detector: det, notifier: notifier}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/upload", s.handleUpload)
	mux.HandleFunc("/api/train", s.handleTrain)
	mux.HandleFunc("/api/predict", s.handlePredict)
	mux.HandleFunc("/api/model/info", s.handleModelInfo)
	mux.HandleFunc("/api/statistics", s.handleStatistics)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", settings.ListenPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Run serves until ctx is canceled, then shuts down gracefully. The
// upload housekeeping loop runs alongside the listener.
func (s *Server) Run(ctx context.Context) error {
	if err := os.MkdirAll(s.settings.UploadPath, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	go s.cleanupLoop(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().Int("port", s.settings.ListenPort).Msg("http server listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler exposes the configured handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"model_loaded": s.detector.IsModelLoaded(),
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

// handleUpload stores the CSV and reports its validation result without
// training or scoring anything.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	t, file, header, ok := s.readCSV(w, r)
	if !ok {
		return
	}
	defer file.Close()

	result := table.Validate(t)
	if !result.Valid {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"valid":   false,
			"errors":  result.Errors,
		})
		return
	}

	saved, err := s.saveUpload(file, header.Filename)
	if err != nil {
		log.Error().Err(err).Msg("upload save failed")
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"valid":    true,
		"filename": filepath.Base(saved),
		"rows":     t.Len(),
		"columns":  t.Columns(),
	})
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	t, file, _, ok := s.readCSV(w, r)
	if !ok {
		return
	}
	defer file.Close()

	result, err := s.detector.Train(t)
	var persistErr *detector.PersistenceError
	if errors.As(err, &persistErr) && result != nil {
		// Model is live in memory; report the result with a warning
		// instead of discarding a successful fit.
		writeJSON(w, http.StatusOK, map[string]any{
			"success":         true,
			"warning":         persistErr.Error(),
			"metrics":         result.Metrics,
			"model_info":      result.ModelInfo,
			"data_statistics": result.DataStatistics,
		})
		return
	}
	if err != nil {
		s.writeDetectorError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"metrics":         result.Metrics,
		"model_info":      result.ModelInfo,
		"data_statistics": result.DataStatistics,
	})
}

// handlePredict scores a batch supplied either as a multipart CSV or as
// a JSON body naming a previously uploaded file.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var t *table.Table
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		t = s.readUploadedCSV(w, r)
		if t == nil {
			return
		}
	} else {
		parsed, file, _, ok := s.readCSV(w, r)
		if !ok {
			return
		}
		file.Close()
		t = parsed
	}

	result, err := s.detector.Score(t)
	if err != nil {
		s.writeDetectorError(w, err)
		return
	}

	if s.notifier != nil && s.notifier.Enabled() && result.Summary.FraudCount > 0 {
		go s.notifyFraud(result)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"summary":      result.Summary,
		"transactions": result.Transactions,
		"model_info":   result.ModelInfo,
	})
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	info, ok := s.detector.ModelInfo()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"success": false,
			"error":   "No model loaded. Train a model first.",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"model_info":       info,
		"prediction_count": s.detector.PredictionCount(),
	})
}

// handleStatistics reports service-level usage counters.
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"statistics": map[string]any{
			"total_predictions":  s.detector.PredictionCount(),
			"model_loaded":       s.detector.IsModelLoaded(),
			"upload_folder_size": s.uploadFolderSize(),
			"timestamp":          time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// readUploadedCSV resolves a {"filepath": ...} JSON body against the
// upload directory. Only base names are honored, so a request cannot
// escape the upload directory.
func (s *Server) readUploadedCSV(w http.ResponseWriter, r *http.Request) *table.Table {
	var req struct {
		Filepath string `json:"filepath"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Filepath == "" {
		writeError(w, http.StatusBadRequest, "No file or filepath provided")
		return nil
	}

	name := filepath.Base(req.Filepath)
	f, err := os.Open(filepath.Join(s.settings.UploadPath, name))
	if err != nil {
		writeError(w, http.StatusNotFound, "File not found: "+name)
		return nil
	}
	defer f.Close()

	t, err := table.ReadCSV(f)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse CSV: "+err.Error())
		return nil
	}
	return t
}

func (s *Server) uploadFolderSize() int64 {
	entries, err := os.ReadDir(s.settings.UploadPath)
	if err != nil {
		return 0
	}
	var total int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if info, err := e.Info(); err == nil {
			total += info.Size()
		}
	}
	return total
}

// readCSV extracts and parses the uploaded CSV part. On failure it has
// already written the error response and returns ok=false.
func (s *Server) readCSV(w http.ResponseWriter, r *http.Request) (*table.Table, multipart.File, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.settings.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.settings.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request: "+err.Error())
		return nil, nil, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return nil, nil, nil, false
	}

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		file.Close()
		writeError(w, http.StatusBadRequest, "Only CSV files are supported")
		return nil, nil, nil, false
	}

	t, err := table.ReadCSV(file)
	if err != nil {
		file.Close()
		writeError(w, http.StatusBadRequest, "failed to parse CSV: "+err.Error())
		return nil, nil, nil, false
	}
	return t, file, header, true
}

// saveUpload writes the already-read file back to the upload directory
// under a timestamped name.
func (s *Server) saveUpload(file multipart.File, original string) (string, error) {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_%s", time.Now().UTC().Format("20060102T150405"), filepath.Base(original))
	path := filepath.Join(s.settings.UploadPath, name)

	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// cleanupLoop removes uploads older than the configured max age.
func (s *Server) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(s.settings.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupUploads(time.Now())
		}
	}
}

func (s *Server) cleanupUploads(now time.Time) {
	entries, err := os.ReadDir(s.settings.UploadPath)
	if err != nil {
		log.Warn().Err(err).Msg("upload cleanup scan failed")
		return
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > s.settings.UploadMaxAge {
			if err := os.Remove(filepath.Join(s.settings.UploadPath, e.Name())); err == nil {
				removed++
			}
		}
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Msg("stale uploads cleaned up")
	}
}

func (s *Server) notifyFraud(result *detector.ScoringResult) {
	ctx, cancel := context.WithTimeout(context.Background(), s.settings.AlertTimeout+time.Second)
	defer cancel()

	err := s.notifier.Notify(ctx, alert.Notification{
		Source:            "fraud-detection",
		TotalTransactions: result.Summary.TotalTransactions,
		FraudCount:        result.Summary.FraudCount,
		FraudRate:         result.Summary.FraudRate,
		MaxProbability:    result.Summary.MaxFraudProbability,
		DetectedAt:        time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Warn().Err(err).Msg("fraud alert delivery failed")
	}
}

// writeDetectorError maps pipeline errors onto HTTP statuses.
func (s *Server) writeDetectorError(w http.ResponseWriter, err error) {
	var vErr *detector.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Invalid data",
			"errors":  vErr.Violations,
		})
		return
	}
	if errors.Is(err, detector.ErrNoModelLoaded) {
		writeError(w, http.StatusBadRequest, "No model loaded. Train a model first.")
		return
	}
	var sErr *detector.SchemaMismatchError
	if errors.As(err, &sErr) {
		writeError(w, http.StatusBadRequest, sErr.Error())
		return
	}
	log.Error().Err(err).Msg("pipeline request failed")
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("response encode failed")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}
