package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/contacts/internal/core"
	"github.com/JonMunkholm/contacts/internal/logging"
	"github.com/JonMunkholm/contacts/internal/store"
	"github.com/JonMunkholm/contacts/internal/web/templates"
	"github.com/google/uuid"
)

const (
	runIDHeader = "X-Run-ID"

	// multipartMemory is how much of a multipart upload is held in memory before spilling to disk.
	multipartMemory = 8 << 20

	healthTimeout = 2 * time.Second
)

// Report is the ?report=true response envelope.
type Report struct {
	RunID      string            `json:"run_id"`
	Stats      core.Stats        `json:"stats"`
	Records    []*core.Record    `json:"records"`
	Rejections []core.Rejection  `json:"rejections"`
	Saved      *store.SaveResult `json:"saved,omitempty"`
}

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := templates.UploadPage(templates.PageData{
		Region:      s.cfg.Normalize.Region,
		MaxFileSize: s.cfg.Upload.MaxFileSize,
		Persistence: s.store != nil,
	}).Render(r.Context(), w)
	if err != nil {
		logging.FromContext(r.Context()).Error("render upload page", "error", err)
	}
}

// handleNormalize normalizes an uploaded CSV. The file is taken from the
// multipart "file" field, or from the raw body for any other content type.
//
// Query parameters:
//   - report=true: respond with a Report instead of the bare record array
//   - persist=true: save the records when a store is configured
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	runID := uuid.New()
	w.Header().Set(runIDHeader, runID.String())
	logger := logging.WithFields(r.Context(), "run_id", runID)

	report := queryBool(r, "report")
	persist := queryBool(r, "persist")
	if persist && s.store == nil {
		s.respondError(w, r, core.ErrPersistenceDisabled, http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	data, err := readUpload(r)
	if err != nil {
		s.respondError(w, r, err, uploadStatus(err))
		return
	}

	start := time.Now()
	res, err := s.normalizer.Normalize(data)
	if s.metrics != nil {
		s.metrics.ObserveRun(res, err, time.Since(start))
	}
	if err != nil {
		var cfgErr *core.ConfigurationError
		if errors.As(err, &cfgErr) {
			s.respondError(w, r, err, http.StatusUnprocessableEntity)
			return
		}
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	logger.Info("normalization finished",
		"bytes", len(data),
		"records", res.Stats.Records,
		"rejected", res.Stats.Rejected,
	)

	var saved *store.SaveResult
	if persist {
		result, err := s.store.SaveRecords(r.Context(), runID, res.Records)
		if err != nil {
			s.respondError(w, r, fmt.Errorf("save records: %w", err), http.StatusServiceUnavailable)
			return
		}
		saved = &result
	}

	if !report {
		writeJSON(w, http.StatusOK, res.Records)
		return
	}

	rejections := res.Rejections
	if rejections == nil {
		rejections = []core.Rejection{}
	}
	writeJSON(w, http.StatusOK, Report{
		RunID:      runID.String(),
		Stats:      res.Stats,
		Records:    res.Records,
		Rejections: rejections,
		Saved:      saved,
	})
}

// readUpload returns the uploaded file contents.
func readUpload(r *http.Request) ([]byte, error) {
	var src io.Reader = r.Body

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, classifyReadError(err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				return nil, errNoFile
			}
			return nil, classifyReadError(err)
		}
		defer file.Close()
		src = file
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, classifyReadError(err)
	}
	if len(data) == 0 {
		return nil, errEmptyFile
	}
	return data, nil
}

func classifyReadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: limit is %d bytes", errTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("read input: %w", err)
}

func uploadStatus(err error) int {
	if errors.Is(err, errTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

// HealthResponse is the /health body.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// handleHealth reports liveness and, when configured, database reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Database: "disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		logging.FromContext(r.Context()).Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Database: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Database: "ok"})
}
