package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/rechord/internal/config"
	"github.com/dgallion1/rechord/internal/pipeline"
	"github.com/dgallion1/rechord/internal/source"
	"github.com/go-chi/chi/v5"
)

// Form fields that override single typesetting options.
var overrideFields = map[string]string{
	"index":    "index-location",
	"layout":   "layout",
	"format":   "format",
	"overflow": "overflow",
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	if len(headers) > s.cfg.MaxFiles {
		jsonError(w, fmt.Sprintf("too many files (max %d)", s.cfg.MaxFiles), http.StatusBadRequest)
		return
	}

	ts, err := s.typesetting(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	files := make([]pipeline.InputFile, 0, len(headers))
	var total int64
	for _, fh := range headers {
		filename := sanitizeFilename(fh.Filename)
		if !source.IsSupportedExtension(filename) {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
			return
		}
		f, err := fh.Open()
		if err != nil {
			jsonError(w, "failed to open file", http.StatusInternalServerError)
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil {
			jsonError(w, "failed to read file", http.StatusInternalServerError)
			return
		}
		total += int64(len(data))
		if total > s.cfg.MaxUploadBytes {
			jsonError(w, fmt.Sprintf("upload exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		files = append(files, pipeline.InputFile{Name: filename, Data: data})
	}

	job := pipeline.NewJob(files, ts)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":     job.ID,
		"status":     pipeline.StatusQueued,
		"poll_url":   fmt.Sprintf("/api/render/%s/status", job.ID),
		"output_url": fmt.Sprintf("/api/render/%s/output", job.ID),
	})
}

// typesetting applies the request's "config" text and single-option fields
// on top of the server defaults.
func (s *Server) typesetting(r *http.Request) (config.Typesetting, error) {
	f := s.base.Clone()
	if text := r.FormValue("config"); text != "" {
		if err := f.Load(strings.NewReader(text)); err != nil {
			return config.Typesetting{}, err
		}
	}
	for field, key := range overrideFields {
		if v := r.FormValue(field); v != "" {
			f.Set(key, v)
		}
	}
	if err := f.CheckKeys(); err != nil {
		return config.Typesetting{}, err
	}
	return f.Typesetting()
}

func (s *Server) handleRenderStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleRenderOutput(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	data, contentType, hash := job.Output()
	if snap.Status != pipeline.StatusCompleted || data == nil {
		jsonError(w, fmt.Sprintf("job is %s", snap.Status), http.StatusConflict)
		return
	}

	etag := `"` + hash + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="songbook.%s"`, snap.Format))
	w.Write(data)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}

// isTooLarge reports whether err came from http.MaxBytesReader.
func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
