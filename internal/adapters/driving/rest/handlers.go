package rest

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"

	"github.com/custodia-labs/brandlens/internal/core/domain"
	"github.com/custodia-labs/brandlens/internal/core/ports/driving"
	"github.com/custodia-labs/brandlens/internal/core/services"
	"github.com/custodia-labs/brandlens/internal/logger"
)

// multipartOverhead is allowed on top of the image size for form fields
// and boundaries.
const multipartOverhead = 1 << 20

type listResponse struct {
	Images []domain.ReferenceEntry `json:"images"`
	Count  int                     `json:"count"`
}

type addResponse struct {
	Image *domain.ReferenceEntry `json:"image"`
}

type removedReference struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type deleteResponse struct {
	Success bool             `json:"success"`
	Removed removedReference `json:"removed"`
}

type searchRequest struct {
	Fingerprint   looseString `json:"fingerprint"`
	Algorithm     looseString `json:"algorithm"`
	Length        looseString `json:"length"`
	MinSimilarity looseString `json:"minSimilarity"`
	Limit         looseString `json:"limit"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.library.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Images: entries, Count: len(entries)})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "image exceeds the upload limit")
			return
		}
		writeError(w, http.StatusBadRequest, "expected a multipart/form-data body")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp file cleanup

	req := driving.AddReferenceRequest{
		Title:                r.FormValue("title"),
		Description:          r.FormValue("description"),
		SourceURL:            r.FormValue("sourceUrl"),
		Tags:                 services.SplitTags(r.FormValue("tags")),
		Fingerprint:          r.FormValue("fingerprint"),
		FingerprintAlgorithm: r.FormValue("fingerprintAlgorithm"),
		FingerprintLength:    r.FormValue("fingerprintLength"),
		UploadedBy:           PrincipalFrom(r.Context()),
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		if header.Size > s.opts.MaxUploadBytes {
			writeError(w, http.StatusRequestEntityTooLarge, "image exceeds the upload limit")
			return
		}
		req.Asset = uploadedAsset(file, header)
	case !errors.Is(err, http.ErrMissingFile):
		writeError(w, http.StatusBadRequest, "could not read uploaded image")
		return
	}

	entry, err := s.library.Add(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, addResponse{Image: entry})
}

func uploadedAsset(file multipart.File, header *multipart.FileHeader) *driving.UploadedAsset {
	return &driving.UploadedAsset{
		Reader:       file,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         header.Size,
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	removed, err := s.library.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if removed == nil {
		writeError(w, http.StatusNotFound, "reference image not found")
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{
		Success: true,
		Removed: removedReference{ID: removed.ID, Title: removed.Title},
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var body searchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := s.search.Search(r.Context(), driving.SearchRequest{
		Fingerprint:   string(body.Fingerprint),
		Algorithm:     string(body.Algorithm),
		Length:        string(body.Length),
		MinSimilarity: string(body.MinSimilarity),
		Limit:         string(body.Limit),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("file")
	if s.opts.AssetDir == "" || name == "" || name != path.Base(name) || name == ".." || name[0] == '.' {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.opts.AssetDir, name))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps a service error to a status. Client errors carry
// their message; anything else is logged and reported generically.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "reference image not found")
	default:
		logger.Error("Request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
