package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/JonMunkholm/vizboard/internal/core"
)

// multipartOverhead is allowed on top of the file size limit for the
// multipart envelope.
const multipartOverhead = 1 << 20

// maxMemory is how much of a multipart body is buffered in memory before
// spilling to temporary files.
const maxMemory = 32 << 20

// handleUpload accepts a CSV in the multipart "file" field and makes it the
// session's dataset. Browsers are redirected to the dashboard; API clients
// get the dataset summary.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sessionID := s.ensureSession(w, r)

	limit := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = fmt.Errorf("%w: request exceeds %d bytes", core.ErrFileTooLarge, limit)
		} else {
			err = fmt.Errorf("%w: %v", core.ErrNoFile, err)
		}
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, core.ErrNoFile, http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > limit {
		err := fmt.Errorf("%w: %d bytes exceeds %d", core.ErrFileTooLarge, header.Size, limit)
		s.respondError(w, r, err, statusFor(err))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("read upload: %w", err), http.StatusInternalServerError)
		return
	}

	ctx := withRequestMetadata(r.Context(), r)
	summary, err := s.service.Upload(ctx, sessionID, header.Filename, data)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, summary)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleDiscard drops the session's dataset.
func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	if id := s.sessionID(r); id != "" {
		if err := s.service.Discard(r.Context(), id); err != nil {
			s.respondError(w, r, err, statusFor(err))
			return
		}
	}

	if wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
