package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
)

// maxMultipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file. MaxBodySize still caps the total.
const maxMultipartMemory = 8 << 20

// parseMultipart reads a multipart body, writing 413 when MaxBodySize cut it
// off and 400 for anything else malformed.
func parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	err := r.ParseMultipartForm(maxMultipartMemory)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, r, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
		return false
	}
	badRequest(w, r, "request must be multipart/form-data")
	return false
}

// serveFile streams rc to the client as an inline download named name.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, name string, rc io.ReadCloser) {
	defer rc.Close()

	ct := mime.TypeByExtension(filepath.Ext(name))
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		s.log.WarnContext(r.Context(), "file download interrupted", "file", name, "error", err)
	}
}
