package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/pkordes/fleet-ledger/internal/service"
)

type RenameDocumentRequest struct {
	Name string `json:"name" validate:"required"`
}

// ListDocuments handles GET /boat/{boatId}/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "boatId")
	if !ok {
		return
	}
	docs, err := s.documents.ListByBoat(r.Context(), ids[0])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, docs)
}

// UploadDocument handles POST /boat/{boatId}/documents with multipart fields
// "file" and an optional display "name".
func (s *Server) UploadDocument(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "boatId")
	if !ok {
		return
	}
	if !parseMultipart(w, r) {
		return
	}
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		writeError(w, r, http.StatusUnprocessableEntity, "validation_error", "file is required")
		return
	}
	if err != nil {
		badRequest(w, r, "file could not be read")
		return
	}
	defer file.Close()

	doc, err := s.documents.Upload(r.Context(), ids[0], service.Upload{
		Name:        r.FormValue("name"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, doc)
}

// RenameDocument handles PUT /boat/{boatId}/documents/{documentId}.
func (s *Server) RenameDocument(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "boatId", "documentId")
	if !ok {
		return
	}
	var req RenameDocumentRequest
	if !s.decode(w, r, &req) {
		return
	}
	doc, err := s.documents.Rename(r.Context(), ids[0], ids[1], req.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, doc)
}

// DeleteDocument handles DELETE /boat/{boatId}/documents/{documentId}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "boatId", "documentId")
	if !ok {
		return
	}
	if err := s.documents.Delete(r.Context(), ids[0], ids[1]); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DownloadDocument handles GET /boat/documents/{filename}.
func (s *Server) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	rc, err := s.documents.Open(r.Context(), name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.serveFile(w, r, name, rc)
}
