package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/repo"
	"github.com/pkordes/fleet-ledger/internal/storage"
)

// DocumentURLPrefix is where boat documents are served from.
const DocumentURLPrefix = "/api/v1/boat/documents/"

// Upload is a document file received from a client.
type Upload struct {
	Name        string // display name; defaults to FileName
	FileName    string
	ContentType string
	Body        io.Reader
}

// DocumentService manages files attached to boats.
type DocumentService struct {
	docs  repo.DocumentRepo
	boats repo.BoatRepo
	store storage.Store
	log   *slog.Logger
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(docs repo.DocumentRepo, boats repo.BoatRepo, store storage.Store, log *slog.Logger) *DocumentService {
	return &DocumentService{docs: docs, boats: boats, store: store, log: log}
}

// Upload stores the file and records it against the boat.
func (s *DocumentService) Upload(ctx context.Context, boatID uuid.UUID, up Upload) (domain.Document, error) {
	if up.Body == nil {
		return domain.Document{}, fmt.Errorf("%w: file is required", domain.ErrValidation)
	}
	if _, err := s.boats.GetByID(ctx, boatID); err != nil {
		return domain.Document{}, fmt.Errorf("service.DocumentService.Upload: %w", err)
	}

	name := strings.TrimSpace(up.Name)
	if name == "" {
		name = strings.TrimSpace(filepath.Base(up.FileName))
	}
	if name == "" || name == "." {
		return domain.Document{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	obj, err := s.store.Save(ctx, storage.FolderDocuments, filepath.Ext(up.FileName), up.Body)
	switch {
	case errors.Is(err, storage.ErrEmpty):
		return domain.Document{}, fmt.Errorf("%w: file is empty", domain.ErrValidation)
	case errors.Is(err, storage.ErrInvalidName):
		return domain.Document{}, fmt.Errorf("%w: unsupported file name", domain.ErrValidation)
	case err != nil:
		return domain.Document{}, fmt.Errorf("service.DocumentService.Upload: %w", err)
	}

	doc, err := s.docs.Create(ctx, domain.Document{
		BoatID:      boatID,
		Name:        name,
		URL:         DocumentURLPrefix + obj.Name,
		FileName:    obj.Name,
		ContentType: up.ContentType,
		Size:        obj.Size,
	})
	if err != nil {
		s.removeFile(ctx, obj.Name)
		return domain.Document{}, fmt.Errorf("service.DocumentService.Upload: %w", err)
	}
	s.log.InfoContext(ctx, "document uploaded", "document_id", doc.ID, "boat_id", boatID, "size", doc.Size)
	return doc, nil
}

// ListByBoat returns every document of a boat, newest first.
func (s *DocumentService) ListByBoat(ctx context.Context, boatID uuid.UUID) ([]domain.Document, error) {
	if _, err := s.boats.GetByID(ctx, boatID); err != nil {
		return nil, fmt.Errorf("service.DocumentService.ListByBoat: %w", err)
	}
	docs, err := s.docs.ListByBoat(ctx, boatID)
	if err != nil {
		return nil, fmt.Errorf("service.DocumentService.ListByBoat: %w", err)
	}
	return nonNil(docs), nil
}

// Rename changes the display name of a document.
func (s *DocumentService) Rename(ctx context.Context, boatID, docID uuid.UUID, name string) (domain.Document, error) {
	name, err := required("name", name)
	if err != nil {
		return domain.Document{}, err
	}
	if _, err := s.owned(ctx, boatID, docID); err != nil {
		return domain.Document{}, fmt.Errorf("service.DocumentService.Rename: %w", err)
	}
	doc, err := s.docs.Rename(ctx, docID, name)
	if err != nil {
		return domain.Document{}, fmt.Errorf("service.DocumentService.Rename: %w", err)
	}
	return doc, nil
}

// Delete removes the record, then the stored file.
func (s *DocumentService) Delete(ctx context.Context, boatID, docID uuid.UUID) error {
	doc, err := s.owned(ctx, boatID, docID)
	if err != nil {
		return fmt.Errorf("service.DocumentService.Delete: %w", err)
	}
	if err := s.docs.Delete(ctx, docID); err != nil {
		return fmt.Errorf("service.DocumentService.Delete: %w", err)
	}
	s.removeFile(ctx, doc.FileName)
	return nil
}

// Open streams a stored document by file name. The caller must close it.
func (s *DocumentService) Open(ctx context.Context, fileName string) (io.ReadCloser, error) {
	rc, err := s.store.Open(ctx, storage.FolderDocuments, fileName)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
		return nil, fmt.Errorf("%w: document %q", domain.ErrNotFound, fileName)
	}
	if err != nil {
		return nil, fmt.Errorf("service.DocumentService.Open: %w", err)
	}
	return rc, nil
}

// owned returns the document only if it belongs to boatID.
func (s *DocumentService) owned(ctx context.Context, boatID, docID uuid.UUID) (domain.Document, error) {
	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return domain.Document{}, err
	}
	if doc.BoatID != boatID {
		return domain.Document{}, domain.ErrNotFound
	}
	return doc, nil
}

func (s *DocumentService) removeFile(ctx context.Context, name string) {
	if err := s.store.Delete(ctx, storage.FolderDocuments, name); err != nil {
		s.log.WarnContext(ctx, "document file not removed", "file", name, "error", err)
	}
}
