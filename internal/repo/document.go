package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// DocumentRepo defines the persistence operations for boat documents.
// File bytes live in storage; this repo only tracks metadata.
type DocumentRepo interface {
	Create(ctx context.Context, d domain.Document) (domain.Document, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Document, error)

	// ListByBoat returns a boat's documents, newest first.
	ListByBoat(ctx context.Context, boatID uuid.UUID) ([]domain.Document, error)

	Rename(ctx context.Context, id uuid.UUID, name string) (domain.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgDocumentRepo struct {
	db db
}

// NewDocumentRepo constructs a DocumentRepo backed by the provided db connection.
func NewDocumentRepo(db db) DocumentRepo {
	return &pgDocumentRepo{db: db}
}

const documentColumns = `id, boat_id, name, url, file_name, content_type, size, created_at`

func (r *pgDocumentRepo) Create(ctx context.Context, d domain.Document) (domain.Document, error) {
	const q = `
		INSERT INTO documents (boat_id, name, url, file_name, content_type, size)
		VALUES (@boat_id, @name, @url, @file_name, @content_type, @size)
		RETURNING ` + documentColumns

	args := pgx.NamedArgs{
		"boat_id":      d.BoatID,
		"name":         d.Name,
		"url":          d.URL,
		"file_name":    d.FileName,
		"content_type": d.ContentType,
		"size":         d.Size,
	}

	result, err := scanDocument(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Document{}, fmt.Errorf("repo.DocumentRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgDocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = @id`

	result, err := scanDocument(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Document{}, fmt.Errorf("repo.DocumentRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgDocumentRepo) ListByBoat(ctx context.Context, boatID uuid.UUID) ([]domain.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE boat_id = @boat_id ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"boat_id": boatID})
	if err != nil {
		return nil, fmt.Errorf("repo.DocumentRepo.ListByBoat: %w", err)
	}
	out, err := collect(rows, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("repo.DocumentRepo.ListByBoat: %w", err)
	}
	return out, nil
}

func (r *pgDocumentRepo) Rename(ctx context.Context, id uuid.UUID, name string) (domain.Document, error) {
	const q = `UPDATE documents SET name = @name WHERE id = @id RETURNING ` + documentColumns

	result, err := scanDocument(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "name": name}))
	if err != nil {
		return domain.Document{}, fmt.Errorf("repo.DocumentRepo.Rename: %w", err)
	}
	return result, nil
}

func (r *pgDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM documents WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.DocumentRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.DocumentRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanDocument(s scanner) (domain.Document, error) {
	var (
		d      domain.Document
		id     pgtype.UUID
		boatID pgtype.UUID
	)

	err := s.Scan(&id, &boatID, &d.Name, &d.URL, &d.FileName, &d.ContentType, &d.Size, &d.CreatedAt)
	if err != nil {
		return domain.Document{}, mapErr(err)
	}

	d.ID = uuid.UUID(id.Bytes)
	d.BoatID = uuid.UUID(boatID.Bytes)
	return d, nil
}
