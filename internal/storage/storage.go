// Package storage keeps uploaded files (payment receipts, boat documents).
// The ledger only ever sees the returned Object name; where the bytes live is
// this package's concern.
package storage

import (
	"context"
	"errors"
	"io"
)

// Folders used by the application.
const (
	FolderReceipts  = "receipts"
	FolderDocuments = "documents"
)

// ErrEmpty is returned by Save when the reader produced no bytes.
var ErrEmpty = errors.New("storage: empty file")

// ErrNotFound is returned when a stored file does not exist.
var ErrNotFound = errors.New("storage: file not found")

// ErrInvalidName is returned for names that could escape the folder.
var ErrInvalidName = errors.New("storage: invalid file name")

// Object describes a stored file.
type Object struct {
	Folder string
	Name   string // generated, unique within the folder
	Size   int64
}

// Store is the file storage backend.
type Store interface {
	// Save streams r into a new file in folder. ext (e.g. ".pdf") is appended
	// to the generated name.
	Save(ctx context.Context, folder, ext string, r io.Reader) (Object, error)

	// Open returns the file contents. The caller must close the reader.
	Open(ctx context.Context, folder, name string) (io.ReadCloser, error)

	// Delete removes a file. Deleting a missing file is not an error.
	Delete(ctx context.Context, folder, name string) error
}
