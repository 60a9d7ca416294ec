package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local stores files on the local filesystem under root/<folder>/.
type Local struct {
	root string
}

// NewLocal creates root and the application folders if they do not exist.
func NewLocal(root string) (*Local, error) {
	for _, folder := range []string{FolderReceipts, FolderDocuments} {
		if err := os.MkdirAll(filepath.Join(root, folder), 0o755); err != nil {
			return nil, fmt.Errorf("storage.NewLocal: create %s: %w", folder, err)
		}
	}
	return &Local{root: root}, nil
}

func (l *Local) Save(ctx context.Context, folder, ext string, r io.Reader) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	if !validExt(ext) {
		return Object{}, fmt.Errorf("storage.Local.Save: %w: extension %q", ErrInvalidName, ext)
	}
	dir, err := l.dir(folder)
	if err != nil {
		return Object{}, fmt.Errorf("storage.Local.Save: %w", err)
	}

	name := uuid.NewString() + strings.ToLower(ext)

	// Write to a temp file and rename so readers never see a partial file.
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return Object{}, fmt.Errorf("storage.Local.Save: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	size, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return Object{}, fmt.Errorf("storage.Local.Save: write: %w", err)
	}
	if size == 0 {
		return Object{}, ErrEmpty
	}

	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		return Object{}, fmt.Errorf("storage.Local.Save: rename: %w", err)
	}
	return Object{Folder: folder, Name: name, Size: size}, nil
}

func (l *Local) Open(ctx context.Context, folder, name string) (io.ReadCloser, error) {
	path, err := l.path(folder, name)
	if err != nil {
		return nil, fmt.Errorf("storage.Local.Open: %w", err)
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage.Local.Open: %w", err)
	}
	return f, nil
}

func (l *Local) Delete(ctx context.Context, folder, name string) error {
	path, err := l.path(folder, name)
	if err != nil {
		return fmt.Errorf("storage.Local.Delete: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage.Local.Delete: %w", err)
	}
	return nil
}

func (l *Local) dir(folder string) (string, error) {
	if folder != FolderReceipts && folder != FolderDocuments {
		return "", fmt.Errorf("%w: folder %q", ErrInvalidName, folder)
	}
	return filepath.Join(l.root, folder), nil
}

// path rejects anything that is not a plain file name inside folder.
func (l *Local) path(folder, name string) (string, error) {
	dir, err := l.dir(folder)
	if err != nil {
		return "", err
	}
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(dir, name), nil
}

func validExt(ext string) bool {
	if ext == "" {
		return true
	}
	if len(ext) > 10 || ext[0] != '.' {
		return false
	}
	for _, c := range ext[1:] {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
