package opener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"credapp/internal/usecase/dataset"
)

var (
	ErrOutsideRoot = errors.New("path outside dataset directory")
	// ErrUnreadable covers every failure to open a local path.
	ErrUnreadable = errors.New("dataset file not readable")
)

// FileOpener reads local files. A non-empty Root confines paths to that
// directory; an empty Root allows any path.
type FileOpener struct{ Root string }

func NewFileOpener(root string) *FileOpener { return &FileOpener{Root: root} }

func (f *FileOpener) Open(ctx context.Context, p string) (io.ReadCloser, dataset.Meta, error) {
	if err := ctx.Err(); err != nil {
		return nil, dataset.Meta{}, err
	}
	resolved, err := f.resolve(p)
	if err != nil {
		return nil, dataset.Meta{}, err
	}
	fh, err := os.Open(resolved)
	if err != nil {
		return nil, dataset.Meta{}, fmt.Errorf("%w: %s", ErrUnreadable, p)
	}
	st, err := fh.Stat()
	if err != nil || st.IsDir() {
		fh.Close()
		return nil, dataset.Meta{}, fmt.Errorf("%w: %s", ErrUnreadable, p)
	}
	return fh, dataset.Meta{
		Source:      "file",
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(resolved))),
		Size:        st.Size(),
	}, nil
}

func (f *FileOpener) resolve(p string) (string, error) {
	if f.Root == "" {
		return filepath.Clean(p), nil
	}
	root, err := filepath.Abs(f.Root)
	if err != nil {
		return "", err
	}
	full := p
	if !filepath.IsAbs(full) {
		full = filepath.Join(root, full)
	}
	full = filepath.Clean(full)
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, p)
	}
	return full, nil
}
