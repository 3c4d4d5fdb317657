package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var (
	ErrUnknownFormat = errors.New("unknown dataset format")
	ErrMissingColumn = errors.New("missing dataset column")
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	DefaultBatchSize = 500
	MaxBatchSize     = 5000
)

// Meta describes an opened source.
type Meta struct {
	Source      string
	ContentType string
	Size        int64
	Bucket      string
	Key         string
}

// Opener resolves a dataset path (local file, http(s) URL or s3://bucket/key).
type Opener interface {
	Open(ctx context.Context, path string) (io.ReadCloser, Meta, error)
}

type Request struct {
	Path      string `json:"caminho" validate:"required"`
	BatchSize int    `json:"batch_size" validate:"omitempty,gte=1,lte=5000"`
}

type Result struct {
	Source      string `json:"source"`
	Path        string `json:"path"`
	Format      string `json:"format"`
	Rows        int    `json:"rows"`
	SHA256      string `json:"sha256"`
	ContentType string `json:"content_type,omitempty"`
	Bucket      string `json:"bucket,omitempty"`
	Key         string `json:"key,omitempty"`
	SizeBytes   int64  `json:"size_bytes"`
}

// RowError reports the first row that could not be decoded. Row counts data
// rows from 1, not counting the header.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }
