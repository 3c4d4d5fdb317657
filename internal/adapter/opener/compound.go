// Package opener resolves dataset paths to readable streams: local files,
// http(s) URLs and s3://bucket/key objects.
package opener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"credapp/internal/usecase/dataset"
)

var _ dataset.Opener = (*CompoundOpener)(nil)

// ErrSourceDisabled is returned for a path whose scheme has no opener.
var ErrSourceDisabled = errors.New("dataset source not enabled")

type CompoundOpener struct {
	File *FileOpener
	HTTP *HTTPOpener
	S3   *S3Opener
}

func NewCompoundOpener(fileOp *FileOpener, httpOp *HTTPOpener, s3Op *S3Opener) *CompoundOpener {
	return &CompoundOpener{File: fileOp, HTTP: httpOp, S3: s3Op}
}

func (c *CompoundOpener) Open(ctx context.Context, filePath string) (io.ReadCloser, dataset.Meta, error) {
	fp := strings.TrimSpace(filePath)

	switch {
	case strings.HasPrefix(fp, "http://") || strings.HasPrefix(fp, "https://"):
		if c.HTTP == nil {
			return nil, dataset.Meta{}, fmt.Errorf("%w: http", ErrSourceDisabled)
		}
		return c.HTTP.Open(ctx, fp)

	case strings.HasPrefix(fp, "s3://"):
		if c.S3 == nil {
			return nil, dataset.Meta{}, fmt.Errorf("%w: s3", ErrSourceDisabled)
		}
		bkt, key, err := parseS3URL(fp)
		if err != nil {
			return nil, dataset.Meta{}, err
		}
		return c.S3.Open(ctx, bkt, key)

	default:
		if c.File == nil {
			return nil, dataset.Meta{}, fmt.Errorf("%w: file", ErrSourceDisabled)
		}
		return c.File.Open(ctx, fp)
	}
}

func parseS3URL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "s3" {
		return "", "", errors.New("scheme must be s3")
	}
	bucket = u.Host
	key = path.Clean(strings.TrimPrefix(u.Path, "/"))
	if bucket == "" || key == "" || key == "." || key == "/" {
		return "", "", errors.New("empty bucket or key")
	}
	return bucket, key, nil
}
