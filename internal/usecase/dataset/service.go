package dataset

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"io"
	"mime"
	"net/url"
	"path"
	"strings"
	"time"

	"credapp/internal/domain/client"
	"credapp/internal/domain/uow"
	"credapp/internal/infrastructure/logging"
	"credapp/internal/infrastructure/metrics"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

var zipMagic = []byte("PK\x03\x04")

// Invalidator drops derived data once the registry changes.
type Invalidator interface {
	InvalidateStats(ctx context.Context) error
}

// Service loads client datasets into the registry. Every import runs in a
// single unit of work, so a bad row leaves the registry untouched.
type Service struct {
	opener      Opener
	uow         uow.UnitOfWork
	clients     client.Repository
	invalidator Invalidator
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

func NewService(o Opener, u uow.UnitOfWork, clients client.Repository, inv Invalidator, m *metrics.Metrics) *Service {
	return &Service{
		opener:      o,
		uow:         u,
		clients:     clients,
		invalidator: inv,
		metrics:     m,
		log:         logging.Component(log.Logger, "dataset"),
	}
}

func (s *Service) Import(ctx context.Context, req Request) (Result, error) {
	t0 := time.Now()
	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if batchSize > MaxBatchSize {
		batchSize = MaxBatchSize
	}

	rc, meta, err := s.opener.Open(ctx, req.Path)
	if err != nil {
		return Result{}, err
	}
	defer rc.Close()

	hasher := sha256.New()
	br := bufio.NewReader(io.TeeReader(rc, hasher))

	format := detectFormat(req.Path, meta.ContentType)
	if format == "" {
		format = sniffFormat(br)
	}

	var total int
	err = s.uow.WithinTx(ctx, func(r uow.Repos) error {
		write := func(batch []client.Client) error {
			return r.Clients.CreateBatch(ctx, batch, batchSize)
		}
		var err error
		switch format {
		case FormatCSV:
			total, err = streamCSV(br, batchSize, write)
		case FormatXLSX:
			total, err = streamXLSXFirstSheet(br, batchSize, write)
		default:
			err = ErrUnknownFormat
		}
		return err
	})
	if err != nil {
		s.log.Error().Err(err).Str("path", req.Path).Str("format", format).Msg("dataset import failed")
		return Result{}, err
	}
	// drain what the parser left unread so the digest covers the whole file
	_, _ = io.Copy(io.Discard, br)

	s.metrics.AddImportedRows(format, total)
	if s.invalidator != nil {
		if err := s.invalidator.InvalidateStats(ctx); err != nil {
			s.log.Warn().Err(err).Msg("stats invalidation failed")
		}
	}

	s.log.Info().
		Str("path", req.Path).
		Str("format", format).
		Int("rows", total).
		Dur("took", time.Since(t0)).
		Msg("dataset imported")

	return Result{
		Source:      meta.Source,
		Path:        req.Path,
		Format:      format,
		Rows:        total,
		SHA256:      hex.EncodeToString(hasher.Sum(nil)),
		ContentType: meta.ContentType,
		Bucket:      meta.Bucket,
		Key:         meta.Key,
		SizeBytes:   meta.Size,
	}, nil
}

// SeedIfEmpty imports path when the registry has no clients. imported is
// false when the registry was already populated or path is empty.
func (s *Service) SeedIfEmpty(ctx context.Context, path string) (res Result, imported bool, err error) {
	if strings.TrimSpace(path) == "" {
		return Result{}, false, nil
	}
	n, err := s.clients.Count(ctx)
	if err != nil {
		return Result{}, false, err
	}
	if n > 0 {
		s.log.Info().Int64("clients", n).Msg("registry already populated, skipping dataset")
		return Result{}, false, nil
	}
	res, err = s.Import(ctx, Request{Path: path})
	if err != nil {
		return Result{}, false, err
	}
	return res, true, nil
}

func streamCSV(r io.Reader, batchSize int, write func([]client.Client) error) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if err := checkHeader(header); err != nil {
		return 0, err
	}

	b := newBatcher(batchSize, write)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return b.total, &RowError{Row: b.seen + 1, Err: err}
		}
		if err := b.add(toMap(header, record)); err != nil {
			return b.total, err
		}
	}
	return b.flush()
}

func streamXLSXFirstSheet(r io.Reader, batchSize int, write func([]client.Client) error) (int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, errors.New("xlsx has no sheets")
	}
	rows, err := f.Rows(sheets[0])
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	if !rows.Next() {
		return 0, rows.Error()
	}
	header, err := rows.Columns()
	if err != nil {
		return 0, err
	}
	if err := checkHeader(header); err != nil {
		return 0, err
	}

	b := newBatcher(batchSize, write)
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return b.total, &RowError{Row: b.seen + 1, Err: err}
		}
		if isBlank(cols) {
			continue
		}
		if err := b.add(toMap(header, cols)); err != nil {
			return b.total, err
		}
	}
	if err := rows.Error(); err != nil {
		return b.total, err
	}
	return b.flush()
}

type batcher struct {
	size  int
	write func([]client.Client) error
	batch []client.Client
	seen  int
	total int
}

func newBatcher(size int, write func([]client.Client) error) *batcher {
	return &batcher{size: size, write: write, batch: make([]client.Client, 0, size)}
}

func (b *batcher) add(row map[string]string) error {
	b.seen++
	c, err := decodeRow(row)
	if err != nil {
		return &RowError{Row: b.seen, Err: err}
	}
	b.batch = append(b.batch, c)
	if len(b.batch) >= b.size {
		_, err := b.flush()
		return err
	}
	return nil
}

func (b *batcher) flush() (int, error) {
	if len(b.batch) == 0 {
		return b.total, nil
	}
	if err := b.write(b.batch); err != nil {
		return b.total, err
	}
	b.total += len(b.batch)
	b.batch = b.batch[:0]
	return b.total, nil
}

func isBlank(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func detectFormat(filePath, contentType string) string {
	p := filePath
	if u, err := url.Parse(filePath); err == nil && u != nil && u.Path != "" {
		p = u.Path
	}
	switch strings.ToLower(strings.TrimPrefix(path.Ext(p), ".")) {
	case FormatXLSX:
		return FormatXLSX
	case FormatCSV:
		return FormatCSV
	}
	med, _, _ := mime.ParseMediaType(contentType)
	switch med {
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return FormatXLSX
	case "text/csv", "application/csv":
		return FormatCSV
	}
	return ""
}

// sniffFormat treats zip archives as xlsx and anything else as csv.
func sniffFormat(br *bufio.Reader) string {
	head, _ := br.Peek(len(zipMagic))
	if bytes.Equal(head, zipMagic) {
		return FormatXLSX
	}
	return FormatCSV
}
