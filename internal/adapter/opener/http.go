package opener

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"credapp/internal/infrastructure/logging"
	"credapp/internal/usecase/dataset"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type HTTPOpener struct {
	Client *http.Client
	log    zerolog.Logger
}

func NewHTTPOpener(cli *http.Client) *HTTPOpener {
	if cli == nil {
		cli = &http.Client{}
	}
	return &HTTPOpener{Client: cli, log: logging.Component(log.Logger, "opener")}
}

func (h *HTTPOpener) Open(ctx context.Context, url string) (io.ReadCloser, dataset.Meta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, dataset.Meta{}, err
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, dataset.Meta{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		h.log.Warn().Str("url", url).Int("status", resp.StatusCode).Msg("dataset download failed")
		return nil, dataset.Meta{}, fmt.Errorf("http status %d", resp.StatusCode)
	}
	size := resp.ContentLength
	if size < 0 {
		size = -1
	}
	return resp.Body, dataset.Meta{
		Source:      "https",
		ContentType: resp.Header.Get("Content-Type"),
		Size:        size,
	}, nil
}
