package dataset

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/observability"
	apperrors "github.com/mBrond/chat-medicamentos/pkg/errors"
	"github.com/mBrond/chat-medicamentos/pkg/retry"
)

const (
	defaultDownloadTimeout = 20 * time.Second
	xlsxContentType        = "spreadsheetml"
)

// HTTPSource downloads the dataset (CSV or XLSX) on every Load
type HTTPSource struct {
	url    string
	sheet  string
	client *resty.Client
	retry  retry.Config
}

// NewHTTPSource creates a source for a published spreadsheet URL
func NewHTTPSource(rawURL, sheet string) *HTTPSource {
	return NewHTTPSourceWithClient(rawURL, sheet, resty.New().SetTimeout(defaultDownloadTimeout))
}

// NewHTTPSourceWithClient allows overriding the resty client (used for tests)
func NewHTTPSourceWithClient(rawURL, sheet string, client *resty.Client) *HTTPSource {
	return &HTTPSource{
		url:    rawURL,
		sheet:  sheet,
		client: client,
		retry:  retry.RequestConfig(),
	}
}

// Load downloads and parses the document. Server errors are retried; client
// errors and malformed documents are not.
func (s *HTTPSource) Load(ctx context.Context) (*entities.Dataset, error) {
	var body []byte
	var contentType string

	err := retry.DoWithLog(ctx, s.retry, "dataset download", func() error {
		resp, err := s.client.R().SetContext(ctx).Get(s.url)
		if err != nil {
			return err
		}
		switch {
		case resp.StatusCode() >= 500:
			return fmt.Errorf("dataset server returned status %d", resp.StatusCode())
		case !resp.IsSuccess():
			return retry.Permanent(fmt.Errorf("dataset server returned status %d", resp.StatusCode()))
		}
		body = resp.Body()
		contentType = resp.Header().Get("Content-Type")
		return nil
	}, func(attempt int, err error, nextDelay time.Duration) {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("next_delay", nextDelay).
			Str("url", s.url).
			Msg("dataset download failed, retrying")
	})
	if err != nil {
		return nil, apperrors.NewDataLoadError(fmt.Sprintf("failed to download dataset %s", s.url), err)
	}

	if isSpreadsheet(s.url, contentType) {
		return ParseXLSX(s.url, bytes.NewReader(body), s.sheet)
	}
	return ParseCSV(s.url, bytes.NewReader(body))
}

func isSpreadsheet(rawURL, contentType string) bool {
	if strings.Contains(contentType, xlsxContentType) {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(path.Ext(u.Path), ".xlsx")
}
