package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/AngelCh415/campaign-metrics/internal/utils"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

// Download is a remote file pulled by Fetch.
type Download struct {
	Name string
	Data []byte
}

// Fetch downloads rawURL, retrying transport errors and 5xx responses with
// b. Other non-2xx statuses fail at once. Bodies above maxBytes are refused.
func Fetch(ctx context.Context, c HTTPClient, rawURL string, maxBytes int64, b utils.Backoff) (Download, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Download{}, fmt.Errorf("invalid url %q", rawURL)
	}
	var dl Download
	err = b.Do(ctx, func(int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return utils.Permanent(err)
		}
		resp, err := c.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			err := fmt.Errorf("non-2xx: %d body=%s", resp.StatusCode, string(body))
			if resp.StatusCode >= 500 {
				return err
			}
			return utils.Permanent(err)
		}
		data, err := readLimited(resp.Body, maxBytes)
		if err != nil {
			if errors.Is(err, ErrTooLarge) {
				return utils.Permanent(err)
			}
			return err
		}
		dl = Download{Name: fileName(u, resp.Header), Data: data}
		return nil
	})
	if err != nil {
		return Download{}, fmt.Errorf("fetch %s: %w", u.Redacted(), err)
	}
	return dl, nil
}

// fileName prefers the Content-Disposition name, then the URL path.
func fileName(u *url.URL, h http.Header) string {
	if _, params, err := mime.ParseMediaType(h.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		return path.Base(params["filename"])
	}
	if base := path.Base(u.Path); base != "." && base != "/" {
		return base
	}
	return "download.csv"
}
