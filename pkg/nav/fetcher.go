package nav

import (
	"context"
	"io"
	"net/http"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

// Response is a fetched data-request response.
type Response struct {
	StatusCode  int
	ContentType string
	Body        string
}

// Fetcher retrieves serialized page context from the server. Injectable so
// transports other than plain HTTP (and tests) can supply responses.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// HTTPFetcher fetches page context over HTTP.
type HTTPFetcher struct {
	// BaseURL is prepended to every fetched URL, e.g. "https://example.com".
	BaseURL string

	// Client defaults to http.DefaultClient.
	Client *http.Client
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+url, nil)
	if err != nil {
		return nil, errors.Transport("building the page context request failed").Wrap(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Transport("requesting %s failed", url).Wrap(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Transport("reading the page context response failed").Wrap(err)
	}
	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        string(body),
	}, nil
}
