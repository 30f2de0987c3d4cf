package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	defaultMaxBodySize = 32 << 20
)

type (
	// HTTPRepository reads collections from a JSON endpoint. The collection
	// name is passed as the "collection" query parameter and the response is
	// a JSON array of posts.
	HTTPRepository struct {
		url         string
		client      *http.Client
		maxBodySize int64
	}
)

func NewHTTPRepository(url string, client *http.Client) *HTTPRepository {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTPRepository{url, client, defaultMaxBodySize}
}

func (r *HTTPRepository) ListCollection(ctx context.Context, name string) ([]Post, error) {
	u, err := url.Parse(r.url)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("collection", name)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, notAvailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, notAvailable(fmt.Errorf("unexpected status: url=%s, status=%d", u, resp.StatusCode))
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBodySize+1))
	if err != nil {
		return nil, notAvailable(err)
	}
	if int64(len(b)) > r.maxBodySize {
		return nil, fmt.Errorf("%w: response exceeds %d bytes: url=%s", ErrMalformedEntry, r.maxBodySize, u)
	}

	posts := make([]Post, 0)
	if err := json.Unmarshal(b, &posts); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %s", ErrMalformedEntry, err)
	}
	for i := range posts {
		if err := posts[i].Validate(); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func (r *HTTPRepository) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
