package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

var (
	// ErrNotAvailable is returned when the content store cannot be reached.
	ErrNotAvailable = errors.New("content store not available")
	// ErrMalformedEntry is returned when an entry cannot be read as a post.
	ErrMalformedEntry = errors.New("malformed content entry")
)

type (
	// Post is a single entry of a content collection.
	Post struct {
		Title       string    `json:"title"`
		Slug        string    `json:"slug"`
		PublishDate time.Time `json:"pubDate"`
		Description string    `json:"description,omitempty"`
		Body        string    `json:"body,omitempty"`
	}

	// Store lists the entries of a named collection in the store's own order.
	Store interface {
		io.Closer
		ListCollection(ctx context.Context, name string) ([]Post, error)
	}

	// WritableStore is a Store that can replace a whole collection.
	WritableStore interface {
		Store
		PutCollection(ctx context.Context, name string, posts []Post) error
	}
)

// Validate reports whether p has the fields every feed item needs.
func (p *Post) Validate() error {
	if p.Slug == "" {
		return fmt.Errorf("%w: empty slug: title=%q", ErrMalformedEntry, p.Title)
	}
	// the slug is placed between slashes in the post link
	if strings.HasPrefix(p.Slug, "/") || strings.HasSuffix(p.Slug, "/") || strings.Contains(p.Slug, "//") {
		return fmt.Errorf("%w: slug must not start or end with '/' or contain an empty segment: slug=%s", ErrMalformedEntry, p.Slug)
	}
	if p.Title == "" {
		return fmt.Errorf("%w: empty title: slug=%s", ErrMalformedEntry, p.Slug)
	}
	if p.PublishDate.IsZero() {
		return fmt.Errorf("%w: missing publish date: slug=%s", ErrMalformedEntry, p.Slug)
	}
	return nil
}

func notAvailable(err error) error {
	return fmt.Errorf("%w: %s", ErrNotAvailable, err)
}
