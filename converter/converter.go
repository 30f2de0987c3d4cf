package converter

import (
	"fmt"

	"github.com/gorilla/feeds"
)

type (
	Converter interface {
		Convert(*feeds.Feed) (*Result, error)
	}
	Result struct {
		ContentType string
		Result      string
	}

	// SerializationError reports that a feed could not be encoded.
	SerializationError struct {
		Format string
		Err    error
	}
)

func (e *SerializationError) Error() string {
	return fmt.Sprintf("failed to serialize feed: format=%s, err=%s", e.Format, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// Formats lists the names accepted by GetConverter.
var Formats = []string{"rss", "atom", "json"}

func GetConverter(name string) Converter {
	switch name {
	case "rss":
		return &rssConverter{}
	case "atom":
		return &atomConverter{}
	case "json":
		return &jsonConverter{}
	}
	return nil
}

func newResult(contentType, result string) *Result {
	return &Result{contentType, result}
}
