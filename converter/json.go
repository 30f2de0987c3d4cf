package converter

import "github.com/gorilla/feeds"

type jsonConverter struct {
}

func (c *jsonConverter) Convert(feed *feeds.Feed) (*Result, error) {
	json, err := feed.ToJSON()
	if err != nil {
		return nil, &SerializationError{"json", err}
	}
	return newResult("application/feed+json", json), nil
}
