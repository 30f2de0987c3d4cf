package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/uphy/postfeed/config"
	"github.com/uphy/postfeed/generator/content"
	"github.com/uphy/postfeed/repo"
)

type (
	// Item is the public projection of a post. Only these fields reach a feed.
	Item struct {
		Title       string
		Description string
		PublishDate time.Time
		// Link is relative to the site origin.
		Link    string
		Content string
	}

	Options struct {
		Collection    string
		Content       bool
		Summary       bool
		SummaryLength int
		Limit         int
	}

	FeedGenerator struct {
		site     config.Site
		store    repo.Store
		options  Options
		renderer *content.Renderer
	}

	// StoreFetchError reports that the collection could not be read.
	StoreFetchError struct {
		Collection string
		Err        error
	}
)

func (e *StoreFetchError) Error() string {
	return fmt.Sprintf("failed to fetch collection: collection=%s, err=%s", e.Collection, e.Err)
}

func (e *StoreFetchError) Unwrap() error {
	return e.Err
}

func NewOptions(c config.FeedConfig) Options {
	return Options{
		Collection:    c.Collection,
		Content:       c.Content,
		Summary:       c.Summary,
		SummaryLength: c.SummaryLength,
		Limit:         c.Limit,
	}
}

func New(site config.Site, store repo.Store, options Options) *FeedGenerator {
	if options.Collection == "" {
		options.Collection = config.DefaultCollection
	}
	if options.SummaryLength <= 0 {
		options.SummaryLength = config.DefaultSummaryLength
	}
	return &FeedGenerator{
		site:     site,
		store:    store,
		options:  options,
		renderer: content.NewRenderer(),
	}
}

// PostLink is the site relative link of the post with the given slug.
func PostLink(slug string) string {
	return "/post/" + slug + "/"
}

// Origin returns the configured site URL, or requestOrigin when none is set.
func (g *FeedGenerator) Origin(requestOrigin string) string {
	if g.site.URL != "" {
		return g.site.URL
	}
	return strings.TrimSuffix(requestOrigin, "/")
}

// Items lists the collection and projects every post, keeping store order.
func (g *FeedGenerator) Items(ctx context.Context) ([]Item, error) {
	posts, err := g.store.ListCollection(ctx, g.options.Collection)
	if err != nil {
		return nil, &StoreFetchError{g.options.Collection, err}
	}
	if g.options.Limit > 0 && len(posts) > g.options.Limit {
		posts = posts[:g.options.Limit]
	}
	items := make([]Item, 0, len(posts))
	for _, post := range posts {
		item, err := g.Project(post)
		if err != nil {
			return nil, &StoreFetchError{g.options.Collection, err}
		}
		items = append(items, item)
	}
	return items, nil
}

// Project copies the feed fields of post and derives its link.
func (g *FeedGenerator) Project(post repo.Post) (Item, error) {
	if err := post.Validate(); err != nil {
		return Item{}, err
	}
	item := Item{
		Title:       post.Title,
		Description: post.Description,
		PublishDate: post.PublishDate,
		Link:        PostLink(post.Slug),
	}
	if g.options.Summary && item.Description == "" && post.Body != "" {
		summary, err := g.renderer.Summary(post.Body, g.options.SummaryLength)
		if err != nil {
			return Item{}, fmt.Errorf("%w: slug=%s, err=%s", repo.ErrMalformedEntry, post.Slug, err)
		}
		item.Description = summary
	}
	if g.options.Content && post.Body != "" {
		html, err := g.renderer.HTML(post.Body)
		if err != nil {
			return Item{}, fmt.Errorf("%w: slug=%s, err=%s", repo.ErrMalformedEntry, post.Slug, err)
		}
		item.Content = html
	}
	return item, nil
}

// Generate builds the feed for the given origin. The result only depends on
// the store contents and origin, so repeated calls serialize identically.
func (g *FeedGenerator) Generate(ctx context.Context, origin string) (*feeds.Feed, error) {
	items, err := g.Items(ctx)
	if err != nil {
		return nil, err
	}
	origin = strings.TrimSuffix(origin, "/")

	feed := &feeds.Feed{
		Title:       g.site.Title,
		Description: g.site.Description,
		Link:        &feeds.Link{Href: origin},
		Items:       make([]*feeds.Item, 0, len(items)),
	}
	for _, item := range items {
		link := origin + item.Link
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          link,
			Title:       item.Title,
			Description: item.Description,
			Link:        &feeds.Link{Href: link},
			Created:     item.PublishDate,
			Content:     item.Content,
		})
	}
	return feed, nil
}
