package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uphy/postfeed/config"
	"github.com/uphy/postfeed/generator"
	"github.com/uphy/postfeed/repo"
)

var testSite = config.Site{Title: "My <Blog>", Description: "Posts & notes"}

func newTestServer(t *testing.T, site config.Site, posts ...repo.Post) (*echo.Echo, *repo.MemoryRepository) {
	t.Helper()
	store := repo.NewMemoryRepository()
	require.NoError(t, store.PutCollection(context.Background(), config.DefaultCollection, posts))
	gen := generator.New(site, store, generator.Options{})
	return NewServer(gen, config.DefaultEndpoint), store
}

func testPost(slug, title, description string, day int) repo.Post {
	return repo.Post{
		Title:       title,
		Slug:        slug,
		Description: description,
		PublishDate: time.Date(2024, 3, day, 10, 0, 0, 0, time.UTC),
	}
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestFeedEndpoint(t *testing.T) {
	posts := []repo.Post{
		testPost("zeta", "Zeta & <friends>", "Last > first", 3),
		testPost("alpha", "Alpha", "", 1),
		testPost("2024/mid", "Mid", "middle", 2),
	}
	e, _ := newTestServer(t, testSite, posts...)

	rec := get(e, "/rss.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get(echo.HeaderContentType))

	body := rec.Body.String()
	assert.Equal(t, len(posts), strings.Count(body, "<item>"))
	assert.Contains(t, body, "<title>Zeta &amp; &lt;friends&gt;</title>")
	assert.Contains(t, body, "<description>Last &gt; first</description>")
	assert.Contains(t, body, "<link>http://example.com/post/zeta/</link>")
	assert.NotContains(t, body, "//post")

	parsed, err := gofeed.NewParser().ParseString(body)
	require.NoError(t, err)
	assert.Equal(t, testSite.Title, parsed.Title)
	assert.Equal(t, testSite.Description, parsed.Description)
	assert.Equal(t, "http://example.com", parsed.Link)
	require.Len(t, parsed.Items, len(posts))
	for i, p := range posts {
		assert.Equal(t, p.Title, parsed.Items[i].Title)
		assert.Equal(t, "http://example.com/post/"+p.Slug+"/", parsed.Items[i].Link)
		assert.Equal(t, p.Description, parsed.Items[i].Description)
		require.NotNil(t, parsed.Items[i].PublishedParsed)
		assert.True(t, p.PublishDate.Equal(*parsed.Items[i].PublishedParsed))
	}
}

func TestFeedEndpointIdempotent(t *testing.T) {
	e, _ := newTestServer(t, testSite, testPost("a", "A", "a", 1), testPost("b", "B", "b", 2))
	first := get(e, "/rss.xml")
	second := get(e, "/rss.xml")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestFeedEndpointEmpty(t *testing.T) {
	e, _ := newTestServer(t, testSite)
	rec := get(e, "/rss.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<channel>")
	assert.NotContains(t, rec.Body.String(), "<item>")
}

func TestFeedEndpointSiteURL(t *testing.T) {
	site := testSite
	site.URL = "https://blog.example.org"
	e, _ := newTestServer(t, site, testPost("hello", "Hello", "", 1))

	rec := get(e, "/rss.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<link>https://blog.example.org</link>")
	assert.Contains(t, rec.Body.String(), "<link>https://blog.example.org/post/hello/</link>")
}

func TestFeedEndpointForwardedScheme(t *testing.T) {
	e, _ := newTestServer(t, testSite, testPost("hello", "Hello", "", 1))
	req := httptest.NewRequest(http.MethodGet, "/rss.xml", nil)
	req.Host = "blog.example.org"
	req.Header.Set(echo.HeaderXForwardedProto, "https")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<link>https://blog.example.org/post/hello/</link>")
}

func TestFeedEndpointFormats(t *testing.T) {
	e, _ := newTestServer(t, testSite, testPost("a", "A", "a", 1))

	rec := get(e, "/rss.xml?format=atom")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<feed xmlns=\"http://www.w3.org/2005/Atom\"")

	rec = get(e, "/rss.xml?format=json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/feed+json", rec.Header().Get(echo.HeaderContentType))

	rec = get(e, "/rss.xml?format=html")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedEndpointStoreUnavailable(t *testing.T) {
	e, store := newTestServer(t, testSite, testPost("a", "A", "a", 1))
	require.NoError(t, store.Close())

	rec := get(e, "/rss.xml")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<rss")
}

func TestFeedEndpointMalformedEntry(t *testing.T) {
	e, _ := newTestServer(t, testSite, testPost("", "No slug", "", 1))
	rec := get(e, "/rss.xml")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	e, _ := newTestServer(t, testSite)
	assert.Equal(t, http.StatusNotFound, get(e, "/feed.xml").Code)
	req := httptest.NewRequest(http.MethodPost, "/rss.xml", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
