package repo

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

type (
	// MarkdownRepository reads collections from a directory of markdown files.
	// The directory itself is one collection; a sub directory named after a
	// collection is used instead when it exists.
	MarkdownRepository struct {
		dir string
	}
	markdownFrontmatter struct {
		Title       string `yaml:"title"`
		Slug        string `yaml:"slug"`
		Description string `yaml:"description"`
		PubDate     string `yaml:"pubDate"`
		PublishDate string `yaml:"publishDate"`
		Date        string `yaml:"date"`
	}
)

func NewMarkdownRepository(dir string) *MarkdownRepository {
	return &MarkdownRepository{dir}
}

func (r *MarkdownRepository) ListCollection(ctx context.Context, name string) ([]Post, error) {
	root := r.dir
	if info, err := os.Stat(filepath.Join(r.dir, name)); err == nil && info.IsDir() {
		root = filepath.Join(r.dir, name)
	}
	if info, err := os.Stat(root); err != nil {
		return nil, notAvailable(err)
	} else if !info.IsDir() {
		return nil, notAvailable(fmt.Errorf("not a directory: %s", root))
	}

	posts := make([]Post, 0)
	// WalkDir visits files in lexical order.
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !isMarkdown(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		post, err := readMarkdownPost(p, rel)
		if err != nil {
			return err
		}
		posts = append(posts, *post)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func isMarkdown(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".markdown"
}

func readMarkdownPost(file string, rel string) (*Post, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, notAvailable(err)
	}
	var fm markdownFrontmatter
	body, err := frontmatter.Parse(bytes.NewReader(b), &fm)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse frontmatter: file=%s, err=%s", ErrMalformedEntry, file, err)
	}

	post := &Post{
		Title:       fm.Title,
		Slug:        strings.Trim(fm.Slug, "/"),
		Description: fm.Description,
		Body:        string(body),
	}
	if post.Slug == "" {
		post.Slug = slugFromPath(rel)
	}
	if post.Title == "" {
		post.Title = titleFromPath(rel)
	}

	dateStr := firstNonEmpty(fm.PubDate, fm.PublishDate, fm.Date)
	if dateStr == "" {
		return nil, fmt.Errorf("%w: missing publish date: file=%s", ErrMalformedEntry, file)
	}
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("%w: file=%s, err=%s", ErrMalformedEntry, file, err)
	}
	post.PublishDate = date

	if err := post.Validate(); err != nil {
		return nil, err
	}
	return post, nil
}

// slugFromPath turns "2024/hello-world.md" into "2024/hello-world". An index
// file takes the name of its directory.
func slugFromPath(rel string) string {
	slug := filepath.ToSlash(rel)
	slug = strings.TrimSuffix(slug, path.Ext(slug))
	if path.Base(slug) == "index" && path.Dir(slug) != "." {
		slug = path.Dir(slug)
	}
	return strings.ToLower(slug)
}

func titleFromPath(rel string) string {
	name := path.Base(slugFromPath(rel))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return cases.Title(language.English).String(name)
}

func parseDate(s string) (time.Time, error) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %s", s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (r *MarkdownRepository) Close() error {
	return nil
}
