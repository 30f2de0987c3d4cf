package repo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestMarkdownRepository(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b-second.md", `---
title: Second & <last>
description: Tom & Jerry
pubDate: 2024-02-01T09:30:00Z
tags: [a, b]
---
Body of the second post.
`)
	writeFile(t, dir, "a-first.md", `---
title: First
slug: custom-slug
publishDate: 2024-01-01
---
First body.
`)
	writeFile(t, dir, "2023/old_post/index.md", `---
date: "2023-05-06 07:08:09"
---
Old.
`)
	writeFile(t, dir, "notes.txt", "ignored")

	posts, err := NewMarkdownRepository(dir).ListCollection(context.Background(), "post")
	require.NoError(t, err)
	require.Len(t, posts, 3)

	assert.Equal(t, "2023/old_post", posts[0].Slug)
	assert.Equal(t, "Old Post", posts[0].Title)
	assert.Equal(t, time.Date(2023, 5, 6, 7, 8, 9, 0, time.UTC), posts[0].PublishDate)

	assert.Equal(t, "custom-slug", posts[1].Slug)
	assert.Equal(t, "First", posts[1].Title)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), posts[1].PublishDate)
	assert.Equal(t, "", posts[1].Description)
	assert.Contains(t, posts[1].Body, "First body.")

	assert.Equal(t, "b-second", posts[2].Slug)
	assert.Equal(t, "Second & <last>", posts[2].Title)
	assert.Equal(t, "Tom & Jerry", posts[2].Description)
	assert.Equal(t, time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC), posts[2].PublishDate)
}

func TestMarkdownRepositoryCollectionDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "post/hello.md", "---\ntitle: Hello\npubDate: 2024-01-01\n---\n")
	writeFile(t, dir, "page/about.md", "---\ntitle: About\npubDate: 2024-01-01\n---\n")

	posts, err := NewMarkdownRepository(dir).ListCollection(context.Background(), "post")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "hello", posts[0].Slug)
}

func TestMarkdownRepositorySlugSlashes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hello.md", "---\ntitle: Hello\nslug: /hello/\npubDate: 2024-01-01\n---\n")

	posts, err := NewMarkdownRepository(dir).ListCollection(context.Background(), "post")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "hello", posts[0].Slug)

	dir = t.TempDir()
	writeFile(t, dir, "bad.md", "---\ntitle: Bad\nslug: a//b\npubDate: 2024-01-01\n---\n")
	_, err = NewMarkdownRepository(dir).ListCollection(context.Background(), "post")
	assert.True(t, errors.Is(err, ErrMalformedEntry))
}

func TestMarkdownRepositoryEmpty(t *testing.T) {
	posts, err := NewMarkdownRepository(t.TempDir()).ListCollection(context.Background(), "post")
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestMarkdownRepositoryErrors(t *testing.T) {
	_, err := NewMarkdownRepository(filepath.Join(t.TempDir(), "missing")).ListCollection(context.Background(), "post")
	assert.True(t, errors.Is(err, ErrNotAvailable))

	dir := t.TempDir()
	writeFile(t, dir, "no-date.md", "---\ntitle: No date\n---\nbody\n")
	_, err = NewMarkdownRepository(dir).ListCollection(context.Background(), "post")
	assert.True(t, errors.Is(err, ErrMalformedEntry))

	dir = t.TempDir()
	writeFile(t, dir, "bad-date.md", "---\ntitle: Bad\npubDate: yesterday\n---\n")
	_, err = NewMarkdownRepository(dir).ListCollection(context.Background(), "post")
	assert.True(t, errors.Is(err, ErrMalformedEntry))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dir = t.TempDir()
	writeFile(t, dir, "a.md", "---\ntitle: A\npubDate: 2024-01-01\n---\n")
	_, err = NewMarkdownRepository(dir).ListCollection(ctx, "post")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSlugAndTitleFromPath(t *testing.T) {
	assert.Equal(t, "hello-world", slugFromPath("hello-world.md"))
	assert.Equal(t, "2024/hello", slugFromPath(filepath.Join("2024", "hello.md")))
	assert.Equal(t, "series/part-one", slugFromPath(filepath.Join("series", "part-one", "index.md")))
	assert.Equal(t, "index", slugFromPath("index.md"))
	assert.Equal(t, "Hello World", titleFromPath("hello-world.md"))
	assert.Equal(t, "My Post", titleFromPath(filepath.Join("my_post", "index.md")))
}
