package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/uphy/postfeed/template"
	"gopkg.in/yaml.v2"
)

const (
	DefaultCollection    = "post"
	DefaultEndpoint      = "/rss.xml"
	DefaultPort          = 8080
	DefaultSummaryLength = 200
)

// ErrMissingField is wrapped by a ConfigError when a required value is empty.
var ErrMissingField = errors.New("required field is missing")

type (
	Config struct {
		Site   SiteConfig   `yaml:"site"`
		Store  StoreConfig  `yaml:"store"`
		Feed   FeedConfig   `yaml:"feed"`
		Server ServerConfig `yaml:"server"`
		Log    LogConfig    `yaml:"log"`
	}
	SiteConfig struct {
		Title       template.TemplateField `yaml:"title"`
		Description template.TemplateField `yaml:"description"`
		URL         template.TemplateField `yaml:"url"`
	}
	StoreConfig struct {
		Type string `yaml:"type"`
		Path string `yaml:"path"`
		URL  string `yaml:"url"`
	}
	FeedConfig struct {
		Collection    string `yaml:"collection"`
		Content       bool   `yaml:"content"`
		Summary       bool   `yaml:"summary"`
		SummaryLength int    `yaml:"summaryLength"`
		Limit         int    `yaml:"limit"`
	}
	ServerConfig struct {
		Port     int    `yaml:"port"`
		Endpoint string `yaml:"endpoint"`
	}
	LogConfig struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSize    int    `yaml:"maxSize"`
		MaxBackups int    `yaml:"maxBackups"`
		MaxAge     int    `yaml:"maxAge"`
	}

	// Site is the resolved, immutable site metadata shared by every request.
	Site struct {
		Title       string
		Description string
		// URL is the fixed site origin. Empty means the origin is taken from
		// each request.
		URL string
	}

	// ConfigError reports a missing or malformed configuration value.
	ConfigError struct {
		Field string
		Err   error
	}
)

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid config: %s", e.Err)
	}
	return fmt.Sprintf("invalid config: field=%s, err=%s", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func ParseConfig(file string) (*Config, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	return ParseConfigBytes(b)
}

func ParseConfigBytes(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, &ConfigError{Err: err}
	}
	c.setDefaults()
	return &c, nil
}

func (c *Config) setDefaults() {
	if c.Store.Type == "" {
		c.Store.Type = "markdown"
	}
	if c.Store.Path == "" {
		switch c.Store.Type {
		case "markdown":
			c.Store.Path = "content/post"
		case "badger":
			c.Store.Path = "data"
		}
	}
	if c.Feed.Collection == "" {
		c.Feed.Collection = DefaultCollection
	}
	if c.Feed.SummaryLength <= 0 {
		c.Feed.SummaryLength = DefaultSummaryLength
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Endpoint == "" {
		c.Server.Endpoint = DefaultEndpoint
	}
}

// ResolveSite evaluates the site fields once. Title and description are
// required, and url must be absolute when present.
func (c *SiteConfig) ResolveSite() (*Site, error) {
	ctx := template.NewRootTemplateContext()

	title, err := c.Title.Evaluate(ctx)
	if err != nil {
		return nil, &ConfigError{"site.title", err}
	}
	if title == "" {
		return nil, &ConfigError{"site.title", ErrMissingField}
	}
	ctx.Set("Title", title)

	description, err := c.Description.Evaluate(ctx)
	if err != nil {
		return nil, &ConfigError{"site.description", err}
	}
	if description == "" {
		return nil, &ConfigError{"site.description", ErrMissingField}
	}

	siteURL, err := c.URL.Evaluate(ctx)
	if err != nil {
		return nil, &ConfigError{"site.url", err}
	}
	if siteURL != "" {
		u, err := url.Parse(siteURL)
		if err != nil {
			return nil, &ConfigError{"site.url", err}
		}
		if !u.IsAbs() || u.Host == "" {
			return nil, &ConfigError{"site.url", fmt.Errorf("must be an absolute URL: %s", siteURL)}
		}
	}

	return &Site{
		Title:       title,
		Description: description,
		URL:         strings.TrimSuffix(siteURL, "/"),
	}, nil
}

// Validate checks the non-site sections.
func (c *Config) Validate() error {
	switch c.Store.Type {
	case "markdown", "badger", "memory":
	case "http":
		if c.Store.URL == "" {
			return &ConfigError{"store.url", ErrMissingField}
		}
	default:
		return &ConfigError{"store.type", fmt.Errorf("unknown store type: %s", c.Store.Type)}
	}
	if !strings.HasPrefix(c.Server.Endpoint, "/") {
		return &ConfigError{"server.endpoint", fmt.Errorf("must start with '/': %s", c.Server.Endpoint)}
	}
	if c.Feed.Limit < 0 {
		return &ConfigError{"feed.limit", fmt.Errorf("must not be negative: %d", c.Feed.Limit)}
	}
	return nil
}
