package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/uphy/postfeed/config"
	"github.com/uphy/postfeed/converter"
	"github.com/uphy/postfeed/generator"
	"github.com/uphy/postfeed/logger"
	"github.com/uphy/postfeed/repo"
	"github.com/urfave/cli/v2"
)

type App struct {
	app           *cli.App
	config        *config.Config
	repository    repo.Store
	feedGenerator *generator.FeedGenerator
}

func New() *App {
	a := cli.NewApp()
	a.Name = "postfeed"
	a.Usage = "Serve a blog post collection as an RSS feed"
	app := &App{app: a}

	a.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Value:   "config.yml",
		},
		&cli.StringFlag{
			Name:  "env-file",
			Value: ".env",
			Usage: "Environment file loaded before the config, ignored when missing",
		},
		&cli.BoolFlag{
			Name:    "no-store",
			Aliases: []string{"n"},
			Value:   false,
			Usage:   "Use an empty in-memory store instead of the configured one",
		},
	}
	a.Before = func(c *cli.Context) error {
		if err := loadEnvFile(c.String("env-file")); err != nil {
			return err
		}

		// load config
		configFile := c.String("config")
		cnf, err := config.ParseConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config file: configFile=%s, err=%w", configFile, err)
		}
		if err := cnf.Validate(); err != nil {
			return err
		}
		site, err := cnf.Site.ResolveSite()
		if err != nil {
			return err
		}
		app.config = cnf

		if err := logger.Init(logger.Config{
			Level:      cnf.Log.Level,
			File:       cnf.Log.File,
			MaxSize:    cnf.Log.MaxSize,
			MaxBackups: cnf.Log.MaxBackups,
			MaxAge:     cnf.Log.MaxAge,
		}); err != nil {
			return &config.ConfigError{Field: "log", Err: err}
		}

		// load repository
		if c.Bool("no-store") {
			app.repository = repo.NewMemoryRepository()
		} else {
			repository, err := openStore(cnf.Store)
			if err != nil {
				return fmt.Errorf("failed to open store: type=%s, err=%w", cnf.Store.Type, err)
			}
			app.repository = repository
		}

		app.feedGenerator = generator.New(*site, app.repository, generator.NewOptions(cnf.Feed))
		logger.L.Debugw("loaded config", "configFile", configFile, "store", cnf.Store.Type, "collection", cnf.Feed.Collection)
		return nil
	}
	a.After = func(c *cli.Context) error {
		defer logger.Sync()
		if app.repository != nil {
			return app.repository.Close()
		}
		return nil
	}

	a.Commands = []*cli.Command{
		app.generateCommand(),
		app.startServerCommand(),
		app.importCommand(),
	}
	return app
}

func loadEnvFile(file string) error {
	if file == "" {
		return nil
	}
	if _, err := os.Stat(file); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(file); err != nil {
		return fmt.Errorf("failed to load env file: file=%s, err=%w", file, err)
	}
	return nil
}

func openStore(c config.StoreConfig) (repo.Store, error) {
	switch c.Type {
	case "markdown":
		return repo.NewMarkdownRepository(c.Path), nil
	case "badger":
		return repo.NewBadgerRepository(c.Path)
	case "http":
		return repo.NewHTTPRepository(c.URL, nil), nil
	case "memory":
		return repo.NewMemoryRepository(), nil
	}
	return nil, fmt.Errorf("unknown store type: %s", c.Type)
}

func (a *App) generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Print the feed to stdout",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "rss",
				Usage:   "Export format (" + strings.Join(converter.Formats, "/") + ")",
			},
			&cli.StringFlag{
				Name:  "site",
				Usage: "Site origin used when site.url is not configured",
				Value: "http://localhost",
			},
		},
		Action: func(c *cli.Context) error {
			origin := a.feedGenerator.Origin(c.String("site"))
			return a.writeFeed(c.Context, c.App.Writer, origin, c.String("format"))
		},
	}
}

func (a *App) writeFeed(ctx context.Context, w io.Writer, origin string, format string) error {
	result, err := generateFeed(ctx, a.feedGenerator, origin, format)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, result.Result)
	return err
}

// UnsupportedFormatError is returned for a format without a converter.
type UnsupportedFormatError string

func (e UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %s", string(e))
}

func generateFeed(ctx context.Context, gen *generator.FeedGenerator, origin string, format string) (*converter.Result, error) {
	conv := converter.GetConverter(format)
	if conv == nil {
		return nil, UnsupportedFormatError(format)
	}
	feed, err := gen.Generate(ctx, origin)
	if err != nil {
		return nil, err
	}
	return conv.Convert(feed)
}

func (a *App) startServerCommand() *cli.Command {
	return &cli.Command{
		Name:  "start-server",
		Usage: "Serve the feed over HTTP",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				EnvVars: []string{"POSTFEED_PORT"},
			},
		},
		Action: func(c *cli.Context) error {
			port := a.config.Server.Port
			if c.IsSet("port") {
				port = c.Int("port")
			}
			e := NewServer(a.feedGenerator, a.config.Server.Endpoint)
			logger.L.Infow("starting server", "port", port, "endpoint", a.config.Server.Endpoint)
			return e.Start(fmt.Sprintf(":%d", port))
		},
	}
}

func (a *App) importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Copy a markdown directory into the configured store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "from",
				Usage:    "Directory of markdown posts",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			dst, ok := a.repository.(repo.WritableStore)
			if !ok {
				return fmt.Errorf("store does not support import: type=%s", a.config.Store.Type)
			}
			n, err := importCollection(c.Context, repo.NewMarkdownRepository(c.String("from")), dst, a.config.Feed.Collection)
			if err != nil {
				return err
			}
			logger.L.Infow("imported posts", "from", c.String("from"), "collection", a.config.Feed.Collection, "count", n)
			return nil
		},
	}
}

func importCollection(ctx context.Context, src repo.Store, dst repo.WritableStore, collection string) (int, error) {
	posts, err := src.ListCollection(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("failed to read posts: %w", err)
	}
	if err := dst.PutCollection(ctx, collection, posts); err != nil {
		return 0, fmt.Errorf("failed to write posts: %w", err)
	}
	return len(posts), nil
}

func (a *App) Run(args []string) error {
	return a.app.Run(args)
}
