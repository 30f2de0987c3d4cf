package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/uphy/postfeed/generator"
	"github.com/uphy/postfeed/logger"
	"go.uber.org/zap"
)

// NewServer returns an echo instance serving the feed at endpoint.
func NewServer(gen *generator.FeedGenerator, endpoint string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(requestLogger)
	e.GET(endpoint, feedHandler(gen))
	return e
}

func feedHandler(gen *generator.FeedGenerator) echo.HandlerFunc {
	return func(c echo.Context) error {
		format := c.QueryParam("format")
		if format == "" {
			format = "rss"
		}
		origin := gen.Origin(c.Scheme() + "://" + c.Request().Host)

		result, err := generateFeed(c.Request().Context(), gen, origin, format)
		if err != nil {
			var unsupported UnsupportedFormatError
			if errors.As(err, &unsupported) {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			logger.L.Errorw("failed to generate feed", "format", format, "origin", origin, "err", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate feed").SetInternal(err)
		}
		return c.Blob(http.StatusOK, result.ContentType, []byte(result.Result))
	}
}

func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		logger.Z.Info("request",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Int("status", c.Response().Status),
			zap.Duration("latency", time.Since(start)),
		)
		return nil
	}
}
