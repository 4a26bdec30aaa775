package api

import (
	"log/slog"
	"time"

	"github.com/Veraticus/pennywise/internal/i18n"
	"github.com/gin-gonic/gin"
)

const localizerKey = "localizer"

// requestLogger logs each request with slog. Health checks log at debug.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		switch {
		case c.Writer.Status() >= 500:
			level = slog.LevelError
		case c.Writer.Status() >= 400:
			level = slog.LevelWarn
		case c.FullPath() == "/health":
			level = slog.LevelDebug
		}

		logger.LogAttrs(c.Request.Context(), level, "HTTP request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

// localizerMiddleware picks the message language from Accept-Language,
// falling back to the configured locale.
func localizerMiddleware(defaultLocale string) gin.HandlerFunc {
	fallback := i18n.New(defaultLocale)
	return func(c *gin.Context) {
		loc := fallback
		if header := c.GetHeader("Accept-Language"); header != "" {
			loc = i18n.New(header)
		}
		c.Set(localizerKey, loc)
		c.Next()
	}
}

func localizer(c *gin.Context) *i18n.Localizer {
	if v, ok := c.Get(localizerKey); ok {
		if loc, ok := v.(*i18n.Localizer); ok {
			return loc
		}
	}
	return i18n.New("en")
}
