package tui

import (
	"context"
	"log/slog"

	"github.com/Veraticus/pennywise/internal/i18n"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/service"
	"github.com/Veraticus/pennywise/internal/tui/themes"
)

// InputProcessor turns one line of text into processed drafts.
type InputProcessor interface {
	Process(ctx context.Context, userInput string) (*model.ProcessResult, error)
}

// Config holds TUI configuration.
type Config struct {
	Processor InputProcessor
	Store     service.TransactionStore
	Localizer *i18n.Localizer
	Logger    *slog.Logger
	Theme     themes.Theme
	Width     int
	Height    int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:  themes.Default,
		Width:  80,
		Height: 24,
	}
}

// WithProcessor sets the input processor.
func WithProcessor(p InputProcessor) Option {
	return func(c *Config) {
		c.Processor = p
	}
}

// WithStore sets where confirmed transactions are saved.
func WithStore(s service.TransactionStore) Option {
	return func(c *Config) {
		c.Store = s
	}
}

// WithLocalizer sets the message language.
func WithLocalizer(l *i18n.Localizer) Option {
	return func(c *Config) {
		c.Localizer = l
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithTheme sets the color theme.
func WithTheme(t themes.Theme) Option {
	return func(c *Config) {
		c.Theme = t
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}
