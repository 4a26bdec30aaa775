package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/pennywise/internal/classification"
	"github.com/Veraticus/pennywise/internal/config"
	"github.com/Veraticus/pennywise/internal/engine"
	"github.com/Veraticus/pennywise/internal/i18n"
	"github.com/Veraticus/pennywise/internal/llm"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/pattern"
	"github.com/Veraticus/pennywise/internal/service"
	"github.com/Veraticus/pennywise/internal/storage"
)

// app holds the wired components shared by the commands.
type app struct {
	store       service.Storage
	parser      *llm.Parser
	categorizer *engine.AutoCategorizer
	processor   *engine.Processor
	localizer   *i18n.Localizer
	cfg         *config.Config
	catalog     model.Catalog
}

// newApp opens the database, seeds the catalog and builds the pipeline.
// The AI parser is only created when withAI is set.
func newApp(ctx context.Context, withAI bool) (*app, error) {
	cfg := appConfig
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	rules := classification.Default()
	if cfg.RulesPath != "" {
		loaded, err := classification.Load(cfg.RulesPath)
		if err != nil {
			return nil, err
		}
		rules = loaded
	}

	store, err := initStorage(ctx, cfg.Database.Path, rules.Catalog())
	if err != nil {
		return nil, err
	}

	a := &app{
		store:       store,
		cfg:         cfg,
		catalog:     rules.Catalog(),
		localizer:   i18n.New(cfg.Locale),
		categorizer: engine.NewAutoCategorizer(pattern.NewMatcher(rules)),
	}

	if withAI {
		parser, err := llm.NewParserFromConfig(ctx, llmConfig(cfg.LLM), slog.Default())
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		a.parser = parser
		a.processor = engine.NewProcessor(store, parser, a.categorizer, a.localizer, slog.Default())
	}

	return a, nil
}

func (a *app) Close() {
	if a.parser != nil {
		if err := a.parser.Close(); err != nil {
			slog.Warn("Failed to close AI client", "error", err)
		}
	}
	if err := a.store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// initStorage opens and migrates the database and seeds the category catalog.
func initStorage(ctx context.Context, dbPath string, catalog model.Catalog) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(config.ExpandPath(dbPath))
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := store.SeedCategories(ctx, catalog); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to seed categories: %w", err)
	}

	return store, nil
}

func llmConfig(c config.LLMConfig) llm.Config {
	return llm.Config{
		Provider:    c.Provider,
		APIKey:      c.APIKey,
		Model:       c.Model,
		BaseURL:     c.BaseURL,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
		RateLimit:   c.RateLimit,
		MaxAttempts: c.MaxAttempts,
		RetryDelay:  c.RetryDelay,
		Timeout:     c.Timeout,
	}
}
