package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/env"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/normalisers"
	"github.com/custodia-labs/docqa/internal/postprocessors"
)

// memoryDataDir keeps users and chats in process memory.
const memoryDataDir = ":memory:"

// bootstrap builds the concrete adapters behind the CLI commands.
type bootstrap struct{}

func (b *bootstrap) settingsService(opts cli.Options) (*services.SettingsService, error) {
	if err := env.Load(); err != nil {
		return nil, err
	}
	store, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	svc := services.NewSettingsService(store, ai.NewConfigValidator())
	svc.SetOverlay(env.Apply)
	return svc, nil
}

// Settings implements cli.Bootstrap.
func (b *bootstrap) Settings(opts cli.Options) (driving.SettingsService, error) {
	return b.settingsService(opts)
}

// Open implements cli.Bootstrap.
func (b *bootstrap) Open(ctx context.Context, opts cli.Options) (*cli.App, error) {
	settingsService, err := b.settingsService(opts)
	if err != nil {
		return nil, err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if settings.Verbose || opts.Verbose {
		logger.SetVerbose(true)
	}

	app := &cli.App{Settings: settings}
	ok := false
	defer func() {
		if !ok {
			_ = app.Close()
		}
	}()

	promptDir := ""
	if opts.ConfigDir != "" {
		promptDir = filepath.Join(opts.ConfigDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return nil, err
	}
	app.Prompts = prompts

	if watcher, err := file.NewPromptWatcher(prompts); err != nil {
		logger.Warn("prompt reload disabled: %v", err)
	} else {
		app.Closers = append(app.Closers, watcher.Close)
		app.Background = append(app.Background, func(ctx context.Context) error {
			watcher.Run(ctx)
			return nil
		})
	}

	dataDir, err := resolveDataDir(settings.DataDir)
	if err != nil {
		return nil, err
	}
	users, chats, err := openRelational(dataDir, app)
	if err != nil {
		return nil, err
	}

	// An in-memory data dir keeps chromem in memory too.
	backendSettings := *settings
	backendSettings.DataDir = dataDir
	if dataDir == memoryDataDir {
		backendSettings.DataDir = ""
	}
	backends, err := ai.Build(ctx, &backendSettings, prompts)
	if err != nil {
		return nil, err
	}
	app.Closers = append(app.Closers, backends.Close)

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	chunker, err := registry.Build("chunker", settingsService.ChunkerConfig())
	if err != nil {
		return nil, fmt.Errorf("build chunker: %w", err)
	}

	app.Retrieval = services.NewPipeline(
		services.NewLoader(normalisers.NewDefaultRegistry()),
		chunker,
		backends.Embedding,
		backends.VectorStore,
		services.NewReranker(backends.Encoder, settings.Reranker.Concurrency),
		services.NewComposer(backends.LLM, prompts, settings.LLM.ContextWindow),
		services.PipelineConfig{
			CandidateK:  settings.Retrieval.CandidateK,
			ContextK:    settings.Retrieval.ContextK,
			MaxInFlight: settings.Retrieval.MaxInFlight,
			AllowClear:  settings.Server.DevMode,
		},
	)
	app.Chat = services.NewChatService(chats)
	app.Auth = services.NewAuthService(users)
	app.Health = services.NewHealthService(map[string]services.HealthCheck{
		"database": chats.Ping,
		"vector_store": func(ctx context.Context) error {
			_, err := backends.VectorStore.Count(ctx)
			return err
		},
		"embeddings": backends.Embedding.Ping,
		"llm":        backends.LLM.Ping,
	})

	ok = true
	return app, nil
}

// resolveDataDir defaults an empty data dir to ~/.docqa/data.
func resolveDataDir(dataDir string) (string, error) {
	if dataDir != "" {
		return dataDir, nil
	}
	dir, err := file.DefaultConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve data dir: %w", err)
	}
	return filepath.Join(dir, "data"), nil
}

// openRelational opens the user and chat stores under dataDir.
func openRelational(dataDir string, app *cli.App) (driven.UserStore, driven.ChatStore, error) {
	if dataDir == memoryDataDir {
		return memory.NewUserStore(), memory.NewChatStore(), nil
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	app.Closers = append(app.Closers, store.Close)
	logger.Debug("database: %s", store.Path())
	return store.UserStore(), store.ChatStore(), nil
}
