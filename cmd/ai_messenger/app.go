package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ai_messenger/pkg/ai"
	"ai_messenger/pkg/assistant"
	"ai_messenger/pkg/config"
	"ai_messenger/pkg/controller"
	"ai_messenger/pkg/conversation"
	"ai_messenger/pkg/kvstore"
	"ai_messenger/pkg/logging"

	// Register providers with the default registry.
	_ "ai_messenger/pkg/ai/providers"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	envFile    string
	store      string
	storePath  string
	logLevel   string
}

// app holds everything a command needs once startup succeeded.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	kv     kvstore.Store
	ctrl   *controller.Controller
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(flags globalFlags) (config.Config, error) {
	path := flags.configPath
	if strings.TrimSpace(path) == "" {
		path = config.GetConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("error loading config: %w", err)
	}

	if flags.store != "" {
		cfg.Storage.Backend = flags.store
	}
	if flags.storePath != "" {
		cfg.Storage.Path = flags.storePath
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newApp performs the startup sequence: env file, config, logging, store,
// credential, provider and controller.
func newApp(ctx context.Context, flags globalFlags) (*app, error) {
	if err := config.LoadEnvFile(flags.envFile); err != nil {
		return nil, fmt.Errorf("error loading %s: %w", flags.envFile, err)
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	logger, err := logging.Init(cfg)
	if err != nil {
		// Logging is best effort; keep going with the discard logger.
		logger.Warn("log_file_unavailable", "error", err)
	}

	kv, err := kvstore.Open(cfg.Storage.Backend, cfg.StoragePath())
	if err != nil {
		return nil, fmt.Errorf("error opening %s store: %w", cfg.Storage.Backend, err)
	}

	store := conversation.NewStore(kv, cfg.Storage.Key)
	coll := store.Load(ctx)

	credential := cfg.Credential()
	client, err := newAssistant(cfg, credential, logger)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	logger.Info("app_started",
		"provider", cfg.LLMProvider,
		"model", cfg.Active().Model,
		"storage", cfg.Storage.Backend,
		"conversations", len(coll),
		"credential", credential != "",
	)

	ctrl := controller.New(coll, controller.Options{
		Store:      store,
		Assistant:  client,
		Credential: credential,
		Logger:     logger,
	})

	return &app{
		cfg:    cfg,
		logger: logger,
		kv:     kv,
		ctrl:   ctrl,
	}, nil
}

// newAssistant builds the provider only when a credential exists; without
// one the controller answers AI conversations itself.
func newAssistant(cfg config.Config, credential string, logger *slog.Logger) (*assistant.Client, error) {
	opts := []assistant.Option{
		assistant.WithModel(cfg.Active().Model),
		assistant.WithLogger(logger),
	}
	if credential == "" {
		return assistant.New(nil, opts...), nil
	}

	provider, err := ai.GetProviderFromConfig(cfg, credential)
	if err != nil {
		return nil, fmt.Errorf("error creating %s provider: %w", cfg.LLMProvider, err)
	}
	return assistant.New(provider, opts...), nil
}

// Close cancels pending requests and releases the store.
func (a *app) Close() {
	a.ctrl.Close()
	if err := a.kv.Close(); err != nil {
		a.logger.Error("store_close_failed", "error", err)
	}
}
