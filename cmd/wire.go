package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/bnema/artsel/internal/adapters/artic"
	exporttoml "github.com/bnema/artsel/internal/adapters/export/toml"
	"github.com/bnema/artsel/internal/application"
	"github.com/bnema/artsel/internal/config"
	"github.com/bnema/artsel/internal/domain"
	logpkg "github.com/bnema/artsel/internal/log"
	"github.com/bnema/artsel/internal/ports"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	cfg       config.Config
	sessionID string
	logger    *slog.Logger
	logs      *logRelay
	source    ports.PageSource
	lookup    ports.ArtworkLookup
	clock     ports.Clock
}

// wireApp builds the per-invocation graph. Logs go to logOutput so that the
// interactive screen can keep them off the terminal.
func wireApp(cmd *cobra.Command, opts *rootOptions, logOutput io.Writer) (*app, error) {
	cfg, err := config.Load(viper.New(), opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logs := newLogRelay(logOutput)
	baseLogger, err := logpkg.GetBaseLogger(cmd, logs)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	sessionID := uuid.NewString()
	logger := baseLogger.With(logpkg.SessionKey, sessionID)

	client := &artic.Client{
		BaseURL:        cfg.API.BaseURL,
		HTTPClient:     http.DefaultClient,
		PageSize:       cfg.API.PageSize,
		PageBase:       cfg.API.PageBase,
		Fields:         cfg.API.Fields,
		RequestTimeout: cfg.API.Timeout,
		Logger:         logger,
	}

	var source ports.PageSource = client
	if cfg.Cache.Size > 0 {
		source = artic.NewCachedSource(client, cfg.Cache.Size, cfg.Cache.TTL, logger)
	}

	logger.Debug("wired", "config", cfg.File, "base_url", cfg.API.BaseURL, "page_size", cfg.API.PageSize, "cache_size", cfg.Cache.Size)

	return &app{
		cfg:       cfg,
		sessionID: sessionID,
		logger:    logger,
		logs:      logs,
		source:    source,
		lookup:    client,
		clock:     ports.SystemClock{},
	}, nil
}

func (a *app) newBrowser() *application.Browser {
	return application.NewBrowser(a.source, a.cfg.API.PageSize, a.logger)
}

// exportSelection returns the report and the absolute path it was written to.
func (a *app) exportSelection(ctx context.Context, path string, ids []domain.ArtworkID, resolve bool) (domain.SelectionExport, string, error) {
	writer, err := exporttoml.NewWriter(path)
	if err != nil {
		return domain.SelectionExport{}, "", err
	}

	service := application.NewExportService(a.lookup, writer, a.clock, application.ExportOptions{
		BatchSize:   a.cfg.API.PageSize,
		Concurrency: a.cfg.Export.Concurrency,
		Logger:      a.logger,
	})

	export, err := service.Export(ctx, a.sessionID, ids, resolve)
	return export, writer.Path(), err
}
