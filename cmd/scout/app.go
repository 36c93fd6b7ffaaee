package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"scout-tui/internal/api"
	"scout-tui/internal/cache"
	"scout-tui/internal/chatflow"
	"scout-tui/internal/config"
	"scout-tui/internal/domain"
	"scout-tui/internal/logging"
	"scout-tui/internal/prefs"
	"scout-tui/internal/state"
)

// app is what every subcommand needs: resolved config, the file logger, the
// API client, the response cache and local preferences.
type app struct {
	cfg    config.AppConfig
	log    *slog.Logger
	client *api.Client
	cache  *cache.Cache
	prefs  *prefs.Store
	store  *state.Store

	logFile io.Closer
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Resolve(flags)
	if err != nil {
		return nil, err
	}
	log, logFile, err := logging.Open(cfg.LogPath, cfg.Debug)
	if err != nil {
		return nil, err
	}
	p, err := prefs.Open(cfg.DBPath)
	if err != nil {
		logFile.Close()
		return nil, err
	}
	if !config.IsKnownModel(cfg.Model) {
		log.Warn("unknown model", "model", cfg.Model)
	}
	theme, err := p.Theme(ctx)
	if err != nil {
		log.Warn("read theme", "err", err)
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		client:  api.New(cfg.BaseURL, cfg.Token, api.WithLogger(log), api.WithTimeout(cfg.RequestTimeout)),
		cache:   cache.New(),
		prefs:   p,
		store:   state.NewStore(state.Initial(theme, cfg.Model)),
		logFile: logFile,
	}
	log.Debug("scout started", "base_url", cfg.BaseURL, "db", cfg.DBPath, "model", cfg.Model)
	return a, nil
}

func (a *app) Close() error {
	return errors.Join(a.prefs.Close(), a.logFile.Close())
}

func (a *app) flow() *chatflow.Flow {
	return chatflow.New(a.client)
}

// chat fetches a chat through the cache.
func (a *app) chat(ctx context.Context, id string) (domain.ChatSession, error) {
	return cache.Get(ctx, a.cache, cache.K(cache.Chat, id), cache.Forever, func(ctx context.Context) (domain.ChatSession, error) {
		resp := a.client.GetChat(ctx, id)
		if resp.Data == nil {
			return domain.ChatSession{}, resp.Err()
		}
		return *resp.Data, resp.Err()
	})
}

// withApp wraps a command body with setup and teardown.
func withApp(ctx context.Context, fn func(context.Context, *app) error) error {
	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.log.Warn("close", "err", err)
		}
	}()
	return fn(ctx, a)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func printTable(w io.Writer, t *table.Table) {
	fmt.Fprintln(w, t.Render())
}
