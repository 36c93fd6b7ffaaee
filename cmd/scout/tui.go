package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"scout-tui/internal/export"
	"scout-tui/internal/ui"
)

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive chat (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd)
		},
	}
}

func runTUI(cmd *cobra.Command) error {
	return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
		exp, err := export.New(a.cfg.ExportDir)
		if err != nil {
			return err
		}
		m := ui.NewModel(a.cfg, ui.Deps{
			Client:   a.client,
			Cache:    a.cache,
			Prefs:    a.prefs,
			Exporter: exp,
			Logger:   a.log,
		})
		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("run tui: %w", err)
		}
		return nil
	})
}
