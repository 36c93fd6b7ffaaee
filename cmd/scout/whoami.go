package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"scout-tui/internal/cache"
	"scout-tui/internal/domain"
	"scout-tui/internal/state"
)

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				p, err := cache.Get(ctx, a.cache, cache.K(cache.Me), cache.Forever, func(ctx context.Context) (domain.UserProfile, error) {
					resp := a.client.Me(ctx)
					if resp.Data == nil {
						return domain.UserProfile{}, resp.Err()
					}
					return *resp.Data, resp.Err()
				})
				if err != nil {
					return err
				}
				st := a.store.Dispatch(state.SetUser{Profile: p.DeriveNames()})
				u := st.User

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "[%s] %s\n", domain.Initials(u.FirstName, u.LastName), u.DisplayName())
				fmt.Fprintf(w, "email    %s\n", u.Email)
				fmt.Fprintf(w, "id       %s\n", u.ID)
				if !u.CreatedAt.IsZero() {
					fmt.Fprintf(w, "joined   %s\n", humanize.Time(u.CreatedAt.Time))
				}
				fmt.Fprintf(w, "model    %s\n", st.Model)
				fmt.Fprintf(w, "theme    %s\n", st.Theme)
				return nil
			})
		},
	}
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				resp := a.client.Health(ctx)
				if err := resp.Err(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", a.cfg.BaseURL, resp.Data)
				return nil
			})
		},
	}
}
