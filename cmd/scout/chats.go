package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"scout-tui/internal/cache"
	"scout-tui/internal/domain"
	"scout-tui/internal/export"
	"scout-tui/internal/history"
)

func newChatsCmd() *cobra.Command {
	var opts struct {
		Group string
	}
	cmd := &cobra.Command{
		Use:   "chats",
		Short: "List recent chats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups := history.Groups
			if opts.Group != "" {
				g, ok := history.ByName(opts.Group)
				if !ok {
					return fmt.Errorf("unknown group %q", opts.Group)
				}
				groups = []history.Group{g}
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				now := time.Now()
				t := newTable("Group", "ID", "Name", "Created")
				for _, g := range groups {
					chats, err := history.Load(ctx, a.cache, a.client, g, now)
					if err != nil {
						return fmt.Errorf("list %s: %w", g.Title, err)
					}
					for _, c := range chats {
						name := c.Name
						if c.Favorite {
							name = "★ " + name
						}
						t.Row(g.Title, c.ID, name, humanize.Time(c.CreatedAt.Time))
					}
				}
				printTable(cmd.OutOrStdout(), t)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&opts.Group, "group", "g", "", "only this group: favorites, today, week or month")

	cmd.AddCommand(newRenameChatCmd())
	cmd.AddCommand(newFavoriteChatCmd())
	cmd.AddCommand(newDeleteChatCmd())
	return cmd
}

func newRenameChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename ID NAME",
		Short: "Rename a chat",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := domain.ValidateName(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				chat, err := a.chat(ctx, args[0])
				if err != nil {
					return fmt.Errorf("load chat %s: %w", args[0], err)
				}
				if err := a.client.UpdateChat(ctx, chat.ID, name, chat.Tags).Err(); err != nil {
					return err
				}
				a.cache.Apply(cache.RenameChat)
				fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %q\n", chat.ID, name)
				return nil
			})
		},
	}
}

func newFavoriteChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "favorite ID",
		Short: "Toggle a chat's favorite flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				resp := a.client.ToggleFavorite(ctx, args[0])
				if err := resp.Err(); err != nil {
					return err
				}
				a.cache.Apply(cache.FavoriteChat)
				state := "removed from favorites"
				if resp.Data {
					state = "added to favorites"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", args[0], state)
				return nil
			})
		},
	}
}

func newDeleteChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				if err := a.client.DeleteChat(ctx, args[0]).Err(); err != nil {
					return err
				}
				a.cache.Apply(cache.DeleteChat)
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export ID",
		Short: "Write a chat transcript to a markdown file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				chat, err := a.chat(ctx, args[0])
				if err != nil {
					return fmt.Errorf("load chat %s: %w", args[0], err)
				}
				exp, err := export.New(a.cfg.ExportDir)
				if err != nil {
					return err
				}
				path, err := exp.Export(chat, chat.History)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}
}
