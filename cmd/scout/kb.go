package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"scout-tui/internal/api"
	"scout-tui/internal/cache"
	"scout-tui/internal/domain"
	"scout-tui/internal/kbselect"
)

func newKBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "kb",
		Aliases: []string{"kbs"},
		Short:   "Manage knowledge bases and which ones are active",
	}
	cmd.AddCommand(newListKBCmd())
	cmd.AddCommand(newCreateKBCmd())
	cmd.AddCommand(newRenameKBCmd())
	cmd.AddCommand(newActivateKBCmd(true))
	cmd.AddCommand(newActivateKBCmd(false))
	cmd.AddCommand(newUploadKBCmd())
	cmd.AddCommand(newRemoveFilesKBCmd())
	cmd.AddCommand(newDeleteKBCmd())
	return cmd
}

var errKBNotFound = errors.New("knowledge base not found")

type kbListing struct {
	scope string
	name  string
	fn    func(context.Context) api.Response[[]domain.KnowledgeBase]
}

func (a *app) listings() []kbListing {
	return []kbListing{
		{scope: "mine", name: cache.MyKB, fn: a.client.ListPrivateKBs},
		{scope: "shared", name: cache.OtherKB, fn: a.client.ListPublicKBs},
		{scope: "predefined", name: cache.PredefinedKB, fn: a.client.ListPredefinedKBs},
	}
}

func (a *app) loadListing(ctx context.Context, l kbListing) ([]domain.KnowledgeBase, error) {
	return cache.Get(ctx, a.cache, cache.K(l.name), cache.TenMinutes, func(ctx context.Context) ([]domain.KnowledgeBase, error) {
		resp := l.fn(ctx)
		return resp.Data, resp.Err()
	})
}

// findKB looks id up in the cached listings.
func (a *app) findKB(ctx context.Context, id string) (domain.KnowledgeBase, error) {
	var errs []error
	for _, l := range a.listings() {
		kbs, err := a.loadListing(ctx, l)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", l.scope, err))
			continue
		}
		for _, kb := range kbs {
			if kb.ID == id {
				return kb, nil
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return domain.KnowledgeBase{}, err
	}
	return domain.KnowledgeBase{}, fmt.Errorf("%w: %s", errKBNotFound, id)
}

func newListKBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List knowledge bases with their active flag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				sel, err := a.prefs.Selection(ctx)
				if err != nil {
					return err
				}

				var all [][]domain.KnowledgeBase
				var errs []error
				t := newTable("", "Scope", "ID", "Name", "Visibility", "Files", "Updated")
				for _, l := range a.listings() {
					kbs, err := a.loadListing(ctx, l)
					if err != nil {
						errs = append(errs, fmt.Errorf("%s: %w", l.scope, err))
						continue
					}
					all = append(all, kbs)
					for _, kb := range kbselect.Merge(kbs, sel) {
						mark := "○"
						if kb.Active {
							mark = "●"
						}
						t.Row(mark, l.scope, kb.ID, kb.Name, string(kb.Visibility()),
							english.Plural(len(kb.FilesIDs), "file", ""), humanize.Time(kb.UpdatedAt.Time))
					}
				}
				printTable(cmd.OutOrStdout(), t)
				if err := errors.Join(errs...); err != nil {
					return err
				}
				return a.prefs.SaveSelection(ctx, kbselect.Sync(sel, all...))
			})
		},
	}
}

func newCreateKBCmd() *cobra.Command {
	var opts struct {
		Public bool
	}
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := domain.ValidateName(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				resp := a.client.CreateKB(ctx, name, opts.Public)
				if err := resp.Err(); err != nil {
					return err
				}
				a.cache.Apply(cache.CreateKB)
				id := ""
				if resp.Data != nil {
					id = resp.Data.Data.ID
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %q %s\n", name, id)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&opts.Public, "public", false, "share with everyone")
	return cmd
}

func newRenameKBCmd() *cobra.Command {
	var opts struct {
		Public bool
	}
	cmd := &cobra.Command{
		Use:   "rename ID NAME",
		Short: "Rename a knowledge base",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := domain.ValidateName(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				public := opts.Public
				if !cmd.Flags().Changed("public") {
					kb, err := a.findKB(ctx, args[0])
					if err != nil {
						return err
					}
					public = kb.Public
				}
				if err := a.client.UpdateKB(ctx, args[0], name, public).Err(); err != nil {
					return err
				}
				a.cache.Apply(cache.UpdateKB)
				fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %q\n", args[0], name)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&opts.Public, "public", false, "share with everyone (default: keep current visibility)")
	return cmd
}

// newActivateKBCmd builds "activate" or "deactivate". The flag only lives in
// the local selection; the server never sees it.
func newActivateKBCmd(active bool) *cobra.Command {
	use, short := "activate", "Use knowledge bases for the next questions"
	if !active {
		use, short = "deactivate", "Stop using knowledge bases for questions"
	}
	return &cobra.Command{
		Use:   use + " ID...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				sel, err := a.prefs.Selection(ctx)
				if err != nil {
					return err
				}
				for _, id := range args {
					sel = sel.Set(id, active)
				}
				if err := a.prefs.SaveSelection(ctx, sel); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "active: %s\n", strings.Join(sel.ActiveIDs(), ", "))
				return nil
			})
		},
	}
}

func newUploadKBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload ID FILE...",
		Short: "Add files to a knowledge base",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				files, closeAll, err := api.OpenUploads(args[1:])
				if err != nil {
					return err
				}
				defer closeAll()

				resp := a.client.AddFilesToKB(ctx, args[0], files)
				if err := resp.Err(); err != nil {
					return err
				}
				a.cache.Apply(cache.AddFilesToKB)
				printKBResult(cmd.OutOrStdout(), resp.Message, resp.Data)
				return nil
			})
		},
	}
}

func newRemoveFilesKBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm-files ID FILE_ID...",
		Short: "Remove files from a knowledge base",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				resp := a.client.RemoveFilesFromKB(ctx, args[0], args[1:])
				if err := resp.Err(); err != nil {
					return err
				}
				a.cache.Apply(cache.RemoveFilesFromKB)
				printKBResult(cmd.OutOrStdout(), resp.Message, resp.Data)
				return nil
			})
		},
	}
}

func newDeleteKBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				if err := a.client.DeleteKB(ctx, args[0]).Err(); err != nil {
					return err
				}
				a.cache.Apply(cache.DeleteKB)
				sel, err := a.prefs.Selection(ctx)
				if err != nil {
					return err
				}
				if err := a.prefs.SaveSelection(ctx, sel.Set(args[0], false)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func printKBResult(w io.Writer, message string, r *api.KBResult) {
	if message != "" {
		fmt.Fprintln(w, message)
	}
	if r == nil {
		return
	}
	if failed := r.Failed(); len(failed) > 0 {
		fmt.Fprintf(w, "%s failed to embed: %s\n", english.Plural(len(failed), "file", ""), strings.Join(failed, ", "))
	}
}
