package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"scout-tui/internal/dashboard"
)

func newDashboardCmd() *cobra.Command {
	var opts struct {
		Search string
		Pages  int
	}
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print usage counters and per-user activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				w := cmd.OutOrStdout()
				totals := dashboard.FetchAggregates(ctx, a.cache, a.client).Totals()
				counters := newTable("Metric", "Total")
				for _, m := range dashboard.Metrics {
					counters.Row(m.Label(), humanize.Comma(int64(totals[m])))
				}
				printTable(w, counters)

				act := dashboard.NewActivity(a.client)
				act.Search(opts.Search)
				for i := 0; i < max(opts.Pages, 1) && !act.Done(); i++ {
					if _, err := act.More(ctx); err != nil {
						return fmt.Errorf("load activity: %w", err)
					}
				}

				rows := newTable("Email", "Chats", "Questions", "Resumed", "Docs", "Uploaded", "KBs", "Last message")
				for _, u := range act.Rows() {
					last := "n/a"
					if !u.LastMessageAt.IsZero() {
						last = humanize.Time(u.LastMessageAt.Time)
					}
					rows.Row(
						u.Email,
						humanize.Comma(int64(u.NewChat)),
						humanize.Comma(int64(u.QuestionsAsked)),
						humanize.Comma(int64(u.ChatsResumed)),
						humanize.Comma(int64(u.DocumentsUploaded)),
						humanize.Bytes(uint64(max(u.DocumentsUploadTotalSizeBytes, 0))),
						humanize.Comma(int64(u.KnowledgeBaseCreated)),
						last,
					)
				}
				printTable(w, rows)
				if !act.Done() {
					fmt.Fprintln(w, "more rows available, raise --pages")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "only users with this email")
	cmd.Flags().IntVarP(&opts.Pages, "pages", "p", 1, "number of activity pages to load")
	return cmd
}
