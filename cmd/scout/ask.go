package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"scout-tui/internal/api"
	"scout-tui/internal/cache"
	"scout-tui/internal/chatflow"
	"scout-tui/internal/domain"
	"scout-tui/internal/state"
)

func newAskCmd() *cobra.Command {
	var opts struct {
		ChatID string
		Raw    bool
	}
	cmd := &cobra.Command{
		Use:   "ask QUESTION...",
		Short: "Ask a question in a new chat, or in an existing one with --chat",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return domain.ErrEmptyMessage
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				unsubscribe := a.store.Subscribe(func(s state.State) {
					a.log.Debug("state changed", "chat", s.ChatID(), "messages", len(s.History))
				})
				defer unsubscribe()

				sel, err := a.prefs.Selection(ctx)
				if err != nil {
					a.log.Warn("read kb selection", "err", err)
				}
				flow := a.flow()

				// A new chat is created here and asked when it is opened, the
				// same two steps the interactive client takes.
				chatID, created := opts.ChatID, false
				if chatID == "" {
					ref, err := flow.Submit(ctx, text)
					if err != nil {
						return fmt.Errorf("create chat: %w", err)
					}
					a.cache.Apply(cache.CreateChat)
					chatID, created = ref.ID, true
				}

				chat, err := a.chat(ctx, chatID)
				if err != nil {
					return fmt.Errorf("load chat %s: %w", chatID, err)
				}
				a.store.Dispatch(state.SetChatIdentity{Chat: state.ChatRef{ID: chat.ID, Name: chat.Name, KBID: chat.KBID, Favorite: chat.Favorite}})

				req := chatflow.Request{ChatID: chat.ID, ChatKB: chat.KBID, Text: text, Active: sel.ActiveIDs()}
				history, first := chat.History, ""
				if created {
					history, first = flow.Open(chat, nil)
				}
				st := a.store.Dispatch(state.SetHistory{Messages: history})
				req.Model = st.Model

				var resp api.Response[*domain.Message]
				if first != "" {
					req.Text = first
					resp = flow.Ask(ctx, req)
					history = flow.Resolve(st.History, first, resp)
				} else if history, resp, err = flow.Send(ctx, st.History, req); err != nil {
					return err
				}
				a.cache.Invalidate(cache.K(cache.Chat, chat.ID))
				st = a.store.Dispatch(state.SetHistory{Messages: history})
				a.log.Info("asked", "chat", st.Chat.ID, "phase", flow.Phase().String())

				fmt.Fprintf(cmd.ErrOrStderr(), "chat %s\n", st.Chat.ID)
				if err := resp.Err(); err != nil {
					return err
				}
				return printAnswer(cmd.OutOrStdout(), resp.Data, st.Theme, opts.Raw)
			})
		},
	}
	cmd.Flags().StringVarP(&opts.ChatID, "chat", "c", "", "ask in this existing chat")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "print markdown without rendering")
	return cmd
}

func answerMarkdown(msg *domain.Message) string {
	if msg == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.TrimSpace(msg.Content))
	b.WriteString("\n")
	if len(msg.Citations) > 0 {
		b.WriteString("\n")
		for i, c := range msg.Citations {
			fmt.Fprintf(&b, "%d. %s\n", i+1, strings.TrimSpace(c.Citation))
		}
	}
	return b.String()
}

func printAnswer(w io.Writer, msg *domain.Message, theme state.Theme, raw bool) error {
	md := answerMarkdown(msg)
	if raw {
		_, err := io.WriteString(w, md)
		return err
	}
	out, err := glamour.Render(md, string(theme))
	if err != nil {
		return fmt.Errorf("render answer: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
