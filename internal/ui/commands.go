package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"scout-tui/internal/api"
	"scout-tui/internal/cache"
	"scout-tui/internal/chatflow"
	"scout-tui/internal/clipboard"
	"scout-tui/internal/dashboard"
	"scout-tui/internal/domain"
	"scout-tui/internal/history"
	"scout-tui/internal/kbselect"
	"scout-tui/internal/state"
)

type meMsg struct {
	profile domain.UserProfile
	err     error
}

type historyMsg struct {
	group string
	chats []domain.ChatSession
	err   error
}

type kbsMsg struct {
	mine       []domain.KnowledgeBase
	others     []domain.KnowledgeBase
	predefined []domain.KnowledgeBase
	err        error
}

type chatCreatedMsg struct {
	chat state.ChatRef
	err  error
}

type chatLoadedMsg struct {
	chat domain.ChatSession
	err  error
}

type answerMsg struct {
	chatID string
	text   string
	resp   api.Response[*domain.Message]
}

type favoriteMsg struct {
	chatID   string
	favorite bool
	err      error
}

// mutationMsg reports a write that changes cached listings.
type mutationMsg struct {
	mutation cache.Mutation
	notice   string
	chatID   string
	name     string
	err      error
}

type uploadMsg struct {
	result *api.KBResult
	notice string
	err    error
}

type aggregatesMsg struct {
	agg dashboard.Aggregates
}

type activityMsg struct {
	filter string
	rows   []domain.UserActivity
	err    error
}

type exportMsg struct {
	path string
	err  error
}

type copyMsg struct {
	err error
}

type prefsMsg struct {
	err error
}

type renderMsg struct {
	rendered string
	nonce    int
	scroll   bool
	err      error
}

func (m Model) meCmd() tea.Cmd {
	return func() tea.Msg {
		p, err := cache.Get(context.Background(), m.cache, cache.K(cache.Me), cache.Forever, func(ctx context.Context) (domain.UserProfile, error) {
			resp := m.client.Me(ctx)
			if resp.Data == nil {
				return domain.UserProfile{}, resp.Err()
			}
			return *resp.Data, resp.Err()
		})
		return meMsg{profile: p.DeriveNames(), err: err}
	}
}

func (m Model) historyCmds() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(history.Groups))
	for _, g := range history.Groups {
		cmds = append(cmds, m.historyCmd(g))
	}
	return tea.Batch(cmds...)
}

func (m Model) historyCmd(g history.Group) tea.Cmd {
	now := m.now()
	return func() tea.Msg {
		chats, err := history.Load(context.Background(), m.cache, m.client, g, now)
		return historyMsg{group: g.Name, chats: chats, err: err}
	}
}

func (m Model) kbsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		load := func(name string, fn func(context.Context) api.Response[[]domain.KnowledgeBase]) ([]domain.KnowledgeBase, error) {
			return cache.Get(ctx, m.cache, cache.K(name), cache.TenMinutes, func(ctx context.Context) ([]domain.KnowledgeBase, error) {
				resp := fn(ctx)
				return resp.Data, resp.Err()
			})
		}
		var out kbsMsg
		var errMine, errOthers, errPredefined error
		out.mine, errMine = load(cache.MyKB, m.client.ListPrivateKBs)
		out.others, errOthers = load(cache.OtherKB, m.client.ListPublicKBs)
		out.predefined, errPredefined = load(cache.PredefinedKB, m.client.ListPredefinedKBs)
		out.err = errors.Join(errMine, errOthers, errPredefined)
		return out
	}
}

func (m Model) createChatCmd(text string) tea.Cmd {
	return func() tea.Msg {
		ref, err := m.flow.Submit(context.Background(), text)
		return chatCreatedMsg{chat: ref, err: err}
	}
}

func (m Model) loadChatCmd(id string) tea.Cmd {
	if id == "" {
		return nil
	}
	return func() tea.Msg {
		chat, err := cache.Get(context.Background(), m.cache, cache.K(cache.Chat, id), cache.Forever, func(ctx context.Context) (domain.ChatSession, error) {
			resp := m.client.GetChat(ctx, id)
			if resp.Data == nil {
				return domain.ChatSession{}, resp.Err()
			}
			return *resp.Data, resp.Err()
		})
		return chatLoadedMsg{chat: chat, err: err}
	}
}

func (m Model) askCmd(req chatflow.Request) tea.Cmd {
	return func() tea.Msg {
		resp := m.flow.Ask(context.Background(), req)
		return answerMsg{chatID: req.ChatID, text: req.Text, resp: resp}
	}
}

func (m Model) favoriteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		resp := m.client.ToggleFavorite(context.Background(), id)
		return favoriteMsg{chatID: id, favorite: resp.Data, err: resp.Err()}
	}
}

func (m Model) renameChatCmd(chat domain.ChatSession, name string) tea.Cmd {
	return func() tea.Msg {
		resp := m.client.UpdateChat(context.Background(), chat.ID, name, chat.Tags)
		return mutationMsg{mutation: cache.RenameChat, notice: "Chat renamed", chatID: chat.ID, name: name, err: resp.Err()}
	}
}

func (m Model) deleteChatCmd(id string) tea.Cmd {
	return func() tea.Msg {
		resp := m.client.DeleteChat(context.Background(), id)
		return mutationMsg{mutation: cache.DeleteChat, notice: "Chat deleted", chatID: id, err: resp.Err()}
	}
}

func (m Model) createKBCmd(name string, public bool) tea.Cmd {
	return func() tea.Msg {
		resp := m.client.CreateKB(context.Background(), name, public)
		return mutationMsg{mutation: cache.CreateKB, notice: resp.Message, err: resp.Err()}
	}
}

func (m Model) renameKBCmd(kb domain.KnowledgeBase, name string) tea.Cmd {
	return func() tea.Msg {
		resp := m.client.UpdateKB(context.Background(), kb.ID, name, kb.Public)
		return mutationMsg{mutation: cache.UpdateKB, notice: resp.Message, err: resp.Err()}
	}
}

func (m Model) deleteKBCmd(id string) tea.Cmd {
	return func() tea.Msg {
		resp := m.client.DeleteKB(context.Background(), id)
		return mutationMsg{mutation: cache.DeleteKB, notice: "Knowledge base deleted", err: resp.Err()}
	}
}

// uploadCmd adds files from disk to the open chat's knowledge base, or to kb
// when one is given.
func (m Model) uploadCmd(chat *state.ChatRef, kb *domain.KnowledgeBase, paths []string) tea.Cmd {
	return func() tea.Msg {
		files, closeAll, err := api.OpenUploads(paths)
		if err != nil {
			return uploadMsg{err: err}
		}
		defer closeAll()

		ctx := context.Background()
		var resp api.Response[*api.KBResult]
		if kb != nil {
			resp = m.client.AddFilesToKB(ctx, kb.ID, files)
		} else if resp, err = m.flow.Upload(ctx, chat, files); err != nil {
			return uploadMsg{err: err}
		}
		if err := resp.Err(); err != nil {
			return uploadMsg{err: err}
		}
		return uploadMsg{result: resp.Data, notice: resp.Message}
	}
}

func (m Model) aggregatesCmd() tea.Cmd {
	return func() tea.Msg {
		return aggregatesMsg{agg: dashboard.FetchAggregates(context.Background(), m.cache, m.client)}
	}
}

func (m Model) activityCmd() tea.Cmd {
	act := m.activity
	filter := act.Filter()
	return func() tea.Msg {
		rows, err := act.More(context.Background())
		return activityMsg{filter: filter, rows: rows, err: err}
	}
}

func (m Model) saveSelectionCmd(sel kbselect.Selection) tea.Cmd {
	if m.prefs == nil {
		return nil
	}
	return func() tea.Msg {
		return prefsMsg{err: m.prefs.SaveSelection(context.Background(), sel)}
	}
}

func (m Model) saveThemeCmd(t state.Theme) tea.Cmd {
	if m.prefs == nil {
		return nil
	}
	return func() tea.Msg {
		return prefsMsg{err: m.prefs.SetTheme(context.Background(), t)}
	}
}

func (m Model) exportCmd() tea.Cmd {
	st := m.st
	if st.Chat == nil {
		return nil
	}
	chat := domain.ChatSession{ID: st.Chat.ID, Name: st.ChatName, KBID: st.Chat.KBID, Favorite: st.Chat.Favorite}
	msgs := st.History
	return func() tea.Msg {
		path, err := m.exporter.Export(chat, msgs)
		return exportMsg{path: path, err: err}
	}
}

func (m Model) copyLinkCmd() tea.Cmd {
	id := m.st.ChatID()
	if id == "" {
		return nil
	}
	link := clipboard.ChatLink(m.cfg.WebURL, id)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return copyMsg{err: clipboard.Copy(ctx, link)}
	}
}

func (m Model) renderCmd(history []domain.Message, theme state.Theme, wrap, nonce int, scroll bool) tea.Cmd {
	return func() tea.Msg {
		md := buildChatMarkdown(history)
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(string(theme)),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return renderMsg{rendered: md, nonce: nonce, scroll: scroll, err: err}
		}
		out, err := r.Render(md)
		if err != nil {
			return renderMsg{rendered: md, nonce: nonce, scroll: scroll, err: err}
		}
		return renderMsg{rendered: out, nonce: nonce, scroll: scroll}
	}
}

// buildChatMarkdown lays out the thread. Entries that never reached the
// server are marked so the reader can tell them apart.
func buildChatMarkdown(history []domain.Message) string {
	var b strings.Builder
	for _, msg := range history {
		switch {
		case msg.IsLoading():
			b.WriteString("### Scout\n\n_thinking…_\n\n")
			continue
		case msg.Role == domain.RoleUser:
			b.WriteString("### You\n\n")
		default:
			b.WriteString("### Scout\n\n")
		}
		content := strings.TrimSpace(msg.Content)
		if msg.Status == domain.StatusFailed && msg.Role != domain.RoleUser {
			content = "> " + content
		}
		b.WriteString(content + "\n\n")
		if msg.Status == domain.StatusFailed && msg.Role == domain.RoleUser {
			b.WriteString("_not delivered_\n\n")
		}
		for i, c := range msg.Citations {
			fmt.Fprintf(&b, "%d. %s\n", i+1, strings.TrimSpace(c.Citation))
		}
		if len(msg.Citations) > 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
