package ui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"scout-tui/internal/api"
	"scout-tui/internal/cache"
	"scout-tui/internal/config"
	"scout-tui/internal/domain"
	"scout-tui/internal/kbselect"
	"scout-tui/internal/prefs"
	"scout-tui/internal/state"
)

func newTestModel(t *testing.T, p *prefs.Store) Model {
	t.Helper()
	client := api.New("http://127.0.0.1:1", "")
	m := NewModel(config.AppConfig{Model: "gpt-4o", WebURL: "http://scout.test"}, Deps{Client: client, Prefs: p})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return next.(Model)
}

func openPrefs(t *testing.T) *prefs.Store {
	t.Helper()
	p, err := prefs.Open(filepath.Join(t.TempDir(), "state.sqlite"))
	if err != nil {
		t.Fatalf("open prefs: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// drain runs cmd and any batch it expands to.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func enter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

func withChat(m Model, ref state.ChatRef) Model {
	m.dispatch(state.SetChatIdentity{Chat: ref})
	return m
}

func TestEmptySendShowsNotice(t *testing.T) {
	m := newTestModel(t, nil)
	m.input.SetValue("   ")
	m, cmd := update(m, enter())
	if cmd != nil {
		t.Fatalf("empty message should not issue a request")
	}
	if m.err == nil || !strings.Contains(m.err.Error(), domain.ErrEmptyMessage.Error()) {
		t.Fatalf("expected empty message notice, got %v", m.err)
	}
}

func TestSendWithoutChatOnlyCreates(t *testing.T) {
	m := newTestModel(t, nil)
	m.input.SetValue("hello there")
	m, cmd := update(m, enter())
	if cmd == nil {
		t.Fatalf("expected create chat command")
	}
	st := m.State()
	if st.Chat != nil || len(st.History) != 0 {
		t.Fatalf("history must stay empty until the chat exists: %+v", st)
	}
	if m.input.Value() != "" {
		t.Fatalf("input should be cleared, got %q", m.input.Value())
	}
}

func TestSendInOpenChatAddsPendingPair(t *testing.T) {
	m := withChat(newTestModel(t, nil), state.ChatRef{ID: "c1", KBID: "kb-c"})
	m.input.SetValue("hi")
	m, cmd := update(m, enter())
	if cmd == nil {
		t.Fatalf("expected ask command")
	}
	hist := m.State().History
	if len(hist) != 2 {
		t.Fatalf("expected user entry and placeholder, got %d entries", len(hist))
	}
	if hist[0].Role != domain.RoleUser || !hist[0].Pending() {
		t.Fatalf("first entry should be the pending user message: %+v", hist[0])
	}
	if !hist[1].IsLoading() {
		t.Fatalf("second entry should be the loading placeholder: %+v", hist[1])
	}
	if !m.thinking() {
		t.Fatalf("model should report thinking while the placeholder is shown")
	}
}

func TestAnswerResolvesOpenChat(t *testing.T) {
	m := withChat(newTestModel(t, nil), state.ChatRef{ID: "c1"})
	m.input.SetValue("hi")
	m, _ = update(m, enter())
	before := m.State().ScrollTrigger

	m, _ = update(m, answerMsg{
		chatID: "c1",
		text:   "hi",
		resp: api.Response[*domain.Message]{
			Success:    true,
			StatusCode: 200,
			Data:       &domain.Message{ID: "m2", Role: domain.RoleAssistant, Content: "hello"},
		},
	})

	st := m.State()
	if st.ScrollTrigger != before+1 {
		t.Fatalf("scroll trigger should advance by one: before=%d after=%d", before, st.ScrollTrigger)
	}
	if len(st.History) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(st.History))
	}
	if st.History[0].Local() {
		t.Fatalf("user entry should be confirmed after success")
	}
	if st.History[1].Content != "hello" || st.History[1].Local() {
		t.Fatalf("unexpected answer entry: %+v", st.History[1])
	}
}

func TestFailedAnswerShowsMessage(t *testing.T) {
	m := withChat(newTestModel(t, nil), state.ChatRef{ID: "c1"})
	m.input.SetValue("hi")
	m, _ = update(m, enter())

	m, _ = update(m, answerMsg{
		chatID: "c1",
		text:   "hi",
		resp:   api.Response[*domain.Message]{StatusCode: 500, Message: "model overloaded"},
	})

	hist := m.State().History
	if len(hist) != 2 {
		t.Fatalf("expected user entry and error entry, got %d", len(hist))
	}
	if hist[1].Content != "model overloaded" || hist[1].Status != domain.StatusFailed {
		t.Fatalf("unexpected error entry: %+v", hist[1])
	}
	if m.err == nil {
		t.Fatalf("expected an error notice")
	}
}

func TestAnswerForClosedChatIsDropped(t *testing.T) {
	m := withChat(newTestModel(t, nil), state.ChatRef{ID: "c2"})
	m, _ = update(m, answerMsg{
		chatID: "c1",
		text:   "hi",
		resp:   api.Response[*domain.Message]{Success: true, StatusCode: 200, Data: &domain.Message{Content: "late"}},
	})
	if len(m.State().History) != 0 {
		t.Fatalf("answer for another chat must not land in this one")
	}
}

func TestLoadedEmptyChatAsksItsName(t *testing.T) {
	m := withChat(newTestModel(t, nil), state.ChatRef{ID: "c1", Name: "What is Go?"})
	m, cmd := update(m, chatLoadedMsg{chat: domain.ChatSession{ID: "c1", Name: "What is Go?"}})
	if cmd == nil {
		t.Fatalf("expected the first question to be asked")
	}
	hist := m.State().History
	if len(hist) != 2 || hist[0].Content != "What is Go?" || !hist[1].IsLoading() {
		t.Fatalf("unexpected history: %+v", hist)
	}
}

func TestLoadedChatWithHistoryDoesNotAsk(t *testing.T) {
	m := withChat(newTestModel(t, nil), state.ChatRef{ID: "c1"})
	chat := domain.ChatSession{
		ID:   "c1",
		Name: "Old chat",
		History: []domain.Message{
			{ID: "1", Role: domain.RoleUser, Content: "q"},
			{ID: "2", Role: domain.RoleAssistant, Content: "a"},
		},
	}
	m, _ = update(m, chatLoadedMsg{chat: chat})
	if got := len(m.State().History); got != 2 {
		t.Fatalf("expected server history only, got %d entries", got)
	}
	if m.thinking() {
		t.Fatalf("nothing should be pending")
	}
}

func TestLoadedChatForOtherSelectionIgnored(t *testing.T) {
	m := withChat(newTestModel(t, nil), state.ChatRef{ID: "c2"})
	m, _ = update(m, chatLoadedMsg{chat: domain.ChatSession{ID: "c1", Name: "stale"}})
	if m.State().ChatID() != "c2" || len(m.State().History) != 0 {
		t.Fatalf("stale chat load changed state: %+v", m.State())
	}
}

func TestKBToggleUpdatesAndPersistsSelection(t *testing.T) {
	p := openPrefs(t)
	m := newTestModel(t, p)
	m, cmd := update(m, kbsMsg{mine: []domain.KnowledgeBase{{ID: "kb1", Name: "Docs"}}})
	drain(cmd)

	m.dispatch(state.OpenKnowledgeBase{})
	m.setFocus(focusSide)
	m, cmd = update(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !m.sel.IsActive("kb1") {
		t.Fatalf("kb1 should be active after toggle")
	}
	for _, msg := range drain(cmd) {
		if pm, ok := msg.(prefsMsg); ok && pm.err != nil {
			t.Fatalf("save selection: %v", pm.err)
		}
	}

	sel, err := p.Selection(context.Background())
	if err != nil {
		t.Fatalf("read selection: %v", err)
	}
	if !sel.IsActive("kb1") {
		t.Fatalf("persisted selection missing kb1: %+v", sel)
	}
	if ids := m.request("q").Active; len(ids) != 1 || ids[0] != "kb1" {
		t.Fatalf("active ids not used for questions: %v", ids)
	}
}

func TestFailedKBListingKeepsSelection(t *testing.T) {
	m := newTestModel(t, nil)
	m.sel = kbselect.Selection{{ID: "kb1", Active: true}}
	m, _ = update(m, kbsMsg{err: errors.New("boom")})
	if !m.sel.IsActive("kb1") {
		t.Fatalf("a failed listing must not drop known flags")
	}
}

func TestCreatePublicKBFromPanel(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/kb" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"kb9","name":"Team docs","public":true}}`))
	}))
	defer srv.Close()

	m := newTestModel(t, nil)
	m.client = api.New(srv.URL, "")
	m.dispatch(state.OpenKnowledgeBase{})
	m.setFocus(focusSide)
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'C'}})
	if m.promptKind != promptCreatePublicKB {
		t.Fatalf("expected public create prompt, got %v", m.promptKind)
	}
	m.prompt.SetValue("Team docs")
	m, cmd := update(m, enter())
	if cmd == nil {
		t.Fatalf("expected create command")
	}
	msg, ok := cmd().(mutationMsg)
	if !ok || msg.err != nil {
		t.Fatalf("create failed: %+v", msg)
	}
	if body["name"] != "Team docs" || body["public"] != true {
		t.Fatalf("unexpected create body: %v", body)
	}
}

func TestThemeTogglePersists(t *testing.T) {
	p := openPrefs(t)
	m := newTestModel(t, p)
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if m.State().Theme != state.ThemeLight {
		t.Fatalf("expected light theme, got %s", m.State().Theme)
	}
	drain(cmd)
	got, err := p.Theme(context.Background())
	if err != nil {
		t.Fatalf("read theme: %v", err)
	}
	if got != state.ThemeLight {
		t.Fatalf("persisted theme = %s", got)
	}
}

func TestUploadWithoutChatWarns(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlU})
	if m.promptKind != promptNone {
		t.Fatalf("no file prompt without a chat")
	}
	if m.err == nil || !strings.Contains(m.err.Error(), "existing chat") {
		t.Fatalf("expected upload notice, got %v", m.err)
	}
}

func TestRenameRejectsBlankName(t *testing.T) {
	m := newTestModel(t, nil)
	m.chats["today"] = []domain.ChatSession{{ID: "c1", Name: "Old"}}
	cmd := m.submitPrompt(promptRenameChat, "c1", "   ")
	if cmd != nil {
		t.Fatalf("blank rename must not reach the server")
	}
	if m.err == nil || !strings.Contains(m.err.Error(), domain.ErrEmptyName.Error()) {
		t.Fatalf("expected empty name notice, got %v", m.err)
	}
}

func TestDeletingOpenChatStartsNewOne(t *testing.T) {
	m := withChat(newTestModel(t, nil), state.ChatRef{ID: "c1", Name: "x"})
	m, _ = update(m, mutationMsg{mutation: cache.DeleteChat, notice: "Chat deleted", chatID: "c1"})
	st := m.State()
	if !st.IsNewChat || st.Chat != nil {
		t.Fatalf("expected a new chat after deleting the open one: %+v", st)
	}
}

func TestActivityPageForOldFilterIgnored(t *testing.T) {
	m := newTestModel(t, nil)
	m.activity.Search("a@example.com")
	m, _ = update(m, activityMsg{filter: "", rows: []domain.UserActivity{{ID: "u1"}}})
	if n := len(m.table.Rows()); n != 0 {
		t.Fatalf("page for an old filter should be dropped, got %d rows", n)
	}
	m, _ = update(m, activityMsg{filter: m.activity.Filter(), rows: []domain.UserActivity{{ID: "u2", Email: "a@example.com"}}})
	if n := len(m.table.Rows()); n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
}

func TestBuildChatMarkdown(t *testing.T) {
	md := buildChatMarkdown([]domain.Message{
		{Role: domain.RoleUser, Content: "question", Status: domain.StatusFailed},
		{Role: domain.RoleAssistant, Content: "Something went wrong", Status: domain.StatusFailed},
		{Role: domain.RoleAssistant, Content: "answer", Citations: []domain.Citation{{Citation: "doc.pdf"}}},
		{Role: domain.RoleAssistantLoading, Content: "…"},
	})
	for _, want := range []string{"### You", "_not delivered_", "> Something went wrong", "1. doc.pdf", "_thinking…_"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestViewRendersPanels(t *testing.T) {
	m := newTestModel(t, nil)
	m.dispatch(state.ToggleHistory{})
	m.dispatch(state.OpenKnowledgeBase{})
	out := m.View()
	for _, want := range []string{"Scout", "New chat", "gpt-4o", "History", "Knowledge bases"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}
