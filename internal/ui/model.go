// Package ui is the interactive terminal client. Update is the only place
// UI state changes: every state transition goes through state.Reduce there,
// and network calls run as commands that report back as messages.
package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"scout-tui/internal/api"
	"scout-tui/internal/cache"
	"scout-tui/internal/chatflow"
	"scout-tui/internal/clipboard"
	"scout-tui/internal/config"
	"scout-tui/internal/dashboard"
	"scout-tui/internal/domain"
	"scout-tui/internal/export"
	"scout-tui/internal/highlight"
	"scout-tui/internal/history"
	"scout-tui/internal/kbselect"
	"scout-tui/internal/logging"
	"scout-tui/internal/prefs"
	"scout-tui/internal/state"
)

// suggestions are offered while a chat is new.
var suggestions = []string{
	"What should I work on today?",
	"Summarize my unread emails today",
}

type focus int

const (
	focusInput focus = iota
	focusChat
	focusHistory
	focusSide
	focusDashboard
)

type promptKind int

const (
	promptNone promptKind = iota
	promptSearch
	promptActivitySearch
	promptCreateKB
	promptCreatePublicKB
	promptRenameKB
	promptRenameChat
	promptUpload
)

// Deps are the collaborators the model talks to. Prefs and Exporter may be
// nil; Logger and Now have defaults.
type Deps struct {
	Client   *api.Client
	Cache    *cache.Cache
	Prefs    *prefs.Store
	Exporter *export.Exporter
	Logger   *slog.Logger
	Now      func() time.Time
}

type Model struct {
	cfg      config.AppConfig
	client   *api.Client
	cache    *cache.Cache
	prefs    *prefs.Store
	exporter *export.Exporter
	flow     *chatflow.Flow
	activity *dashboard.Activity
	log      *slog.Logger
	now      func() time.Time

	st     state.State
	styles styles
	keys   keyMap

	history  list.Model
	kbs      list.Model
	viewport viewport.Model
	input    textarea.Model
	prompt   textinput.Model
	table    table.Model
	help     help.Model
	spinner  spinner.Model

	width  int
	height int

	focus        focus
	promptKind   promptKind
	promptTarget string

	chats      map[string][]domain.ChatSession
	mine       []domain.KnowledgeBase
	others     []domain.KnowledgeBase
	predefined []domain.KnowledgeBase
	sel        kbselect.Selection

	agg            dashboard.Aggregates
	activitySearch string
	menuCursor     int
	suggestion     int

	rendered    string
	renderNonce int
	lastScroll  int
	searchQuery string
	matches     highlight.Result
	matchLine   int

	status string
	err    error
}

func NewModel(cfg config.AppConfig, deps Deps) Model {
	log := deps.Logger
	if log == nil {
		log = logging.Discard()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	c := deps.Cache
	if c == nil {
		c = cache.New()
	}

	theme := state.ThemeDark
	var sel kbselect.Selection
	if deps.Prefs != nil {
		ctx := context.Background()
		if t, err := deps.Prefs.Theme(ctx); err == nil {
			theme = t
		} else {
			log.Warn("read theme preference", "err", err)
		}
		if s, err := deps.Prefs.Selection(ctx); err == nil {
			sel = s
		} else {
			log.Warn("read knowledge base selection", "err", err)
		}
	}

	hl := list.New([]list.Item{}, list.NewDefaultDelegate(), 30, 20)
	hl.Title = "History"
	configureList(&hl)

	kl := list.New([]list.Item{}, list.NewDefaultDelegate(), 30, 20)
	kl.Title = "Knowledge bases"
	configureList(&kl)

	vp := viewport.New(60, 20)

	ta := textarea.New()
	ta.Placeholder = "Ask Scout..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 8000
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))
	ta.Focus()

	ti := textinput.New()
	ti.CharLimit = 512

	tbl := table.New(
		table.WithColumns(activityColumns()),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	h := help.New()
	h.ShowAll = false

	sp := spinner.New()
	sp.Spinner = spinner.Points

	return Model{
		cfg:      cfg,
		client:   deps.Client,
		cache:    c,
		prefs:    deps.Prefs,
		exporter: deps.Exporter,
		flow:     chatflow.New(deps.Client),
		activity: dashboard.NewActivity(deps.Client),
		log:      log,
		now:      now,

		st:     state.Initial(theme, cfg.Model),
		styles: newStyles(theme),
		keys:   defaultKeys(),

		history:  hl,
		kbs:      kl,
		viewport: vp,
		input:    ta,
		prompt:   ti,
		table:    tbl,
		help:     h,
		spinner:  sp,

		chats:     make(map[string][]domain.ChatSession),
		sel:       sel,
		matchLine: -1,
	}
}

func configureList(l *list.Model) {
	l.SetShowFilter(false)
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textarea.Blink, m.meCmd(), m.historyCmds(), m.kbsCmd())
}

// State returns the current UI state.
func (m Model) State() state.State { return m.st }

// dispatch applies a through the reducer and returns the follow-up work the
// change needs, such as re-rendering the thread.
func (m *Model) dispatch(a state.Action) tea.Cmd {
	prev := m.st
	m.st = state.Reduce(m.st, a)
	if m.st.HistoryOpen != prev.HistoryOpen || m.st.RightPanelOpen != prev.RightPanelOpen || m.st.DashboardOpen != prev.DashboardOpen {
		m.resize()
	}
	if m.st.Theme != prev.Theme {
		m.styles = newStyles(m.st.Theme)
		return m.renderChat()
	}
	if m.st.ScrollTrigger != prev.ScrollTrigger {
		return m.renderChat()
	}
	return nil
}

func (m *Model) renderChat() tea.Cmd {
	scroll := m.st.ScrollTrigger != m.lastScroll
	m.lastScroll = m.st.ScrollTrigger
	m.renderNonce++
	if len(m.st.History) == 0 {
		m.rendered = ""
		m.applySearch()
		return nil
	}
	wrap := m.viewport.Width - 2
	if wrap < 20 {
		wrap = 20
	}
	return m.renderCmd(m.st.History, m.st.Theme, wrap, m.renderNonce, scroll)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		cmds = append(cmds, m.renderChat())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case meMsg:
		if msg.err != nil {
			m.fail("Could not load profile", msg.err)
			break
		}
		cmds = append(cmds, m.dispatch(state.SetUser{Profile: msg.profile}))

	case historyMsg:
		if msg.err != nil {
			m.fail("Could not load chats", msg.err)
		}
		m.chats[msg.group] = msg.chats
		m.applyHistory()

	case kbsMsg:
		if msg.err != nil {
			m.fail("Could not load knowledge bases", msg.err)
		}
		cmds = append(cmds, m.applyKBs(msg))

	case chatCreatedMsg:
		if msg.err != nil {
			m.fail("Chat couldn't be created", msg.err)
			break
		}
		m.status = ""
		m.cache.Apply(cache.CreateChat)
		cmds = append(cmds,
			m.dispatch(state.SetChatIdentity{Chat: msg.chat}),
			m.historyCmd(history.Today),
			m.loadChatCmd(msg.chat.ID),
		)

	case chatLoadedMsg:
		if msg.err != nil {
			m.fail("Chat couldn't be loaded", msg.err)
			break
		}
		if msg.chat.ID != m.st.ChatID() {
			break
		}
		hist, ask := m.flow.Open(msg.chat, m.st.History)
		cmds = append(cmds,
			m.dispatch(state.SetChatIdentity{Chat: state.RefOf(msg.chat)}),
			m.dispatch(state.SetHistory{Messages: hist}),
		)
		if ask != "" {
			cmds = append(cmds, m.askCmd(m.request(ask)))
		}

	case answerMsg:
		m.cache.Invalidate(cache.K(cache.Chat, msg.chatID))
		if msg.chatID != m.st.ChatID() {
			m.log.Debug("answer for a chat no longer open", "chat", msg.chatID)
			break
		}
		if !msg.resp.Success {
			m.log.Warn("ask failed", "chat", msg.chatID, "status", msg.resp.StatusCode, "msg", msg.resp.Message)
			m.fail("Scout couldn't answer", msg.resp.Err())
		}
		cmds = append(cmds, m.dispatch(state.SetHistory{Messages: m.flow.Resolve(m.st.History, msg.text, msg.resp)}))

	case favoriteMsg:
		if msg.err != nil {
			m.fail("Could not update favorite", msg.err)
			break
		}
		m.cache.Apply(cache.FavoriteChat)
		m.cache.Invalidate(cache.K(cache.Chat, msg.chatID))
		if m.st.Chat != nil && m.st.Chat.ID == msg.chatID {
			ref := *m.st.Chat
			ref.Favorite = msg.favorite
			cmds = append(cmds, m.dispatch(state.SetChatIdentity{Chat: ref}))
		}
		if msg.favorite {
			m.notify("Added to favorites")
		} else {
			m.notify("Removed from favorites")
		}
		cmds = append(cmds, m.historyCmds())

	case mutationMsg:
		if msg.err != nil {
			m.fail("Request failed", msg.err)
			break
		}
		m.cache.Apply(msg.mutation)
		m.notify(msg.notice)
		cmds = append(cmds, m.afterMutation(msg))

	case uploadMsg:
		if msg.err != nil {
			if errors.Is(msg.err, chatflow.ErrNoActiveChat) {
				m.fail("You can only upload a file to an existing chat", nil)
			} else {
				m.fail("Upload failed", msg.err)
			}
			break
		}
		m.cache.Apply(cache.AddFilesToKB)
		m.notify(msg.notice)
		if msg.result != nil {
			if failed := msg.result.Failed(); len(failed) > 0 {
				m.fail("Some files could not be embedded: "+strings.Join(failed, ", "), nil)
			}
		}
		cmds = append(cmds, m.kbsCmd())

	case aggregatesMsg:
		m.agg = msg.agg

	case activityMsg:
		if msg.filter != m.activity.Filter() {
			break
		}
		if msg.err != nil {
			m.fail("Could not load activity", msg.err)
		}
		m.table.SetRows(activityRows(msg.rows))

	case exportMsg:
		if msg.err != nil {
			m.fail("Export failed", msg.err)
		} else {
			m.notify("Exported: " + msg.path)
		}

	case copyMsg:
		switch {
		case errors.Is(msg.err, clipboard.ErrToolNotFound):
			m.fail("Could not copy: clipboard tool not found", nil)
		case msg.err != nil:
			m.fail("Could not copy", msg.err)
		default:
			m.notify("Link copied to clipboard")
		}

	case prefsMsg:
		if msg.err != nil {
			m.log.Warn("save preference", "err", msg.err)
			m.fail("Could not save preference", msg.err)
		}

	case renderMsg:
		if msg.nonce != m.renderNonce {
			break
		}
		if msg.err != nil {
			m.log.Warn("render markdown", "err", msg.err)
		}
		m.rendered = msg.rendered
		m.applySearch()
		if msg.scroll {
			m.viewport.GotoBottom()
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) afterMutation(msg mutationMsg) tea.Cmd {
	switch msg.mutation {
	case cache.RenameChat:
		m.cache.Invalidate(cache.K(cache.Chat, msg.chatID))
		var cmd tea.Cmd
		if m.st.ChatID() == msg.chatID {
			cmd = m.dispatch(state.RenameChat{Name: msg.name})
		}
		return tea.Batch(cmd, m.historyCmds())
	case cache.DeleteChat:
		m.cache.Invalidate(cache.K(cache.Chat, msg.chatID))
		var cmds []tea.Cmd
		if m.st.ChatID() == msg.chatID {
			cmds = append(cmds, m.startNewChat())
		}
		return tea.Batch(append(cmds, m.historyCmds())...)
	default:
		return m.kbsCmd()
	}
}

func (m *Model) notify(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	m.status = s
	m.err = nil
}

// fail shows s as an error notice, followed by err when there is one.
func (m *Model) fail(s string, err error) {
	if err != nil {
		s += ": " + err.Error()
	}
	m.status = ""
	m.err = errors.New(s)
}

func (m Model) request(text string) chatflow.Request {
	req := chatflow.Request{
		ChatID: m.st.ChatID(),
		Text:   text,
		Active: m.sel.ActiveIDs(),
		Model:  m.st.Model,
	}
	if m.st.Chat != nil {
		req.ChatKB = m.st.Chat.KBID
	}
	return req
}

func (m *Model) send() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		m.fail(domain.ErrEmptyMessage.Error(), nil)
		return nil
	}
	m.input.Reset()
	m.clearSearch()
	if m.st.Chat == nil {
		m.notify("Creating chat...")
		return m.createChatCmd(text)
	}
	return tea.Batch(
		m.dispatch(state.SetHistory{Messages: m.flow.Begin(m.st.History, text)}),
		m.askCmd(m.request(text)),
	)
}

func (m *Model) startNewChat() tea.Cmd {
	m.input.Reset()
	m.clearSearch()
	m.suggestion = 0
	m.setFocus(focusInput)
	return tea.Batch(
		m.dispatch(state.StartNewChat{}),
		m.dispatch(state.SetHistory{}),
	)
}

func (m *Model) openChat(chat domain.ChatSession) tea.Cmd {
	m.clearSearch()
	m.setFocus(focusInput)
	return tea.Batch(
		m.dispatch(state.LoadChat{}),
		m.dispatch(state.SetChatIdentity{Chat: state.RefOf(chat)}),
		m.dispatch(state.SetHistory{}),
		m.loadChatCmd(chat.ID),
	)
}

func (m *Model) applyHistory() {
	var items []list.Item
	for _, g := range history.Groups {
		for _, c := range m.chats[g.Name] {
			items = append(items, chatItem{chat: c, group: g.Title})
		}
	}
	m.history.SetItems(items)
}

func (m *Model) applyKBs(msg kbsMsg) tea.Cmd {
	m.mine, m.others, m.predefined = msg.mine, msg.others, msg.predefined
	var cmd tea.Cmd
	// A failed listing comes back empty; syncing then would forget its flags.
	if msg.err == nil {
		m.sel = kbselect.Sync(m.sel, m.mine, m.others, m.predefined)
		cmd = m.saveSelectionCmd(m.sel)
	}
	m.refreshKBs()
	return cmd
}

func (m *Model) refreshKBs() {
	var items []list.Item
	add := func(group string, kbs []domain.KnowledgeBase) {
		for _, kb := range kbselect.Merge(kbs, m.sel) {
			items = append(items, kbItem{kb: kb, group: group})
		}
	}
	add("Mine", m.mine)
	add("Shared", m.others)
	add("Predefined", m.predefined)
	m.kbs.SetItems(items)
}

func (m Model) selectedChat() (domain.ChatSession, bool) {
	item, ok := m.history.SelectedItem().(chatItem)
	return item.chat, ok
}

func (m Model) selectedKB() (domain.KnowledgeBase, bool) {
	item, ok := m.kbs.SelectedItem().(kbItem)
	return item.kb, ok
}

func (m Model) chatByID(id string) (domain.ChatSession, bool) {
	for _, chats := range m.chats {
		for _, c := range chats {
			if c.ID == id {
				return c, true
			}
		}
	}
	return domain.ChatSession{}, false
}

func (m Model) kbByID(id string) (domain.KnowledgeBase, bool) {
	for _, kbs := range [][]domain.KnowledgeBase{m.mine, m.others, m.predefined} {
		for _, kb := range kbs {
			if kb.ID == id {
				return kb, true
			}
		}
	}
	return domain.KnowledgeBase{}, false
}

func (m *Model) toggleKB() tea.Cmd {
	kb, ok := m.selectedKB()
	if !ok {
		return nil
	}
	m.sel, kb = kbselect.Toggle(m.sel, kb)
	m.refreshKBs()
	if kb.Active {
		m.notify(kb.Name + " is active")
	} else {
		m.notify(kb.Name + " is inactive")
	}
	return m.saveSelectionCmd(m.sel)
}

func (m *Model) nextModel() tea.Cmd {
	next := config.Models[0]
	for i, name := range config.Models {
		if name == m.st.Model {
			next = config.Models[(i+1)%len(config.Models)]
			break
		}
	}
	m.notify("Model: " + next)
	return m.dispatch(state.SetModel{Model: next})
}

func (m *Model) openDashboard(open bool) tea.Cmd {
	cmd := m.dispatch(state.ToggleDashboard{Open: open})
	if !open {
		m.setFocus(focusInput)
		return cmd
	}
	m.setFocus(focusDashboard)
	cmds := []tea.Cmd{cmd, m.aggregatesCmd()}
	if m.activity.Search(m.activitySearch) || len(m.activity.Rows()) == 0 {
		m.table.SetRows(nil)
		cmds = append(cmds, m.activityCmd())
	}
	return tea.Batch(cmds...)
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

// focusOrder lists the focusable areas currently on screen.
func (m Model) focusOrder() []focus {
	if m.st.DashboardOpen {
		return []focus{focusDashboard}
	}
	order := []focus{focusInput, focusChat}
	if m.st.HistoryOpen {
		order = append(order, focusHistory)
	}
	if m.st.RightPanelOpen {
		order = append(order, focusSide)
	}
	return order
}

func (m *Model) cycleFocus() {
	order := m.focusOrder()
	for i, f := range order {
		if f == m.focus {
			m.setFocus(order[(i+1)%len(order)])
			return
		}
	}
	m.setFocus(order[0])
}

func (m *Model) openPrompt(kind promptKind, target, placeholder, value string) {
	m.promptKind = kind
	m.promptTarget = target
	m.prompt.Placeholder = placeholder
	m.prompt.Prompt = "> "
	if kind == promptSearch || kind == promptActivitySearch {
		m.prompt.Prompt = "/ "
	}
	m.prompt.SetValue(value)
	m.prompt.CursorEnd()
	m.prompt.Focus()
	m.input.Blur()
}

func (m *Model) closePrompt() {
	m.promptKind = promptNone
	m.promptTarget = ""
	m.prompt.Blur()
	m.prompt.SetValue("")
	if m.focus == focusInput {
		m.input.Focus()
	}
}

func (m *Model) submitPrompt(kind promptKind, target, value string) tea.Cmd {
	switch kind {
	case promptSearch:
		m.searchQuery = value
		m.matchLine = -1
		m.applySearch()
		m.jumpMatch(true)
	case promptActivitySearch:
		m.activitySearch = value
		if m.activity.Search(value) {
			m.table.SetRows(nil)
			return m.activityCmd()
		}
	case promptCreateKB, promptCreatePublicKB:
		name, err := domain.ValidateName(value)
		if err != nil {
			m.fail(err.Error(), nil)
			return nil
		}
		return m.createKBCmd(name, kind == promptCreatePublicKB)
	case promptRenameKB:
		name, err := domain.ValidateName(value)
		if err != nil {
			m.fail(err.Error(), nil)
			return nil
		}
		if kb, ok := m.kbByID(target); ok {
			return m.renameKBCmd(kb, name)
		}
	case promptRenameChat:
		name, err := domain.ValidateName(value)
		if err != nil {
			m.fail(err.Error(), nil)
			return nil
		}
		if chat, ok := m.chatByID(target); ok {
			return m.renameChatCmd(chat, name)
		}
	case promptUpload:
		paths := strings.Fields(value)
		if len(paths) == 0 {
			m.fail(api.ErrNoFiles.Error(), nil)
			return nil
		}
		m.notify("Uploading...")
		if kb, ok := m.kbByID(target); ok {
			return m.uploadCmd(nil, &kb, paths)
		}
		return m.uploadCmd(m.st.Chat, nil, paths)
	}
	return nil
}

func (m *Model) clearSearch() {
	m.searchQuery = ""
	m.matchLine = -1
	m.applySearch()
}

func (m *Model) applySearch() {
	q := strings.TrimSpace(m.searchQuery)
	if q == "" {
		m.matches = highlight.Result{}
		m.viewport.SetContent(m.rendered)
		return
	}
	m.matches = highlight.Apply(m.rendered, q, func(s string) string {
		return m.styles.searchMatch.Render(s)
	})
	m.viewport.SetContent(m.matches.Text)
}

func (m *Model) jumpMatch(forward bool) {
	q := strings.TrimSpace(m.searchQuery)
	if q == "" {
		return
	}
	line := m.matches.Prev(m.matchLine)
	if forward {
		line = m.matches.Next(m.matchLine)
	}
	if line >= 0 {
		m.matchLine = line
		m.viewport.SetYOffset(line)
	}
	m.notify(m.matches.Status(q))
}

func (m Model) thinking() bool {
	for _, msg := range m.st.History {
		if msg.IsLoading() {
			return true
		}
	}
	return false
}
