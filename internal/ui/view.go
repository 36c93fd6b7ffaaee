package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"scout-tui/internal/dashboard"
	"scout-tui/internal/domain"
	"scout-tui/internal/state"
)

type chatItem struct {
	chat  domain.ChatSession
	group string
}

func (i chatItem) Title() string {
	name := shorten(i.chat.Name, 48)
	if name == "" {
		name = "Untitled chat"
	}
	if i.chat.Favorite {
		return "★ " + name
	}
	return name
}

func (i chatItem) Description() string {
	if i.chat.CreatedAt.IsZero() {
		return i.group
	}
	return i.group + " | " + humanize.Time(i.chat.CreatedAt.Time)
}

func (i chatItem) FilterValue() string { return i.chat.Name }

type kbItem struct {
	kb    domain.KnowledgeBase
	group string
}

func (i kbItem) Title() string {
	mark := "○ "
	if i.kb.Active {
		mark = "● "
	}
	return mark + shorten(i.kb.Name, 40)
}

func (i kbItem) Description() string {
	desc := i.group + " | " + english.Plural(len(i.kb.FilesIDs), "file", "")
	if !i.kb.UpdatedAt.IsZero() {
		desc += " | " + humanize.Time(i.kb.UpdatedAt.Time)
	}
	return desc
}

func (i kbItem) FilterValue() string { return i.kb.Name }

type menuItem struct {
	label  string
	action state.Action
}

// menu is the option list of the side panel on screen, or of the dashboard's
// settings tab while the dashboard is open.
func (m Model) menu() []menuItem {
	if m.st.DashboardOpen {
		return []menuItem{
			{"Review usage", state.EnterDashboardSettings{Kind: state.SettingsReviewUsage}},
			{"User lockout", state.EnterDashboardSettings{Kind: state.SettingsUserLockout}},
		}
	}
	switch m.st.RightPanel {
	case state.PanelProfile:
		return []menuItem{
			{"Knowledge bases", state.OpenKnowledgeBase{}},
			{"Settings", state.EnterSettings{Kind: state.SettingsDefault}},
			{"Usage settings", state.OpenUserSettings{}},
			{"Class management", state.OpenClassSettings{}},
		}
	case state.PanelSettings:
		return []menuItem{
			{"Chat settings", state.EnterSettings{Kind: state.SettingsChat}},
			{"Account settings", state.EnterSettings{Kind: state.SettingsAccount}},
			{"Terms and conditions", state.EnterSettings{Kind: state.SettingsTermsConditions}},
			{"Back to profile", state.OpenProfile{}},
		}
	case state.PanelDashboard:
		return []menuItem{
			{"Review usage", state.EnterDashboardSettings{Kind: state.SettingsReviewUsage}},
			{"User lockout", state.EnterDashboardSettings{Kind: state.SettingsUserLockout}},
			{"Back to profile", state.OpenProfile{}},
		}
	case state.PanelClassManagement:
		return []menuItem{
			{"Edit class", state.EnterClassSetting{Kind: state.SettingsEditClass}},
			{"New class", state.EnterClassSetting{Kind: state.SettingsNewClass}},
			{"Close", state.ClassManagement{Open: false}},
		}
	}
	return nil
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	left, center, right := m.paneWidths()
	body := m.bodyHeight()

	m.history.SetSize(max(left-4, 10), body-2)
	m.kbs.SetSize(max(right-4, 10), body-6)

	m.input.SetWidth(center - 4)
	m.viewport.Width = center - 4
	m.viewport.Height = body - m.input.Height() - 4
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}

	m.table.SetWidth(m.width - 4)
	tableHeight := body - 10
	if tableHeight < 3 {
		tableHeight = 3
	}
	m.table.SetHeight(tableHeight)
	m.help.Width = m.width
}

func (m Model) bodyHeight() int {
	h := m.height - 3
	if h < 10 {
		h = 10
	}
	return h
}

// paneWidths splits the screen between history, thread and side panel;
// closed panels get no width.
func (m Model) paneWidths() (left, center, right int) {
	if m.st.HistoryOpen {
		left = clamp(m.width/4, 24, 40)
	}
	if m.st.RightPanelOpen {
		right = clamp(m.width/4, 28, 44)
	}
	center = m.width - left - right
	if center < 24 {
		center = 24
	}
	return left, center, right
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Starting..."
	}

	body := m.bodyHeight()
	var main string
	if m.st.DashboardOpen {
		main = m.styles.panel(true).Width(m.width - 2).Height(body - 2).Render(m.dashboardView())
	} else {
		left, center, right := m.paneWidths()
		var panes []string
		if left > 0 {
			panes = append(panes, m.styles.panel(m.focus == focusHistory).Width(left-2).Height(body-2).Render(m.history.View()))
		}
		panes = append(panes, m.centerView(center, body))
		if right > 0 {
			panes = append(panes, m.styles.panel(m.focus == focusSide).Width(right-2).Height(body-2).Render(m.sideView()))
		}
		main = lipgloss.JoinHorizontal(lipgloss.Top, panes...)
	}

	footer := m.help.View(m.keys)
	if m.promptKind != promptNone {
		footer = m.prompt.View()
	} else if m.searchQuery != "" {
		footer = "search: " + m.searchQuery + "  " + footer
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerLine(),
		main,
		m.statusLine(),
		footer,
	)
}

func (m Model) headerLine() string {
	name := m.st.ChatName
	if m.st.IsNewChat || name == "" {
		name = "New chat"
	}
	if m.st.Chat != nil && m.st.Chat.Favorite {
		name = "★ " + name
	}
	left := "Scout | " + name
	right := fmt.Sprintf("%s | %s | %s", m.st.Model, m.st.Theme, m.initials())

	width := m.width - 2
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		left = ansi.Truncate(left, width-lipgloss.Width(right)-2, "…")
		gap = 1
	}
	return m.styles.header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) initials() string {
	u := m.st.User
	if u.Email == "" && u.FirstName == "" {
		return "?"
	}
	return domain.Initials(u.FirstName, u.LastName)
}

func (m Model) statusLine() string {
	var parts []string
	if m.thinking() {
		parts = append(parts, m.spinner.View()+" Scout is thinking")
	}
	if m.focus == focusChat && m.searchQuery != "" {
		parts = append(parts, m.matches.Status(m.searchQuery))
	}
	if m.status != "" {
		parts = append(parts, m.styles.notice.Render(shorten(m.status, 100)))
	}
	if m.err != nil {
		parts = append(parts, m.styles.errNotice.Render(shorten(m.err.Error(), 120)))
	}
	return strings.Join(parts, "  ")
}

func (m Model) centerView(width, height int) string {
	var thread string
	if m.st.IsNewChat && len(m.st.History) == 0 {
		thread = m.suggestionsView(width - 4)
	} else {
		thread = m.viewport.View()
	}
	threadBox := m.styles.panel(m.focus == focusChat).
		Width(width - 2).
		Height(height - m.input.Height() - 4).
		Render(thread)
	inputBox := m.styles.panel(m.focus == focusInput).
		Width(width - 2).
		Render(m.input.View())
	return lipgloss.JoinVertical(lipgloss.Left, threadBox, inputBox)
}

func (m Model) suggestionsView(width int) string {
	title := m.styles.title.Render("How can Scout help today?")
	pills := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		pills = append(pills, m.styles.suggestion.Render(s))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, pills...)
	if lipgloss.Width(row) > width {
		row = lipgloss.JoinVertical(lipgloss.Left, pills...)
	}
	hint := m.styles.muted.Render("ctrl+s puts a suggestion in the input")
	return lipgloss.JoinVertical(lipgloss.Left, title, "", row, "", hint)
}

func (m Model) sideView() string {
	switch m.st.RightPanel {
	case state.PanelKnowledgeBase:
		return m.kbView()
	case state.PanelProfile:
		return lipgloss.JoinVertical(lipgloss.Left, m.profileView(), "", m.menuView())
	case state.PanelSettings:
		head := m.styles.title.Render("Settings")
		lines := []string{
			head,
			"Theme: " + string(m.st.Theme) + m.styles.muted.Render("  (ctrl+t)"),
			"Model: " + m.st.Model + m.styles.muted.Render("  (m)"),
			"Section: " + string(m.st.Settings),
			"",
			m.menuView(),
		}
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	case state.PanelDashboard:
		return lipgloss.JoinVertical(lipgloss.Left, m.styles.title.Render("Usage settings"), m.styles.muted.Render("ctrl+d opens the dashboard"), "", m.menuView())
	case state.PanelClassManagement:
		return lipgloss.JoinVertical(lipgloss.Left, m.styles.title.Render("Class management"), "Section: "+string(m.st.Settings), "", m.menuView())
	default:
		return m.styles.muted.Render("No notifications")
	}
}

func (m Model) profileView() string {
	u := m.st.User
	lines := []string{
		m.styles.title.Render(m.initials() + "  " + u.DisplayName()),
		u.Email,
	}
	if !u.CreatedAt.IsZero() {
		lines = append(lines, m.styles.muted.Render("member since "+u.CreatedAt.Format("Jan 2006")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) menuView() string {
	items := m.menu()
	lines := make([]string, 0, len(items))
	for i, item := range items {
		if i == m.menuCursor {
			lines = append(lines, m.styles.selected.Render("> "+item.label))
		} else {
			lines = append(lines, "  "+item.label)
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) kbView() string {
	active := len(m.sel.ActiveIDs())
	head := m.styles.muted.Render(fmt.Sprintf("model %s | %d active", m.st.Model, active))
	keys := m.styles.muted.Render("space toggle  c create  C public  r rename  x delete  ctrl+u add files")
	return lipgloss.JoinVertical(lipgloss.Left, m.kbs.View(), head, keys)
}

func (m Model) dashboardView() string {
	tabs := []string{"Activity", "Usage settings"}
	current := 0
	if m.st.DashboardTab == state.TabUserSettings {
		current = 1
	}
	for i, t := range tabs {
		if i == current {
			tabs[i] = m.styles.selected.Render("[" + t + "]")
		} else {
			tabs[i] = m.styles.muted.Render(" " + t + " ")
		}
	}
	tabRow := strings.Join(tabs, " ") + m.styles.muted.Render("  (←/→)")

	if current == 1 {
		return lipgloss.JoinVertical(lipgloss.Left, tabRow, "", "Section: "+string(m.st.Settings), "", m.menuView())
	}

	totals := m.agg.Totals()
	widgets := make([]string, 0, len(dashboard.Metrics))
	for _, metric := range dashboard.Metrics {
		value := m.styles.widgetValue.Render(humanize.Comma(int64(totals[metric])))
		widgets = append(widgets, m.styles.widget.Render(metric.Label()+"\n"+value))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, widgets...)
	if !m.agg.Complete() {
		row = lipgloss.JoinVertical(lipgloss.Left, row, m.styles.muted.Render(m.spinner.View()+" loading totals"))
	}

	foot := english.Plural(len(m.table.Rows()), "row", "")
	if m.activitySearch != "" {
		foot = "search " + strconv.Quote(m.activitySearch) + " | " + foot
	}
	if m.activity.Done() {
		foot += " | end of report"
	} else {
		foot += " | l load more"
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabRow, row, m.table.View(), m.styles.muted.Render(foot))
}

func activityColumns() []table.Column {
	return []table.Column{
		{Title: "Email", Width: 28},
		{Title: "Chats", Width: 6},
		{Title: "Questions", Width: 9},
		{Title: "Resumed", Width: 8},
		{Title: "Docs", Width: 5},
		{Title: "Uploaded", Width: 9},
		{Title: "KBs", Width: 4},
		{Title: "Last message", Width: 16},
	}
}

func activityRows(in []domain.UserActivity) []table.Row {
	rows := make([]table.Row, 0, len(in))
	for _, u := range in {
		last := "n/a"
		if !u.LastMessageAt.IsZero() {
			last = humanize.Time(u.LastMessageAt.Time)
		}
		rows = append(rows, table.Row{
			u.Email,
			strconv.Itoa(u.NewChat),
			strconv.Itoa(u.QuestionsAsked),
			strconv.Itoa(u.ChatsResumed),
			strconv.Itoa(u.DocumentsUploaded),
			humanize.Bytes(uint64(max(u.DocumentsUploadTotalSizeBytes, 0))),
			strconv.Itoa(u.KnowledgeBaseCreated),
			last,
		})
	}
	return rows
}

func shorten(s string, n int) string {
	s = strings.TrimSpace(s)
	if len([]rune(s)) <= n {
		return s
	}
	if n <= 3 {
		return string([]rune(s)[:n])
	}
	return string([]rune(s)[:n-3]) + "..."
}
