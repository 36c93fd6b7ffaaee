package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"scout-tui/internal/chatflow"
	"scout-tui/internal/state"
)

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.promptKind != promptNone {
		return m.updatePrompt(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Tab):
		m.cycleFocus()
		return m, nil
	case key.Matches(msg, m.keys.Esc):
		if m.st.DashboardOpen {
			cmd := m.openDashboard(false)
			return m, cmd
		}
		m.setFocus(focusInput)
		return m, nil
	case key.Matches(msg, m.keys.History):
		cmd := m.dispatch(state.ToggleHistory{})
		if m.st.HistoryOpen {
			m.setFocus(focusHistory)
		} else if m.focus == focusHistory {
			m.setFocus(focusInput)
		}
		return m, cmd
	case key.Matches(msg, m.keys.RightPanel):
		cmd := m.dispatch(state.ToggleRightPanel{})
		m.menuCursor = 0
		if !m.st.RightPanelOpen && m.focus == focusSide {
			m.setFocus(focusInput)
		}
		return m, cmd
	case key.Matches(msg, m.keys.KnowledgeBs):
		cmd := m.dispatch(state.OpenKnowledgeBase{})
		m.setFocus(focusSide)
		return m, tea.Batch(cmd, m.kbsCmd())
	case key.Matches(msg, m.keys.Profile):
		var cmd tea.Cmd
		if m.st.RightPanelOpen {
			cmd = m.dispatch(state.OpenProfile{})
		} else {
			cmd = m.dispatch(state.ToggleProfile{})
		}
		m.menuCursor = 0
		m.setFocus(focusSide)
		return m, cmd
	case key.Matches(msg, m.keys.Settings):
		cmd := m.dispatch(state.EnterSettings{Kind: state.SettingsDefault})
		m.menuCursor = 0
		m.setFocus(focusSide)
		return m, cmd
	case key.Matches(msg, m.keys.Dashboard):
		cmd := m.openDashboard(!m.st.DashboardOpen)
		return m, cmd
	case key.Matches(msg, m.keys.NewChat):
		cmd := m.startNewChat()
		return m, cmd
	case key.Matches(msg, m.keys.Theme):
		cmd := m.dispatch(state.ToggleTheme{})
		return m, tea.Batch(cmd, m.saveThemeCmd(m.st.Theme))
	case key.Matches(msg, m.keys.Favorite):
		if m.st.Chat == nil {
			m.fail("Open a chat first", nil)
			return m, nil
		}
		return m, m.favoriteCmd(m.st.Chat.ID)
	case key.Matches(msg, m.keys.Export):
		if m.st.Chat == nil || m.exporter == nil {
			m.fail("Nothing to export", nil)
			return m, nil
		}
		return m, m.exportCmd()
	case key.Matches(msg, m.keys.CopyLink):
		if m.st.Chat == nil {
			m.fail("Open a chat first", nil)
			return m, nil
		}
		return m, m.copyLinkCmd()
	case key.Matches(msg, m.keys.Upload):
		if m.focus == focusSide && m.st.RightPanel == state.PanelKnowledgeBase {
			if kb, ok := m.selectedKB(); ok {
				m.openPrompt(promptUpload, kb.ID, "Files to add to "+kb.Name+" (space separated)", "")
			}
			return m, nil
		}
		if m.st.Chat == nil {
			m.fail("You can only upload a file to an existing chat", chatflow.ErrNoActiveChat)
			return m, nil
		}
		m.openPrompt(promptUpload, "", "Files to add to this chat (space separated)", "")
		return m, nil
	case key.Matches(msg, m.keys.Suggest):
		if m.st.IsNewChat {
			m.input.SetValue(suggestions[m.suggestion])
			m.suggestion = (m.suggestion + 1) % len(suggestions)
			m.setFocus(focusInput)
		}
		return m, nil
	}

	switch m.focus {
	case focusChat:
		return m.updateChatKeys(msg)
	case focusHistory:
		return m.updateHistoryKeys(msg)
	case focusSide:
		return m.updateSideKeys(msg)
	case focusDashboard:
		return m.updateDashboardKeys(msg)
	}

	if key.Matches(msg, m.keys.Send) {
		cmd := m.send()
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		kind := m.promptKind
		m.closePrompt()
		if kind == promptSearch {
			m.clearSearch()
		}
		return m, nil
	case "enter":
		kind, target := m.promptKind, m.promptTarget
		value := strings.TrimSpace(m.prompt.Value())
		m.closePrompt()
		cmd := m.submitPrompt(kind, target, value)
		return m, cmd
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	if m.promptKind == promptSearch {
		m.searchQuery = strings.TrimSpace(m.prompt.Value())
		m.applySearch()
	}
	return m, cmd
}

func (m Model) updateChatKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.openPrompt(promptSearch, "", "Search this chat...", m.searchQuery)
	case key.Matches(msg, m.keys.NextMatch):
		m.jumpMatch(true)
	case key.Matches(msg, m.keys.PrevMatch):
		m.jumpMatch(false)
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
	}
	return m, nil
}

func (m Model) updateHistoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Open):
		if chat, ok := m.selectedChat(); ok {
			cmd := m.openChat(chat)
			return m, cmd
		}
		return m, nil
	case key.Matches(msg, m.keys.Rename):
		if chat, ok := m.selectedChat(); ok {
			m.openPrompt(promptRenameChat, chat.ID, "New chat name", chat.Name)
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if chat, ok := m.selectedChat(); ok {
			return m, m.deleteChatCmd(chat.ID)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.history, cmd = m.history.Update(msg)
	return m, cmd
}

func (m Model) updateSideKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.st.RightPanel == state.PanelKnowledgeBase {
		return m.updateKBKeys(msg)
	}
	return m.updateMenuKeys(msg)
}

func (m Model) updateMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.menu()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.menuCursor < len(items)-1 {
			m.menuCursor++
		}
	case key.Matches(msg, m.keys.Open):
		if m.menuCursor < len(items) {
			item := items[m.menuCursor]
			m.menuCursor = 0
			cmd := m.dispatch(item.action)
			if _, ok := item.action.(state.OpenKnowledgeBase); ok {
				return m, tea.Batch(cmd, m.kbsCmd())
			}
			return m, cmd
		}
	case key.Matches(msg, m.keys.Model):
		cmd := m.nextModel()
		return m, cmd
	}
	return m, nil
}

func (m Model) updateKBKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Toggle):
		cmd := m.toggleKB()
		return m, cmd
	case key.Matches(msg, m.keys.Create):
		m.openPrompt(promptCreateKB, "", "Knowledge base name", "")
		return m, nil
	case key.Matches(msg, m.keys.CreatePub):
		m.openPrompt(promptCreatePublicKB, "", "Public knowledge base name", "")
		return m, nil
	case key.Matches(msg, m.keys.Rename):
		if kb, ok := m.selectedKB(); ok {
			m.openPrompt(promptRenameKB, kb.ID, "New knowledge base name", kb.Name)
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if kb, ok := m.selectedKB(); ok {
			return m, m.deleteKBCmd(kb.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.Model):
		cmd := m.nextModel()
		return m, cmd
	}
	var cmd tea.Cmd
	m.kbs, cmd = m.kbs.Update(msg)
	return m, cmd
}

func (m Model) updateDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left":
		cmd := m.dispatch(state.SetDashboardTab{Tab: state.TabUserActivity})
		return m, cmd
	case "right":
		cmd := m.dispatch(state.SetDashboardTab{Tab: state.TabUserSettings})
		return m, cmd
	}
	if m.st.DashboardTab == state.TabUserSettings {
		return m.updateMenuKeys(msg)
	}
	switch {
	case key.Matches(msg, m.keys.Search):
		m.openPrompt(promptActivitySearch, "", "Search by email...", m.activitySearch)
		return m, nil
	case key.Matches(msg, m.keys.More):
		if m.activity.Done() {
			m.notify("No more activity")
			return m, nil
		}
		return m, m.activityCmd()
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}
