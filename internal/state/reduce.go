package state

import "scout-tui/internal/domain"

// Reduce returns the state after applying a. s is never modified; fields a
// does not concern are carried over as they are. Unknown actions return s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case ToggleHistory:
		s.HistoryOpen = !s.HistoryOpen
	case ToggleRightPanel, ToggleProfile:
		s.RightPanelOpen = !s.RightPanelOpen
		s.RightPanel = PanelProfile
	case OpenProfile:
		s.RightPanel = PanelProfile
	case OpenKnowledgeBase:
		s.RightPanelOpen = true
		s.RightPanel = PanelKnowledgeBase
	case OpenUserSettings:
		s.RightPanel = PanelDashboard
	case OpenClassSettings:
		s.RightPanel = PanelClassManagement
	case ToggleUserSettings:
		s.RightPanelOpen = !s.RightPanelOpen
		s.RightPanel = PanelDashboard
	case EnterSettings:
		s = enterSettings(s, a.Kind)
	case EnterDashboardSettings:
		s = enterSettings(s, a.Kind)
	case EnterClassSetting:
		s = enterSettings(s, a.Kind)
	case ClassManagement:
		s.RightPanelOpen = a.Open
		s.RightPanel = PanelClassManagement
	case ToggleTheme:
		s.Theme = s.Theme.Toggle()
	case StartNewChat:
		s.IsNewChat = true
		s.Chat = nil
	case LoadChat:
		s.IsNewChat = false
		s.Chat = nil
	case SetChatIdentity:
		ref := a.Chat
		s.IsNewChat = false
		s.Chat = &ref
		s.ChatName = ref.Name
	case SetHistory:
		s.History = append(make([]domain.Message, 0, len(a.Messages)), a.Messages...)
		s.ScrollTrigger++
	case SetUser:
		s.User = a.Profile
	case SetModel:
		s.Model = a.Model
	case RenameChat:
		s.ChatName = a.Name
	case ToggleDashboard:
		s.DashboardOpen = a.Open
	case SetDashboardTab:
		s.DashboardTab = a.Tab
	}
	return s
}

func enterSettings(s State, kind Settings) State {
	s.RightPanelOpen = true
	s.Settings = kind
	s.RightPanel = PanelSettings
	return s
}
