// Package state holds the client's UI state and the pure reducer that is the
// only way to change it.
package state

import "scout-tui/internal/domain"

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme maps a stored preference to a Theme; anything but "light" is dark.
func ParseTheme(s string) Theme {
	if s == string(ThemeLight) {
		return ThemeLight
	}
	return ThemeDark
}

func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

type RightPanel string

const (
	PanelProfile         RightPanel = "profile"
	PanelKnowledgeBase   RightPanel = "knowledge_base"
	PanelNotifications   RightPanel = "notifications"
	PanelSettings        RightPanel = "settings"
	PanelDashboard       RightPanel = "dashboard"
	PanelClassManagement RightPanel = "class_management"
)

type Settings string

const (
	SettingsDefault         Settings = "default"
	SettingsChat            Settings = "chat_settings"
	SettingsAccount         Settings = "account_settings"
	SettingsTermsConditions Settings = "terms_conditions"
	SettingsUserLockout     Settings = "user_lockout"
	SettingsReviewUsage     Settings = "review_usage"
	SettingsEditClass       Settings = "edit_class"
	SettingsNewClass        Settings = "new_class"
)

type DashboardTab string

const (
	TabUserSettings DashboardTab = "UserSettings"
	TabUserActivity DashboardTab = "UserActivityDashboard"
)

const DefaultModel = "gemini-1.5-pro"

// ChatRef is the identity of the chat on screen.
type ChatRef struct {
	ID       string
	Name     string
	KBID     string
	Favorite bool
}

func RefOf(c domain.ChatSession) ChatRef {
	return ChatRef{ID: c.ID, Name: c.Name, KBID: c.KBID, Favorite: c.Favorite}
}

type State struct {
	HistoryOpen    bool
	RightPanelOpen bool
	DashboardOpen  bool
	DashboardTab   DashboardTab
	RightPanel     RightPanel
	Settings       Settings
	Theme          Theme
	IsNewChat      bool
	Chat           *ChatRef
	ChatName       string
	History        []domain.Message
	User           domain.UserProfile
	Model          string
	// ScrollTrigger changes whenever the view should scroll to the bottom.
	ScrollTrigger int
}

func Initial(theme Theme, model string) State {
	if model == "" {
		model = DefaultModel
	}
	if theme == "" {
		theme = ThemeDark
	}
	return State{
		DashboardTab: TabUserActivity,
		RightPanel:   PanelProfile,
		Settings:     SettingsDefault,
		Theme:        theme,
		IsNewChat:    true,
		History:      []domain.Message{},
		Model:        model,
	}
}

// ChatID returns the active chat id, or "" for a new chat.
func (s State) ChatID() string {
	if s.Chat == nil {
		return ""
	}
	return s.Chat.ID
}
