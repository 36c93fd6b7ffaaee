package state

import "scout-tui/internal/domain"

// Action is the closed set of state changes. Only types in this package
// implement it.
type Action interface {
	action()
}

type (
	ToggleHistory      struct{}
	ToggleRightPanel   struct{}
	ToggleProfile      struct{}
	OpenProfile        struct{}
	OpenKnowledgeBase  struct{}
	OpenUserSettings   struct{}
	OpenClassSettings  struct{}
	ToggleUserSettings struct{}
	ToggleTheme        struct{}
	StartNewChat       struct{}
	LoadChat           struct{}

	EnterSettings          struct{ Kind Settings }
	EnterDashboardSettings struct{ Kind Settings }
	EnterClassSetting      struct{ Kind Settings }
	ClassManagement        struct{ Open bool }

	SetChatIdentity struct{ Chat ChatRef }
	SetHistory      struct{ Messages []domain.Message }
	SetUser         struct{ Profile domain.UserProfile }
	SetModel        struct{ Model string }
	RenameChat      struct{ Name string }
	ToggleDashboard struct{ Open bool }
	SetDashboardTab struct{ Tab DashboardTab }
)

func (ToggleHistory) action() {}
func (ToggleRightPanel) action() {}
func (ToggleProfile) action() {}
func (OpenProfile) action() {}
func (OpenKnowledgeBase) action() {}
func (OpenUserSettings) action() {}
func (OpenClassSettings) action() {}
func (ToggleUserSettings) action() {}
func (ToggleTheme) action() {}
func (StartNewChat) action() {}
func (LoadChat) action() {}
func (EnterSettings) action() {}
func (EnterDashboardSettings) action() {}
func (EnterClassSetting) action() {}
func (ClassManagement) action() {}
func (SetChatIdentity) action() {}
func (SetHistory) action() {}
func (SetUser) action() {}
func (SetModel) action() {}
func (RenameChat) action() {}
func (ToggleDashboard) action() {}
func (SetDashboardTab) action() {}
