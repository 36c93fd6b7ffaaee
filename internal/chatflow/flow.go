// Package chatflow drives sending a message: creating the chat when there is
// none, the optimistic history shown while the assistant answers, and how the
// answer or failure is folded back in.
package chatflow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"scout-tui/internal/api"
	"scout-tui/internal/domain"
	"scout-tui/internal/state"
)

var ErrNoActiveChat = errors.New("files can only be uploaded to an existing chat")

const (
	defaultAskFailure = "Something went wrong"
	loadingContent    = "…"
)

type Phase int

const (
	Idle Phase = iota
	UserSubmitted
	AssistantPending
	ResolvedSuccess
	ResolvedError
)

func (p Phase) String() string {
	switch p {
	case UserSubmitted:
		return "user-submitted"
	case AssistantPending:
		return "assistant-pending"
	case ResolvedSuccess:
		return "resolved(success)"
	case ResolvedError:
		return "resolved(error)"
	default:
		return "idle"
	}
}

// Backend is the part of the API client the flow needs.
type Backend interface {
	CreateChat(ctx context.Context, name string) api.Response[string]
	Ask(ctx context.Context, chatID, question string, kbIDs []string, model string) api.Response[*domain.Message]
	AddFilesToKB(ctx context.Context, id string, files []api.UploadFile) api.Response[*api.KBResult]
}

type Flow struct {
	backend Backend
	newID   func() string

	mu    sync.Mutex
	phase Phase
}

type Option func(*Flow)

// WithIDs replaces the uuid generator used for local message ids.
func WithIDs(newID func() string) Option {
	return func(f *Flow) { f.newID = newID }
}

func New(b Backend, opts ...Option) *Flow {
	f := &Flow{backend: b, newID: uuid.NewString}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

func (f *Flow) setPhase(p Phase) {
	f.mu.Lock()
	f.phase = p
	f.mu.Unlock()
}

// Submit handles a message typed while no chat is open: it creates a chat
// named after the text and returns its identity. It never asks the
// assistant; the question is asked once the new chat is opened.
func (f *Flow) Submit(ctx context.Context, text string) (state.ChatRef, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return state.ChatRef{}, domain.ErrEmptyMessage
	}
	f.setPhase(UserSubmitted)
	resp := f.backend.CreateChat(ctx, text)
	if !resp.Success {
		f.setPhase(ResolvedError)
		return state.ChatRef{}, resp.Err()
	}
	f.setPhase(Idle)
	return state.ChatRef{ID: resp.Data, Name: text}, nil
}

// Begin returns history with the user's message and a single loading
// placeholder appended. Both are pending local entries.
func (f *Flow) Begin(history []domain.Message, text string) []domain.Message {
	out := withoutLoading(history)
	out = append(out,
		domain.Message{Role: domain.RoleUser, Content: text, LocalID: f.newID(), Status: domain.StatusPending},
		domain.Message{Role: domain.RoleAssistantLoading, Content: loadingContent, LocalID: f.newID(), Status: domain.StatusPending},
	)
	f.setPhase(AssistantPending)
	return out
}

// Request is one question for an open chat.
type Request struct {
	ChatID string
	ChatKB string
	Text   string
	Active []string
	Model  string
}

// Ask sends the question with the active knowledge bases plus the chat's own.
func (f *Flow) Ask(ctx context.Context, req Request) api.Response[*domain.Message] {
	return f.backend.Ask(ctx, req.ChatID, req.Text, KBIDs(req.Active, req.ChatKB), req.Model)
}

// Resolve folds the ask outcome into history. The placeholder is always
// removed. On success the answer is appended and the exchange confirmed. On
// failure an assistant entry carrying the failure message is appended, after
// a synthesized user entry when nothing else would show what was asked.
func (f *Flow) Resolve(history []domain.Message, text string, resp api.Response[*domain.Message]) []domain.Message {
	out := withoutLoading(history)
	if resp.Success {
		for i := range out {
			if out[i].Pending() {
				out[i].Status = domain.StatusConfirmed
			}
		}
		if resp.Data != nil {
			msg := *resp.Data
			msg.Status = domain.StatusConfirmed
			if msg.Role == "" {
				msg.Role = domain.RoleAssistant
			}
			out = append(out, msg)
		}
		f.setPhase(ResolvedSuccess)
		return out
	}

	for i := range out {
		if out[i].Pending() {
			out[i].Status = domain.StatusFailed
		}
	}
	if len(out) == 0 {
		out = append(out, domain.Message{Role: domain.RoleUser, Content: text, LocalID: f.newID(), Status: domain.StatusFailed})
	}
	msg := resp.Message
	if msg == "" {
		msg = defaultAskFailure
	}
	out = append(out, domain.Message{Role: domain.RoleAssistant, Content: msg, LocalID: f.newID(), Status: domain.StatusFailed})
	f.setPhase(ResolvedError)
	return out
}

// Send runs Begin, Ask and Resolve in one call, for callers without an
// event loop.
func (f *Flow) Send(ctx context.Context, history []domain.Message, req Request) ([]domain.Message, api.Response[*domain.Message], error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return history, api.Response[*domain.Message]{}, domain.ErrEmptyMessage
	}
	req.Text = text
	pending := f.Begin(history, text)
	resp := f.Ask(ctx, req)
	return f.Resolve(pending, text, resp), resp, nil
}

// Open returns the history to show for a freshly loaded chat. When neither the
// server nor the client has any message yet, the chat's name is the first
// question: it is returned in ask and history already carries the optimistic
// pair for it.
func (f *Flow) Open(chat domain.ChatSession, local []domain.Message) (history []domain.Message, ask string) {
	history = append([]domain.Message{}, chat.History...)
	q, ok := FirstQuestion(chat, local)
	if !ok {
		return history, ""
	}
	return f.Begin(history, q), q
}

// FirstQuestion reports whether a just-loaded chat should ask its own name.
func FirstQuestion(chat domain.ChatSession, local []domain.Message) (string, bool) {
	name := strings.TrimSpace(chat.Name)
	if len(chat.History) != 0 || len(local) != 0 || name == "" {
		return "", false
	}
	return name, true
}

// KBIDs is the knowledge base set for a question: the active ids followed by
// the chat's own, without blanks or repeats.
func KBIDs(active []string, chatKB string) []string {
	seen := make(map[string]bool, len(active)+1)
	out := make([]string, 0, len(active)+1)
	for _, id := range active {
		if id == "" || seen[id] || id == chatKB {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if chatKB != "" {
		out = append(out, chatKB)
	}
	return out
}

// Upload adds files to the open chat's knowledge base.
func (f *Flow) Upload(ctx context.Context, chat *state.ChatRef, files []api.UploadFile) (api.Response[*api.KBResult], error) {
	if chat == nil || chat.ID == "" {
		return api.Response[*api.KBResult]{}, ErrNoActiveChat
	}
	return f.backend.AddFilesToKB(ctx, chat.KBID, files), nil
}

func withoutLoading(history []domain.Message) []domain.Message {
	out := make([]domain.Message, 0, len(history)+2)
	for _, m := range history {
		if m.IsLoading() {
			continue
		}
		out = append(out, m)
	}
	return out
}
