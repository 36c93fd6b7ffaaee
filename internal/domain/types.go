package domain

import (
	"strings"
)

type Role string

const (
	RoleUser             Role = "user"
	RoleAssistant        Role = "assistant"
	RoleAssistantLoading Role = "assistant-loading"
)

// Status marks whether a message came from the server or exists only
// locally. It never goes over the wire.
type Status int

const (
	StatusConfirmed Status = iota
	// StatusPending is an optimistic entry awaiting the server's answer.
	StatusPending
	// StatusFailed is a local entry left behind by a failed exchange.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusFailed:
		return "failed"
	default:
		return "confirmed"
	}
}

type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Citation struct {
	Citation string `json:"citation"`
}

type Message struct {
	ID             string     `json:"id"`
	Role           Role       `json:"role"`
	Content        string     `json:"content"`
	CreatedAt      Timestamp  `json:"createdAt,omitempty"`
	KBIDs          []string   `json:"kbIds,omitempty"`
	Model          string     `json:"model,omitempty"`
	TokenNumber    int        `json:"tokenNumber,omitempty"`
	UserEvaluation string     `json:"userEvaluation,omitempty"`
	Citations      []Citation `json:"citations,omitempty"`

	LocalID string `json:"-"`
	Status  Status `json:"-"`
}

func (m Message) Pending() bool { return m.Status == StatusPending }

func (m Message) Local() bool { return m.Status != StatusConfirmed }

func (m Message) IsLoading() bool { return m.Role == RoleAssistantLoading }

// Key identifies a message in a rendered list: server id when confirmed,
// local id while pending.
func (m Message) Key() string {
	if m.Local() || m.ID == "" {
		return "local:" + m.LocalID
	}
	return m.ID
}

type ChatSession struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
	IsDeleted bool      `json:"isDeleted"`
	Favorite  bool      `json:"favorite"`
	Files     []string  `json:"files"`
	Tags      []string  `json:"tags"`
	KBID      string    `json:"kbId"`
	CreatedBy Identity  `json:"createdBy"`
	History   []Message `json:"history"`
}

type Visibility string

const (
	VisibilityPrivate    Visibility = "private"
	VisibilityPublic     Visibility = "public"
	VisibilityPredefined Visibility = "predefined"
)

type KnowledgeBase struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedBy   Identity  `json:"createdBy"`
	FilesIDs    []string  `json:"filesIds"`
	Public      bool      `json:"public"`
	ReferenceID string    `json:"referenceId"`
	Tools       []string  `json:"tools"`
	Type        string    `json:"type"`
	IsDeleted   bool      `json:"isDeleted"`
	CreatedAt   Timestamp `json:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt"`

	// Active is a client-side overlay: whether this knowledge base goes into
	// the next question's context. The server never sees it.
	Active bool `json:"-"`
}

func (kb KnowledgeBase) Visibility() Visibility {
	switch {
	case kb.Type == "predefined" || strings.EqualFold(kb.CreatedBy.Email, "system"):
		return VisibilityPredefined
	case kb.Public:
		return VisibilityPublic
	default:
		return VisibilityPrivate
	}
}

type FileAsset struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	MimeType         string    `json:"mimeType"`
	SizeBytes        int64     `json:"sizeBytes"`
	GCSPath          string    `json:"gcsPath"`
	AuthenticatedURL string    `json:"authenticatedURL,omitempty"`
	CreatedBy        Identity  `json:"createdBy"`
	IsDeleted        bool      `json:"isDeleted"`
	CreatedAt        Timestamp `json:"createdAt"`
}

type SignedFile struct {
	AuthenticatedURL string `json:"authenticatedURL"`
}

type TokensUsed struct {
	Model1 int `json:"model1"`
	Model2 int `json:"model2"`
	Model3 int `json:"model3"`
}

type UserActivity struct {
	ID                            string     `json:"id"`
	Name                          string     `json:"name"`
	Email                         string     `json:"email"`
	CreatedAt                     Timestamp  `json:"createdAt"`
	UpdatedAt                     Timestamp  `json:"updatedAt"`
	IsDeleted                     bool       `json:"isDeleted"`
	NewChat                       int        `json:"newChat"`
	QuestionsAsked                int        `json:"questionsAsked"`
	ChatsResumed                  int        `json:"chatsResumed"`
	DocumentsUploaded             int        `json:"documentsUploaded"`
	KnowledgeBaseCreated          int        `json:"knowledgeBaseCreated"`
	DocumentsUploadTotalSizeBytes int64      `json:"documentsUploadTotalSizeBytes"`
	LastMessageAt                 Timestamp  `json:"lastMessageAt"`
	LastCreatedChatAt             Timestamp  `json:"lastCreatedChatAt"`
	LastResumedChatAt             Timestamp  `json:"lastResumedChatAt"`
	LastDocumentUploadedAt        Timestamp  `json:"lastDocumentUploadedAt"`
	LastKnowledgeBaseCreatedAt    Timestamp  `json:"lastKnowledgeBaseCreatedAt"`
	TokensUsed                    TokensUsed `json:"tokensUsed"`
}
