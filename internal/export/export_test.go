package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"scout-tui/internal/domain"
)

func TestBuildTranscriptMarkdownSkipsLocalEntries(t *testing.T) {
	msgs := []domain.Message{
		{ID: "m1", Role: domain.RoleUser, Content: "What is Scout?"},
		{ID: "m2", Role: domain.RoleAssistant, Content: "A client.", Citations: []domain.Citation{{Citation: "handbook.pdf"}}},
		{Role: domain.RoleUser, Content: "still typing", LocalID: "l1", Status: domain.StatusPending},
		{Role: domain.RoleAssistantLoading, Content: "…", LocalID: "l2", Status: domain.StatusPending},
		{Role: domain.RoleAssistant, Content: "Something went wrong", LocalID: "l3", Status: domain.StatusFailed},
	}

	out := BuildTranscriptMarkdown(msgs)
	if !strings.Contains(out, "## You\n\nWhat is Scout?") {
		t.Fatalf("expected user turn, got:\n%s", out)
	}
	if !strings.Contains(out, "## Scout\n\nA client.") {
		t.Fatalf("expected assistant turn, got:\n%s", out)
	}
	if !strings.Contains(out, "- handbook.pdf") {
		t.Fatalf("expected citation list, got:\n%s", out)
	}
	for _, unwanted := range []string{"still typing", "…", "Something went wrong"} {
		if strings.Contains(out, unwanted) {
			t.Fatalf("local entry %q leaked into export:\n%s", unwanted, out)
		}
	}
}

func TestBuildChatMarkdownHeader(t *testing.T) {
	chat := domain.ChatSession{ID: "abc123", Name: "Trip planning", Favorite: true, Tags: []string{"travel"}}
	now := time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)

	out := BuildChatMarkdown(chat, "body", now)
	for _, want := range []string{"# Trip planning\n", "Exported: 2024-10-01T09:00:00Z", "chat: abc123", "favorite: true", "tags: travel", "knowledge_base: n/a", "created: n/a", "body\n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestExportWritesFile(t *testing.T) {
	dir := t.TempDir()
	e, err := New(dir)
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}
	chat := domain.ChatSession{ID: "chat/1", Name: "One"}
	path, err := e.Export(chat, []domain.Message{{ID: "m1", Role: domain.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if path != filepath.Join(dir, "chat_1.md") {
		t.Fatalf("unexpected path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "## You\n\nhi") {
		t.Fatalf("unexpected export:\n%s", data)
	}
}
