// Package export writes chat transcripts to markdown files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scout-tui/internal/domain"
)

type Exporter struct {
	dir string
	cwd string
}

// New returns an exporter writing into dir; a relative dir is resolved
// against the working directory, and an empty one means ./scout-exports.
func New(dir string) (*Exporter, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve cwd: %w", err)
	}
	return &Exporter{dir: strings.TrimSpace(dir), cwd: cwd}, nil
}

func (e *Exporter) Export(chat domain.ChatSession, messages []domain.Message) (string, error) {
	path := e.outputPath(chat)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	md := BuildChatMarkdown(chat, BuildTranscriptMarkdown(messages), time.Now().UTC())
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}

// BuildTranscriptMarkdown renders confirmed messages only; optimistic and
// failed entries never made it to the server.
func BuildTranscriptMarkdown(messages []domain.Message) string {
	var b strings.Builder
	for _, m := range messages {
		if m.Local() || m.IsLoading() {
			continue
		}
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		switch m.Role {
		case domain.RoleUser:
			b.WriteString("## You\n\n")
		case domain.RoleAssistant:
			b.WriteString("## Scout\n\n")
		default:
			b.WriteString("## " + string(m.Role) + "\n\n")
		}
		b.WriteString(content + "\n\n")
		if len(m.Citations) > 0 {
			b.WriteString("Sources:\n\n")
			for _, c := range m.Citations {
				b.WriteString("- " + c.Citation + "\n")
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String()) + "\n"
}

func BuildChatMarkdown(chat domain.ChatSession, transcript string, now time.Time) string {
	var b strings.Builder
	b.WriteString("# " + safeValue(chat.Name) + "\n\n")
	b.WriteString("Exported: " + now.Format(time.RFC3339) + "\n\n")
	b.WriteString("```text\n")
	b.WriteString("chat: " + safeValue(chat.ID) + "\n")
	b.WriteString("created: " + chat.CreatedAt.Format(time.RFC3339) + "\n")
	b.WriteString(fmt.Sprintf("favorite: %t\n", chat.Favorite))
	if len(chat.Tags) > 0 {
		b.WriteString("tags: " + strings.Join(chat.Tags, ", ") + "\n")
	}
	b.WriteString("knowledge_base: " + safeValue(chat.KBID) + "\n")
	b.WriteString("```\n\n")
	b.WriteString(transcript)
	if !strings.HasSuffix(transcript, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}

func (e *Exporter) outputPath(chat domain.ChatSession) string {
	dir := e.dir
	if dir == "" {
		dir = "scout-exports"
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(e.cwd, dir)
	}
	return filepath.Join(dir, safeFileName(chat.ID)+".md")
}

func safeFileName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "chat"
	}
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")
	return replacer.Replace(s)
}

func safeValue(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "n/a"
	}
	return s
}
