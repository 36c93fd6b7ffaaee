package clipboard

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCopyWithWritesText(t *testing.T) {
	var got string
	err := CopyWith(context.Background(), func(text string) error {
		got = text
		return nil
	}, "https://scout.example.com/abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://scout.example.com/abc123" {
		t.Fatalf("unexpected clipboard text: %q", got)
	}
}

func TestCopyWithWrapsWriterError(t *testing.T) {
	boom := errors.New("exit status 1")
	err := CopyWith(context.Background(), func(string) error { return boom }, "x")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped writer error, got %v", err)
	}
}

func TestCopyWithGivesUpOnContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	block := make(chan struct{})
	defer close(block)

	err := CopyWith(ctx, func(string) error { <-block; return nil }, "x")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestChatLink(t *testing.T) {
	cases := []struct {
		base, id, want string
	}{
		{"https://scout.example.com", "abc123", "https://scout.example.com/abc123"},
		{"https://scout.example.com/", "abc123", "https://scout.example.com/abc123"},
		{"http://localhost:3000/app", "a b", "http://localhost:3000/app/a%20b"},
	}
	for _, tc := range cases {
		if got := ChatLink(tc.base, tc.id); got != tc.want {
			t.Fatalf("ChatLink(%q, %q)=%q, want %q", tc.base, tc.id, got, tc.want)
		}
	}
}
