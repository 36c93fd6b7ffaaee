// Package clipboard copies chat links and answers to the system clipboard.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/atotto/clipboard"
)

var ErrToolNotFound = errors.New("clipboard tool not found")

// Writer puts text on the clipboard.
type Writer func(text string) error

// System writes through xclip, xsel, wl-copy, pbcopy or the Windows API,
// whichever the platform provides.
func System() (Writer, error) {
	if clipboard.Unsupported {
		return nil, ErrToolNotFound
	}
	return clipboard.WriteAll, nil
}

func Copy(ctx context.Context, text string) error {
	w, err := System()
	if err != nil {
		return err
	}
	return CopyWith(ctx, w, text)
}

// CopyWith runs w and gives up when ctx is done first. The clipboard tools
// can hang without a display, so the write runs on its own goroutine.
func CopyWith(ctx context.Context, w Writer, text string) error {
	done := make(chan error, 1)
	go func() { done <- w(text) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("write clipboard data: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("write clipboard data: %w", ctx.Err())
	}
}

// ChatLink is the web address of a chat, the web app's root followed by the
// chat id.
func ChatLink(webURL, chatID string) string {
	return strings.TrimRight(webURL, "/") + "/" + url.PathEscape(chatID)
}
