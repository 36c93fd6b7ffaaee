package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"scout-tui/internal/domain"
)

func (c *Client) GetChat(ctx context.Context, id string) Response[*domain.ChatSession] {
	var out *domain.ChatSession
	r := call{method: http.MethodGet, path: "/chat/" + url.PathEscape(id)}
	return fetch(ctx, c, r, &out, func() (*domain.ChatSession, bool) {
		return out, out != nil
	})
}

func (c *Client) ListChats(ctx context.Context, filters Filters, limit int) Response[[]domain.ChatSession] {
	raw := "limit=" + strconv.Itoa(limit)
	if enc := filters.Encode(); enc != "" {
		raw += "&" + enc
	}
	return listing[domain.ChatSession](ctx, c, call{method: http.MethodGet, path: "/chat/listing", rawQuery: raw})
}

// CreateChat returns the new chat id.
func (c *Client) CreateChat(ctx context.Context, name string) Response[string] {
	var out struct {
		Message string `json:"message"`
		Data    *struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	r := call{
		method:   http.MethodPost,
		path:     "/chat",
		jsonBody: map[string]any{"name": name, "tags": []string{}, "id": ""},
		failMsg:  "Chat couldn't be created",
		okMsg:    "Chat created successfully",
	}
	return fetch(ctx, c, r, &out, func() (string, bool) {
		if out.Data == nil || out.Data.ID == "" {
			return "", false
		}
		return out.Data.ID, true
	})
}

func (c *Client) UpdateChat(ctx context.Context, id, name string, tags []string) Response[struct{}] {
	if tags == nil {
		tags = []string{}
	}
	r := call{
		method:   http.MethodPut,
		path:     "/chat/" + url.PathEscape(id),
		jsonBody: map[string]any{"name": name, "tags": tags},
		failMsg:  "Chat couldn't be updated",
		okMsg:    "Chat updated successfully",
	}
	return fetch(ctx, c, r, nil, func() (struct{}, bool) { return struct{}{}, true })
}

func (c *Client) DeleteChat(ctx context.Context, id string) Response[struct{}] {
	r := call{
		method:  http.MethodDelete,
		path:    "/chat/" + url.PathEscape(id),
		failMsg: "Chat couldn't be deleted",
		okMsg:   "Chat deleted successfully",
	}
	return fetch(ctx, c, r, nil, func() (struct{}, bool) { return struct{}{}, true })
}

// ToggleFavorite flips the favorite flag server-side and returns its new value.
func (c *Client) ToggleFavorite(ctx context.Context, id string) Response[bool] {
	var out struct {
		Favorite *bool `json:"favorite"`
	}
	r := call{
		method:  http.MethodPost,
		path:    "/chat/" + url.PathEscape(id) + "/favorite",
		failMsg: "Request couldn't be completed",
		okMsg:   "Chat marked as favorite",
	}
	return fetch(ctx, c, r, &out, func() (bool, bool) {
		if out.Favorite == nil {
			return false, false
		}
		return *out.Favorite, true
	})
}

func (c *Client) Ask(ctx context.Context, chatID, question string, kbIDs []string, model string) Response[*domain.Message] {
	if kbIDs == nil {
		kbIDs = []string{}
	}
	var out struct {
		Data *domain.Message `json:"data"`
	}
	r := call{
		method:   http.MethodPost,
		path:     "/chat/" + url.PathEscape(chatID) + "/ask",
		jsonBody: map[string]any{"question": question, "knowledge_base_ids": kbIDs, "model": model},
		failMsg:  "Something went wrong",
	}
	return fetch(ctx, c, r, &out, func() (*domain.Message, bool) {
		return out.Data, out.Data != nil
	})
}
