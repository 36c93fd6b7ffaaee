package api

import (
	"context"
	"net/http"
	"net/url"

	"scout-tui/internal/domain"
)

// KBResult is the body of knowledge base create, update and remove-files.
type KBResult struct {
	Message          string               `json:"message,omitempty"`
	Data             domain.KnowledgeBase `json:"data"`
	EmbeddingResults map[string]string    `json:"embedding_results,omitempty"`
}

// Failed lists the files whose embedding did not report "success".
func (r KBResult) Failed() []string {
	var names []string
	for name, status := range r.EmbeddingResults {
		if status != "success" {
			names = append(names, name)
		}
	}
	return names
}

func (c *Client) ListPublicKBs(ctx context.Context) Response[[]domain.KnowledgeBase] {
	return listing[domain.KnowledgeBase](ctx, c, call{method: http.MethodGet, path: "/kb/listing/user/public"})
}

func (c *Client) ListPrivateKBs(ctx context.Context) Response[[]domain.KnowledgeBase] {
	return listing[domain.KnowledgeBase](ctx, c, call{method: http.MethodGet, path: "/kb/listing/user/private"})
}

func (c *Client) ListPredefinedKBs(ctx context.Context) Response[[]domain.KnowledgeBase] {
	return listing[domain.KnowledgeBase](ctx, c, call{method: http.MethodGet, path: "/kb/listing/predefined"})
}

func (c *Client) CreateKB(ctx context.Context, name string, public bool) Response[*KBResult] {
	r := call{
		method:   http.MethodPost,
		path:     "/kb",
		jsonBody: map[string]any{"name": name, "public": public},
		failMsg:  "Knowledge base couldn't be created",
		okMsg:    "Knowledge base created successfully",
	}
	return kbResult(ctx, c, r)
}

func (c *Client) UpdateKB(ctx context.Context, id, name string, public bool) Response[*KBResult] {
	r := call{
		method:   http.MethodPut,
		path:     "/kb/" + url.PathEscape(id),
		jsonBody: map[string]any{"name": name, "public": public},
		failMsg:  "Knowledge base couldn't be updated",
		okMsg:    "Knowledge base updated successfully",
	}
	return kbResult(ctx, c, r)
}

func (c *Client) AddFilesToKB(ctx context.Context, id string, files []UploadFile) Response[*KBResult] {
	body, contentType, err := multipartFiles(files)
	if err != nil {
		return failed[*KBResult](statusRequestFailed, err.Error())
	}
	r := call{
		method:      http.MethodPost,
		path:        "/kb/" + url.PathEscape(id) + "/add/files",
		body:        body,
		contentType: contentType,
		failMsg:     "Files couldn't be added to the knowledge base",
		okMsg:       "Files added successfully",
	}
	return kbResult(ctx, c, r)
}

func (c *Client) RemoveFilesFromKB(ctx context.Context, id string, fileIDs []string) Response[*KBResult] {
	if fileIDs == nil {
		fileIDs = []string{}
	}
	r := call{
		method:   http.MethodPost,
		path:     "/kb/" + url.PathEscape(id) + "/remove/files",
		jsonBody: map[string]any{"file_ids": fileIDs},
		failMsg:  "File couldn't be removed",
		okMsg:    "File removed successfully",
	}
	return kbResult(ctx, c, r)
}

func (c *Client) DeleteKB(ctx context.Context, id string) Response[struct{}] {
	r := call{
		method:  http.MethodDelete,
		path:    "/kb/" + url.PathEscape(id),
		failMsg: "Knowledge base couldn't be removed",
		okMsg:   "Knowledge base removed successfully",
	}
	return fetch(ctx, c, r, nil, func() (struct{}, bool) { return struct{}{}, true })
}

func kbResult(ctx context.Context, c *Client, r call) Response[*KBResult] {
	var out KBResult
	return fetch(ctx, c, r, &out, func() (*KBResult, bool) { return &out, true })
}
