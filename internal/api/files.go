package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"scout-tui/internal/domain"
)

const uploadedMsg = "File(s) uploaded successfully!"

var ErrNoFiles = errors.New("no files to upload")

type UploadFile struct {
	Name   string
	Reader io.Reader
}

// OpenUploads opens every path for reading. The returned closer releases all
// of them; on error nothing is left open.
func OpenUploads(paths []string) ([]UploadFile, func() error, error) {
	files := make([]UploadFile, 0, len(paths))
	handles := make([]*os.File, 0, len(paths))
	closeAll := func() error {
		var errs []error
		for _, h := range handles {
			if err := h.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			_ = closeAll()
			return nil, nil, fmt.Errorf("open upload: %w", err)
		}
		handles = append(handles, f)
		files = append(files, UploadFile{Name: filepath.Base(p), Reader: f})
	}
	return files, closeAll, nil
}

func multipartFiles(files []UploadFile) (io.Reader, string, error) {
	if len(files) == 0 {
		return nil, "", ErrNoFiles
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, "", fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return nil, "", fmt.Errorf("copy %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// Upload sends files as a multipart form. The backend confirms with a files
// object carrying an id; anything else counts as a failed upload.
func (c *Client) Upload(ctx context.Context, files []UploadFile) Response[string] {
	body, contentType, err := multipartFiles(files)
	if err != nil {
		return failed[string](statusRequestFailed, err.Error())
	}
	var out struct {
		Files *struct {
			ID string `json:"id"`
		} `json:"files"`
	}
	r := call{
		method:      http.MethodPost,
		path:        "/upload",
		body:        body,
		contentType: contentType,
		emptyMsg:    "Failed to upload files.",
		okMsg:       uploadedMsg,
	}
	return fetch(ctx, c, r, &out, func() (string, bool) {
		if out.Files == nil || out.Files.ID == "" {
			return "", false
		}
		return uploadedMsg, true
	})
}

// GetFile looks a file up through the listing endpoint and returns the first
// match, or nil when there is none.
func (c *Client) GetFile(ctx context.Context, id string) Response[*domain.FileAsset] {
	resp := listing[domain.FileAsset](ctx, c, call{
		method:   http.MethodGet,
		path:     "/files/listing",
		rawQuery: Filters{Eq("id", id)}.Encode(),
	})
	out := Response[*domain.FileAsset]{Message: resp.Message, StatusCode: resp.StatusCode, Success: resp.Success}
	if resp.Success && len(resp.Data) > 0 {
		f := resp.Data[0]
		out.Data = &f
	}
	return out
}

func (c *Client) SignedFile(ctx context.Context, blobName string) Response[*domain.SignedFile] {
	var out struct {
		Data *domain.SignedFile `json:"data"`
	}
	r := call{method: http.MethodGet, path: "/files/signed", query: url.Values{"blob_name": {blobName}}}
	return fetch(ctx, c, r, &out, func() (*domain.SignedFile, bool) {
		return out.Data, out.Data != nil
	})
}
