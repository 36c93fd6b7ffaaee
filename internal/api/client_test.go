package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, token string, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, token)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestCreateChatReturnsID(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok", "data": map[string]any{"id": "abc123", "name": "Trip planning"}})
	})

	resp := c.CreateChat(context.Background(), "Trip planning")
	require.True(t, resp.Success)
	require.Equal(t, "abc123", resp.Data)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Trip planning", body["name"])
	require.Equal(t, []any{}, body["tags"])
}

func TestCreateChatMissingIDIsSemanticFailure(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok"})
	})

	resp := c.CreateChat(context.Background(), "x")
	require.False(t, resp.Success)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, resp.Data)
	require.Equal(t, "Chat couldn't be created", resp.Message)
}

func TestNoAuthorizationHeaderWithoutToken(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"health": "ok"})
	})
	resp := c.Health(context.Background())
	require.True(t, resp.Success)
	require.Equal(t, "ok", resp.Data)
}

func TestHTTPErrorPropagatesStatusAndDetail(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Chat not found"})
	})

	resp := c.Ask(context.Background(), "missing", "hello", nil, "gemini-1.5-pro")
	require.False(t, resp.Success)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Chat not found", resp.Message)
	require.Nil(t, resp.Data)
}

func TestHTTPErrorWithoutDetailUsesEndpointMessage(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	resp := c.Ask(context.Background(), "c1", "hello", nil, "m")
	require.False(t, resp.Success)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "Something went wrong", resp.Message)
}

func TestTransportErrorDefaultsTo400(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := New(base, "", WithTimeout(time.Second))
	resp := c.DeleteChat(context.Background(), "c1")
	require.False(t, resp.Success)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Chat couldn't be deleted", resp.Message)
}

func TestListingFailureYieldsEmptySlice(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	resp := c.ListPublicKBs(context.Background())
	require.False(t, resp.Success)
	require.NotNil(t, resp.Data)
	require.Len(t, resp.Data, 0)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestListChatsEncodesLimitAndFilters(t *testing.T) {
	var rawQuery string
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/listing", r.URL.Path)
		rawQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{{"id": "c1", "name": "one", "favorite": true}}})
	})

	resp := c.ListChats(context.Background(), Filters{Eq("favorite", "true")}, 5)
	require.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	require.True(t, resp.Data[0].Favorite)
	require.Equal(t, "limit=5&filters=favorite:==:true", rawQuery)
}

func TestToggleFavoriteRequiresFavoriteField(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/c1/favorite", r.URL.Path)
		if calls.Add(1) == 1 {
			writeJSON(w, http.StatusOK, map[string]any{"favorite": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	first := c.ToggleFavorite(context.Background(), "c1")
	require.True(t, first.Success)
	require.False(t, first.Data)

	second := c.ToggleFavorite(context.Background(), "c1")
	require.False(t, second.Success)
	require.Equal(t, http.StatusOK, second.StatusCode)
}

func TestAskSendsKnowledgeBasesAndModel(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Question string   `json:"question"`
			KBIDs    []string `json:"knowledge_base_ids"`
			Model    string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "what is scout?", in.Question)
		require.Equal(t, []string{"kb1", "kb2"}, in.KBIDs)
		require.Equal(t, "gpt-4o", in.Model)
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"id": "m2", "role": "assistant", "content": "A client.", "createdAt": "2024-10-01T10:00:00.000001",
			"citations": []map[string]any{{"citation": "doc.pdf"}},
		}})
	})

	resp := c.Ask(context.Background(), "c1", "what is scout?", []string{"kb1", "kb2"}, "gpt-4o")
	require.True(t, resp.Success)
	require.Equal(t, "A client.", resp.Data.Content)
	require.Len(t, resp.Data.Citations, 1)
	require.False(t, resp.Data.Pending())
}

func TestUploadSendsMultipartFiles(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fhs := r.MultipartForm.File["files"]
		require.Len(t, fhs, 2)
		f, err := fhs[1].Open()
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		require.Equal(t, "second", string(data))
		writeJSON(w, http.StatusOK, map[string]any{"files": map[string]any{"id": "f1"}})
	})

	resp := c.Upload(context.Background(), []UploadFile{
		{Name: "a.txt", Reader: strings.NewReader("first")},
		{Name: "b.txt", Reader: strings.NewReader("second")},
	})
	require.True(t, resp.Success)
	require.Equal(t, "File(s) uploaded successfully!", resp.Data)
}

func TestUploadWithoutFilesIDFails(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"files": map[string]any{}})
	})

	resp := c.Upload(context.Background(), []UploadFile{{Name: "a.txt", Reader: strings.NewReader("x")}})
	require.False(t, resp.Success)
	require.Empty(t, resp.Data)
	require.Equal(t, "Failed to upload files.", resp.Message)
}

func TestUploadWithNoFilesFailsBeforeRequest(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request to %s", r.URL.Path)
	})
	resp := c.Upload(context.Background(), nil)
	require.False(t, resp.Success)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAddFilesReportsEmbeddingFailures(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/kb/kb1/add/files", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"embedding_results": map[string]string{"a.pdf": "success", "b.pdf": "unsupported type"},
			"data":              map[string]any{"id": "kb1", "name": "docs", "filesIds": []string{"f1"}},
		})
	})

	resp := c.AddFilesToKB(context.Background(), "kb1", []UploadFile{{Name: "a.pdf", Reader: strings.NewReader("x")}})
	require.True(t, resp.Success)
	require.Equal(t, []string{"b.pdf"}, resp.Data.Failed())
	require.Equal(t, []string{"f1"}, resp.Data.Data.FilesIDs)
}

func TestKBWritesNeverSendActiveFlag(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		require.Equal(t, map[string]any{"name": "docs", "public": true}, raw)
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok", "data": map[string]any{"id": "kb1", "name": "docs", "public": true}})
	})

	resp := c.UpdateKB(context.Background(), "kb1", "docs", true)
	require.True(t, resp.Success)
	require.Equal(t, "kb1", resp.Data.Data.ID)
}

func TestGetFileReturnsFirstMatch(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "filters=id:==:f9", r.URL.RawQuery)
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{{"id": "f9", "name": "notes.pdf", "sizeBytes": 2048}}})
	})

	resp := c.GetFile(context.Background(), "f9")
	require.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	require.Equal(t, int64(2048), resp.Data.SizeBytes)
}

func TestAggregateCount(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/report/aggregation/count/new-chats":
			writeJSON(w, http.StatusOK, map[string]any{"total": 42})
		default:
			writeJSON(w, http.StatusOK, map[string]any{})
		}
	})

	ok := c.AggregateCount(context.Background(), "new-chats")
	require.True(t, ok.Success)
	require.Equal(t, 42, ok.Data)

	missing := c.AggregateCount(context.Background(), "msgs")
	require.False(t, missing.Success)
	require.Zero(t, missing.Data)
}

func TestMeDecodesProfile(t *testing.T) {
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/me", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": "u1", "email": "jane.doe@example.com"}})
	})

	resp := c.Me(context.Background())
	require.True(t, resp.Success)
	require.Equal(t, "jane", resp.Data.DeriveNames().FirstName)
}

func TestFiltersEncode(t *testing.T) {
	at := time.Date(2024, 10, 2, 8, 0, 0, 0, time.UTC)
	got := Filters{Eq("favorite", "false"), Since("createdAt", at), Before("createdAt", at.Add(time.Hour))}.Encode()
	require.Equal(t, "filters=favorite:==:false&filters=createdAt:>=:2024-10-02T08%3A00%3A00.000Z&filters=createdAt:<:2024-10-02T09%3A00%3A00.000Z", got)
	require.Equal(t, "", Filters(nil).Encode())
}

func TestResponseErr(t *testing.T) {
	require.NoError(t, Response[int]{Success: true}.Err())
	err := Response[int]{StatusCode: 404, Message: "Chat not found"}.Err()
	require.EqualError(t, err, "Chat not found (status 404)")
}
