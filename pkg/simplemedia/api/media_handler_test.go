package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-media/pkg/simplemedia"
	"github.com/tendant/simple-media/pkg/simplemedia/pathgen"
	"github.com/tendant/simple-media/pkg/simplemedia/repo/memory"
	memorystorage "github.com/tendant/simple-media/pkg/simplemedia/storage/memory"
)

type testEnv struct {
	router chi.Router
	store  *memorystorage.Backend
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memorystorage.New()
	provider, err := simplemedia.NewFileProvider(
		simplemedia.WithBlobStore("memory", store),
		simplemedia.WithPathBuilder(pathgen.NewShardedGenerator()),
		simplemedia.WithCDN(simplemedia.NoopCDN{Prefix: "https://cdn.example.com"}),
	)
	require.NoError(t, err)

	manager, err := simplemedia.NewManager(
		simplemedia.WithRepository(memory.New()),
		simplemedia.WithProvider(provider),
		simplemedia.WithHooks(simplemedia.BlobCleanupHooks(provider)),
	)
	require.NoError(t, err)

	return &testEnv{
		router: NewMediaHandler(manager, nil).Routes(),
		store:  store,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// multipartRequest builds a form request; an empty fileName leaves out the file part
func multipartRequest(t *testing.T, method, target string, fields map[string]string, fileName, content string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileName != "" {
		part, err := writer.CreateFormFile(uploadField, fileName)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func (e *testEnv) create(t *testing.T, fields map[string]string, fileName, content string) MediaResponse {
	t.Helper()
	rr := e.do(multipartRequest(t, http.MethodPost, "/", fields, fileName, content))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp MediaResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestCreateMedia(t *testing.T) {
	env := newTestEnv(t)
	content := strings.Repeat("x", 41) + "\n"

	resp := env.create(t, map[string]string{"context": "news", "author_name": "Jane"}, "notes.txt", content)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "news", resp.Context)
	assert.Equal(t, "notes.txt", resp.Name)
	assert.Equal(t, "Jane", resp.AuthorName)
	assert.True(t, resp.Enabled)
	assert.Equal(t, simplemedia.DefaultProviderName, resp.ProviderName)
	assert.Equal(t, string(simplemedia.ProviderStatusOK), resp.ProviderStatus)
	assert.Regexp(t, `^[0-9a-f]{40}\.txt$`, resp.ProviderReference)
	assert.Equal(t, "text/plain", resp.ContentType)
	assert.Equal(t, int64(42), resp.Size)
	assert.True(t, strings.HasPrefix(resp.Path, "news/"), resp.Path)
	assert.True(t, strings.HasSuffix(resp.Path, "/"+resp.ProviderReference), resp.Path)
	assert.Equal(t, "https://cdn.example.com/media_bundle/images/files/reference/file.png", resp.PublicURL)

	exists, err := env.store.Exists(context.Background(), resp.Path)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateMedia_WithoutFile(t *testing.T) {
	env := newTestEnv(t)

	resp := env.create(t, map[string]string{"name": "placeholder", "enabled": "false"}, "", "")

	assert.Equal(t, "placeholder", resp.Name)
	assert.Equal(t, simplemedia.DefaultContext, resp.Context)
	assert.False(t, resp.Enabled)
	assert.Empty(t, resp.ProviderReference)
	assert.Empty(t, resp.Path)
	assert.Equal(t, string(simplemedia.ProviderStatusOK), resp.ProviderStatus)
}

func TestCreateMedia_BadRequest(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]string
		message string
	}{
		{name: "bool", fields: map[string]string{"enabled": "maybe"}, message: "invalid enabled"},
		{name: "long context", fields: map[string]string{"context": strings.Repeat("c", 65)}, message: "invalid context"},
		{name: "long name", fields: map[string]string{"name": strings.Repeat("n", 256)}, message: "invalid name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rr := env.do(multipartRequest(t, http.MethodPost, "/", tt.fields, "a.txt", "a"))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.message)
			assert.Empty(t, env.store.Keys())
		})
	}

	t.Run("context at limit", func(t *testing.T) {
		env := newTestEnv(t)
		resp := env.create(t, map[string]string{"context": strings.Repeat("c", 64)}, "a.txt", "a")
		assert.Len(t, resp.Context, 64)
	})
}

func TestGetMedia(t *testing.T) {
	env := newTestEnv(t)
	created := env.create(t, map[string]string{"context": "news"}, "report.pdf", "%PDF-1.4 report")

	t.Run("found", func(t *testing.T) {
		rr := env.do(httptest.NewRequest(http.MethodGet, "/"+created.ID, nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp MediaResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, created.ID, resp.ID)
		assert.Equal(t, created.ProviderReference, resp.ProviderReference)
		assert.Equal(t, "application/pdf", resp.ContentType)
	})

	t.Run("invalid id", func(t *testing.T) {
		rr := env.do(httptest.NewRequest(http.MethodGet, "/not-a-uuid", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing", func(t *testing.T) {
		rr := env.do(httptest.NewRequest(http.MethodGet, "/2b1d3c8e-3f5a-4e5b-9a0c-3d9f1e2a7b64", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestListMedia(t *testing.T) {
	env := newTestEnv(t)
	env.create(t, map[string]string{"context": "news"}, "a.txt", "a")
	env.create(t, map[string]string{"context": "news"}, "b.txt", "b")
	env.create(t, map[string]string{"context": "blog"}, "c.txt", "c")

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "all", query: "", want: 3},
		{name: "news", query: "?context=news", want: 2},
		{name: "blog", query: "?context=blog", want: 1},
		{name: "unknown", query: "?context=video", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))
			require.Equal(t, http.StatusOK, rr.Code)

			var resp []MediaResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Len(t, resp, tt.want)
		})
	}
}

func TestUpdateMedia(t *testing.T) {
	env := newTestEnv(t)
	created := env.create(t, map[string]string{"context": "news"}, "notes.txt", "first version")

	t.Run("metadata only", func(t *testing.T) {
		fields := map[string]string{"description": "quarterly notes", "context": "blog"}
		rr := env.do(multipartRequest(t, http.MethodPut, "/"+created.ID, fields, "", ""))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var resp MediaResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "quarterly notes", resp.Description)
		assert.Equal(t, "news", resp.Context)
		assert.Equal(t, created.ProviderReference, resp.ProviderReference)
		assert.Equal(t, created.Size, resp.Size)
	})

	t.Run("form encoded", func(t *testing.T) {
		form := url.Values{"copyright": {"ACME"}}
		req := httptest.NewRequest(http.MethodPut, "/"+created.ID, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := env.do(req)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var resp MediaResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "ACME", resp.Copyright)
		assert.Equal(t, "quarterly notes", resp.Description)
	})

	t.Run("new content", func(t *testing.T) {
		rr := env.do(multipartRequest(t, http.MethodPut, "/"+created.ID, nil, "notes-v2.txt", "second version"))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var resp MediaResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, created.ProviderReference, resp.ProviderReference)
		assert.Equal(t, int64(14), resp.Size)

		rr = env.do(httptest.NewRequest(http.MethodGet, "/"+created.ID+"/download", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "second version", rr.Body.String())
	})

	t.Run("missing", func(t *testing.T) {
		rr := env.do(multipartRequest(t, http.MethodPut, "/2b1d3c8e-3f5a-4e5b-9a0c-3d9f1e2a7b64", nil, "", ""))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestDeleteMedia(t *testing.T) {
	env := newTestEnv(t)
	created := env.create(t, nil, "notes.txt", "to be removed")

	rr := env.do(httptest.NewRequest(http.MethodDelete, "/"+created.ID, nil))
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(httptest.NewRequest(http.MethodGet, "/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	exists, err := env.store.Exists(context.Background(), created.Path)
	require.NoError(t, err)
	assert.False(t, exists)

	rr = env.do(httptest.NewRequest(http.MethodDelete, "/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDownloadMedia(t *testing.T) {
	env := newTestEnv(t)

	t.Run("file", func(t *testing.T) {
		created := env.create(t, nil, "hello world.txt", "hello")

		rr := env.do(httptest.NewRequest(http.MethodGet, "/"+created.ID+"/download", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "hello", rr.Body.String())
		assert.Equal(t, "text/plain", rr.Header().Get("Content-Type"))
		assert.Equal(t, "5", rr.Header().Get("Content-Length"))
		assert.Equal(t, `attachment; filename="hello world.txt"`, rr.Header().Get("Content-Disposition"))
	})

	t.Run("no file", func(t *testing.T) {
		created := env.create(t, map[string]string{"name": "empty"}, "", "")

		rr := env.do(httptest.NewRequest(http.MethodGet, "/"+created.ID+"/download", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestGetMediaURL(t *testing.T) {
	env := newTestEnv(t)
	created := env.create(t, nil, "file.bin", "binary")

	t.Run("public", func(t *testing.T) {
		rr := env.do(httptest.NewRequest(http.MethodGet, "/"+created.ID+"/url?format=small", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp URLResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "https://cdn.example.com/media_bundle/images/files/small/file.png", resp.URL)
		assert.Equal(t, "small", resp.Format)
		assert.False(t, resp.Private)
	})

	t.Run("private", func(t *testing.T) {
		rr := env.do(httptest.NewRequest(http.MethodGet, "/"+created.ID+"/url?private=true", nil))
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestGetHelperProperties(t *testing.T) {
	env := newTestEnv(t)
	created := env.create(t, map[string]string{"context": "news"}, "slides.pdf", "%PDF-1.4 slides")

	rr := env.do(httptest.NewRequest(http.MethodGet, "/"+created.ID+"/helper?format=small&title=Quarterly", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var props map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &props))
	assert.Equal(t, "Quarterly", props["title"])
	assert.Equal(t, created.Path, props["file"])
	assert.Equal(t, created.Path, props["thumbnail"])
	assert.NotContains(t, props, "format")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid content", err: &simplemedia.InvalidContentError{Path: "/nope"}, want: http.StatusBadRequest},
		{name: "media not found", err: fmt.Errorf("get: %w", simplemedia.ErrMediaNotFound), want: http.StatusNotFound},
		{name: "object not found", err: simplemedia.ErrObjectNotFound, want: http.StatusNotFound},
		{name: "exists", err: simplemedia.ErrMediaExists, want: http.StatusConflict},
		{name: "private url", err: simplemedia.ErrPrivateURLUnsupported, want: http.StatusForbidden},
		{name: "storage", err: &simplemedia.StorageError{Op: "write", Err: errors.New("disk full")}, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
