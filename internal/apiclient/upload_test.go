package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUploadFile(t *testing.T) {
	t.Parallel()

	var uploadedFields map[string]string
	var uploadedContents string

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("POST /remote-dispatch/generate-file-upload-presigned-post", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "report.pdf", body["filename"], "only the base name is sent")

		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"url": srv.URL + "/bucket",
			"fields": map[string]any{
				"key":    "uploads/abc/report.pdf",
				"policy": "signed-policy",
			},
		})
	})
	mux.HandleFunc("POST /bucket", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		uploadedFields = map[string]string{
			"key":    r.FormValue("key"),
			"policy": r.FormValue("policy"),
		}
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "report.pdf", header.Filename)

		contents, err := io.ReadAll(file)
		require.NoError(t, err)
		uploadedContents = string(contents)
		w.WriteHeader(http.StatusNoContent)
	})

	c := New(Options{
		BaseURL:    srv.URL,
		APIKey:     "test-key",
		HTTPClient: srv.Client(),
		Logger:     zap.NewNop(),
	})

	ref, err := c.UploadFile(context.Background(), "/tmp/exports/report.pdf", strings.NewReader("pdf bytes"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/abc/report.pdf", ref.Key)
	assert.Equal(t, "uploads/abc/report.pdf", uploadedFields["key"])
	assert.Equal(t, "signed-policy", uploadedFields["policy"])
	assert.Equal(t, "pdf bytes", uploadedContents)
}

func TestUploadFileMissingKey(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"url":    "https://bucket.example.com",
			"fields": map[string]any{"policy": "signed"},
		})
	}))

	_, err := c.UploadFile(context.Background(), "a.txt", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "object key")
}

func TestUploadFileTargetRejects(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("POST /remote-dispatch/generate-file-upload-presigned-post", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"url":    srv.URL + "/bucket",
			"fields": map[string]any{"key": "uploads/x"},
		})
	})
	mux.HandleFunc("POST /bucket", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired", http.StatusForbidden)
	})

	c := New(Options{BaseURL: srv.URL, APIKey: "k", HTTPClient: srv.Client()})

	_, err := c.UploadFile(context.Background(), "a.txt", strings.NewReader("x"))
	require.Error(t, err)
}
