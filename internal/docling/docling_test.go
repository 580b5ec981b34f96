// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docling

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docprep/pkg/types"
)

func testConfig(url string) types.DispatchConfig {
	return types.DispatchConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 2 * time.Second, UserAgent: "docprep/test"},
		BaseURL:    url,
	}
}

func writeChunk(t *testing.T) types.Chunk {
	t.Helper()
	p := filepath.Join(t.TempDir(), "doc_pages_1_to_20.pdf")
	require.NoError(t, os.WriteFile(p, []byte("%PDF-1.4 chunk"), 0o644))
	return types.Chunk{StartPage: 1, EndPage: 20, FilePath: p}
}

func TestConvert_RequestShape(t *testing.T) {
	var (
		gotPath    string
		gotForm    map[string][]string
		gotName    string
		gotType    string
		gotContent string
		gotKey     string
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotForm = r.MultipartForm.Value
		fh := r.MultipartForm.File["files"][0]
		gotName = fh.Filename
		gotType = fh.Header.Get("Content-Type")
		f, _ := fh.Open()
		data, _ := io.ReadAll(f)
		f.Close()
		gotContent = string(data)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"document":{"md_content":"# Title"},"status":"success"}`))
	}))
	defer ts.Close()

	cfg := testConfig(ts.URL + "/")
	cfg.APIKey = "secret"
	chunk := writeChunk(t)

	body, err := New(cfg, DefaultOptions()).Convert(context.Background(), chunk)
	require.NoError(t, err)

	assert.JSONEq(t, `{"document":{"md_content":"# Title"},"status":"success"}`, string(body))
	assert.Equal(t, ConvertPath, gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "doc_pages_1_to_20.pdf", gotName)
	assert.Equal(t, "application/pdf", gotType)
	assert.Equal(t, "%PDF-1.4 chunk", gotContent)

	assert.Equal(t, []string{"docx", "pptx", "html", "image", "pdf", "asciidoc", "md", "xlsx"}, gotForm["from_formats"])
	assert.Equal(t, []string{"md", "json", "html", "text", "doctags"}, gotForm["to_formats"])
	assert.Equal(t, []string{"en"}, gotForm["ocr_lang"])
	for key, want := range map[string]string{
		"image_export_mode": "placeholder",
		"do_ocr":            "true",
		"force_ocr":         "false",
		"ocr_engine":        "easyocr",
		"pdf_backend":       "dlparse_v2",
		"table_mode":        "fast",
		"abort_on_error":    "false",
		"return_as_file":    "false",
	} {
		assert.Equal(t, []string{want}, gotForm[key], key)
	}
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		timeout  time.Duration
		wantKind error
		wantCode int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "conversion crashed", http.StatusInternalServerError)
			},
			wantKind: types.ErrHTTP,
			wantCode: http.StatusInternalServerError,
		},
		{
			name: "unprocessable",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
			},
			wantKind: types.ErrHTTP,
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name: "invalid json body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<html>ok</html>"))
			},
			wantKind: types.ErrHTTP,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			timeout:  50 * time.Millisecond,
			wantKind: types.ErrNetwork,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			cfg := testConfig(ts.URL)
			if tt.timeout > 0 {
				cfg.Timeout = tt.timeout
			}
			_, err := New(cfg, DefaultOptions()).Convert(context.Background(), writeChunk(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)

			if tt.wantCode != 0 {
				var herr *HTTPError
				require.True(t, errors.As(err, &herr))
				assert.Equal(t, tt.wantCode, herr.StatusCode)
			}
		})
	}
}

func TestConvert_ConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := New(testConfig(url), DefaultOptions()).Convert(context.Background(), writeChunk(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNetwork)
}

func TestConvert_MissingChunkFile(t *testing.T) {
	chunk := types.Chunk{StartPage: 1, EndPage: 2, FilePath: filepath.Join(t.TempDir(), "gone.pdf")}
	_, err := New(testConfig("http://127.0.0.1:1"), DefaultOptions()).Convert(context.Background(), chunk)
	assert.ErrorIs(t, err, types.ErrFileNotFound)
}

func TestHealth(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != HealthPath {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer ts.Close()

	require.NoError(t, New(testConfig(ts.URL), DefaultOptions()).Health(context.Background()))

	ts.Close()
	assert.ErrorIs(t, New(testConfig(ts.URL), DefaultOptions()).Health(context.Background()), types.ErrNetwork)
}

func TestHTTPError_Message(t *testing.T) {
	err := &HTTPError{StatusCode: 502, Body: "bad gateway"}
	assert.Equal(t, "conversion service returned HTTP 502: bad gateway", err.Error())
	assert.ErrorIs(t, err, types.ErrHTTP)
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"short body kept", "  bad gateway \n", "bad gateway"},
		{"exact limit kept", strings.Repeat("a", bodyExcerpt), strings.Repeat("a", bodyExcerpt)},
		{"ascii cut at limit", strings.Repeat("a", bodyExcerpt+10), strings.Repeat("a", bodyExcerpt) + "…"},
		{"multibyte rune not split", strings.Repeat("a", bodyExcerpt-1) + "é" + "tail", strings.Repeat("a", bodyExcerpt-1) + "…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := excerpt([]byte(tt.body))
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
