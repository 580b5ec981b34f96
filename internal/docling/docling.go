// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docling is a client for the docling-serve conversion API. It
// uploads PDF chunks and returns the service's JSON document verbatim.
package docling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"github.com/pdiddy/docprep/internal/httputil"
	"github.com/pdiddy/docprep/pkg/types"
)

const (
	// ConvertPath is the synchronous file conversion endpoint.
	ConvertPath = "/v1alpha/convert/file"
	// HealthPath answers 200 when the service is up.
	HealthPath = "/health"

	fileField   = "files"
	contentType = "application/pdf"
	apiKeyHdr   = "X-Api-Key"

	// bodyExcerpt caps how much of an error response ends up in HTTPError.
	bodyExcerpt = 512
)

// Options are the conversion parameters sent with every upload.
type Options struct {
	FromFormats     []string
	ToFormats       []string
	ImageExportMode string
	DoOCR           bool
	ForceOCR        bool
	OCREngine       string
	OCRLang         []string
	PDFBackend      string
	TableMode       string
	AbortOnError    bool
	ReturnAsFile    bool
}

// DefaultOptions returns the parameter set used for PDF chunk ingestion:
// OCR with EasyOCR in English, fast table extraction, and an inline JSON
// response.
func DefaultOptions() Options {
	return Options{
		FromFormats:     []string{"docx", "pptx", "html", "image", "pdf", "asciidoc", "md", "xlsx"},
		ToFormats:       []string{"md", "json", "html", "text", "doctags"},
		ImageExportMode: "placeholder",
		DoOCR:           true,
		ForceOCR:        false,
		OCREngine:       "easyocr",
		OCRLang:         []string{"en"},
		PDFBackend:      "dlparse_v2",
		TableMode:       "fast",
		AbortOnError:    false,
		ReturnAsFile:    false,
	}
}

// Values encodes o as multipart form fields. List options become repeated
// keys.
func (o Options) Values() url.Values {
	v := url.Values{}
	v["from_formats"] = append([]string(nil), o.FromFormats...)
	v["to_formats"] = append([]string(nil), o.ToFormats...)
	v.Set("image_export_mode", o.ImageExportMode)
	v.Set("do_ocr", fmt.Sprint(o.DoOCR))
	v.Set("force_ocr", fmt.Sprint(o.ForceOCR))
	v.Set("ocr_engine", o.OCREngine)
	v["ocr_lang"] = append([]string(nil), o.OCRLang...)
	v.Set("pdf_backend", o.PDFBackend)
	v.Set("table_mode", o.TableMode)
	v.Set("abort_on_error", fmt.Sprint(o.AbortOnError))
	v.Set("return_as_file", fmt.Sprint(o.ReturnAsFile))
	return v
}

// HTTPError reports a non-success response from the service.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("conversion service returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("conversion service returned HTTP %d: %s", e.StatusCode, e.Body)
}

// Unwrap lets errors.Is(err, types.ErrHTTP) match.
func (e *HTTPError) Unwrap() error { return types.ErrHTTP }

// Client talks to one docling-serve instance.
type Client struct {
	http       *resty.Client
	maxRetries int
	opts       Options
}

// New creates a client for cfg.BaseURL using cfg's timeout, user agent,
// API key, and retry budget.
func New(cfg types.DispatchConfig, opts Options) *Client {
	hc := httputil.NewClient(cfg.HTTPConfig).
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	if cfg.APIKey != "" {
		hc.SetHeader(apiKeyHdr, cfg.APIKey)
	}
	return &Client{http: hc, maxRetries: cfg.MaxRetries, opts: opts}
}

// Convert uploads the chunk's file and returns the JSON response body.
// Transport failures and timeouts wrap types.ErrNetwork; non-2xx statuses
// return *HTTPError.
func (c *Client) Convert(ctx context.Context, chunk types.Chunk) (json.RawMessage, error) {
	if _, err := os.Stat(chunk.FilePath); err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrFileNotFound, chunk.FilePath)
	}

	form := c.opts.Values()
	name := filepath.Base(chunk.FilePath)

	resp, err := httputil.DoWithRetry(ctx, c.maxRetries, func(ctx context.Context) (*resty.Response, error) {
		f, err := os.Open(chunk.FilePath)
		if err != nil {
			return nil, fmt.Errorf("%w: opening %s: %v", types.ErrIO, chunk.FilePath, err)
		}
		defer f.Close()

		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Accept", "application/json").
			SetMultipartField(fileField, name, contentType, f).
			SetFormDataFromValues(form).
			Post(ConvertPath)
		if err != nil {
			return nil, fmt.Errorf("%w: posting %s: %v", types.ErrNetwork, name, err)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", types.ErrNetwork, err)
		}
		return nil, err
	}

	if !resp.IsSuccess() {
		return nil, &HTTPError{StatusCode: resp.StatusCode(), Body: excerpt(resp.Body())}
	}

	body := resp.Body()
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: response for %s is not valid JSON", types.ErrHTTP, name)
	}
	return json.RawMessage(body), nil
}

// Health checks that the service answers on HealthPath.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get(HealthPath)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrNetwork, err)
	}
	if !resp.IsSuccess() {
		return &HTTPError{StatusCode: resp.StatusCode(), Body: excerpt(resp.Body())}
	}
	return nil
}

func excerpt(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > bodyExcerpt {
		cut := bodyExcerpt
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + "…"
	}
	return s
}
