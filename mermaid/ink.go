// Copyright (c) GraphFlow Authors.
// Licensed under the MIT License.

package mermaid

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/graphflow/graph"
)

// ImageType selects the image format produced by mermaid.ink.
type ImageType string

// Supported image types.
const (
	ImageJPEG ImageType = "jpeg"
	ImagePNG  ImageType = "png"
	ImageWebP ImageType = "webp"
	ImageSVG  ImageType = "svg"
	ImagePDF  ImageType = "pdf"
)

// Theme selects a mermaid color theme.
type Theme string

// Supported themes.
const (
	ThemeDefault Theme = "default"
	ThemeNeutral Theme = "neutral"
	ThemeDark    Theme = "dark"
	ThemeForest  Theme = "forest"
)

// Paper selects a PDF paper size.
type Paper string

// Supported paper sizes.
const (
	PaperLetter  Paper = "letter"
	PaperLegal   Paper = "legal"
	PaperTabloid Paper = "tabloid"
	PaperLedger  Paper = "ledger"
	PaperA0      Paper = "a0"
	PaperA1      Paper = "a1"
	PaperA2      Paper = "a2"
	PaperA3      Paper = "a3"
	PaperA4      Paper = "a4"
	PaperA5      Paper = "a5"
	PaperA6      Paper = "a6"
)

// ImageConfig parameterizes a mermaid.ink rendering request. The zero value
// requests a jpeg with service defaults.
type ImageConfig struct {
	// Type is the image format. Empty means jpeg.
	Type ImageType
	// PDFFit scales a PDF to fit the diagram. PDF only.
	PDFFit bool
	// PDFLandscape requests landscape orientation. PDF only, ignored with
	// PDFFit.
	PDFLandscape bool
	// PDFPaper is the PDF paper size. PDF only, ignored with PDFFit.
	PDFPaper Paper
	// BackgroundColor is a hex value ("FF0000") or named color ("!red").
	BackgroundColor string
	// Theme is the mermaid color theme.
	Theme Theme
	// Width in pixels.
	Width int
	// Height in pixels.
	Height int
	// Scale must be within [1, 3] and requires Width or Height.
	Scale float64
}

// DefaultBaseURL is the public mermaid.ink endpoint.
const DefaultBaseURL = "https://mermaid.ink"

// RequestError reports a non-success response from mermaid.ink, carrying
// the status and body verbatim.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("mermaid.ink returned %d: %s", e.StatusCode, e.Body)
}

// Client requests rendered diagram images from a mermaid.ink deployment.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a self-hosted mermaid.ink deployment.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithRateLimit replaces the request rate limiter. The public mermaid.ink
// service throttles aggressive callers.
func WithRateLimit(limiter *rate.Limiter) ClientOption {
	return func(c *Client) { c.limiter = limiter }
}

// WithLogger sets a custom logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = logger.With(zap.String("component", "mermaid_ink")) }
}

// NewClient creates a mermaid.ink client with a 30s request timeout and a
// 1 req/s rate limit by default.
func NewClient(opts ...ClientOption) *Client {
	logger, _ := zap.NewProduction()
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
		logger:  logger.With(zap.String("component", "mermaid_ink")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestImage generates diagram code for the graph and requests a rendered
// image, returning the raw image bytes. Non-success responses fail with a
// *RequestError carrying the status and body verbatim.
func (c *Client) RequestImage(ctx context.Context, g *graph.Graph, cfg ImageConfig, opts ...Option) ([]byte, error) {
	code, err := Generate(g, opts...)
	if err != nil {
		return nil, err
	}
	return c.RequestImageCode(ctx, code, cfg)
}

// RequestImageCode requests a rendered image for already-generated mermaid
// code.
func (c *Client) RequestImageCode(ctx context.Context, code string, cfg ImageConfig) ([]byte, error) {
	reqURL, err := c.buildURL(code, cfg)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request image: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	c.logger.Debug("image rendered",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
	)
	return body, nil
}

// SaveImage renders the graph and writes the image to path. When cfg.Type is
// empty, the format is inferred from the path's extension (png, webp, svg,
// pdf); unknown extensions fall back to jpeg.
func (c *Client) SaveImage(ctx context.Context, path string, g *graph.Graph, cfg ImageConfig, opts ...Option) error {
	if cfg.Type == "" {
		cfg.Type = typeFromPath(path)
	}
	data, err := c.RequestImage(ctx, g, cfg, opts...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write image %s: %w", path, err)
	}
	c.logger.Info("image saved", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

func typeFromPath(path string) ImageType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return ImagePNG
	case ".webp":
		return ImageWebP
	case ".svg":
		return ImageSVG
	case ".pdf":
		return ImagePDF
	default:
		return ImageJPEG
	}
}

func (c *Client) buildURL(code string, cfg ImageConfig) (string, error) {
	if cfg.Scale != 0 {
		if cfg.Scale < 1 || cfg.Scale > 3 {
			return "", fmt.Errorf("scale %v out of range [1, 3]", cfg.Scale)
		}
		if cfg.Width == 0 && cfg.Height == 0 {
			return "", fmt.Errorf("scale requires width or height")
		}
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(code))
	params := url.Values{}

	var path string
	switch cfg.Type {
	case ImagePDF:
		path = "/pdf/"
		if cfg.PDFFit {
			params.Set("fit", "")
		} else {
			if cfg.PDFLandscape {
				params.Set("landscape", "")
			}
			if cfg.PDFPaper != "" {
				params.Set("paper", string(cfg.PDFPaper))
			}
		}
	case ImageSVG:
		path = "/svg/"
	default:
		path = "/img/"
		imgType := cfg.Type
		if imgType == "" {
			imgType = ImageJPEG
		}
		params.Set("type", string(imgType))
	}

	if cfg.BackgroundColor != "" {
		params.Set("bgColor", cfg.BackgroundColor)
	}
	if cfg.Theme != "" {
		params.Set("theme", string(cfg.Theme))
	}
	if cfg.Width != 0 {
		params.Set("width", strconv.Itoa(cfg.Width))
	}
	if cfg.Height != 0 {
		params.Set("height", strconv.Itoa(cfg.Height))
	}
	if cfg.Scale != 0 {
		params.Set("scale", strconv.FormatFloat(cfg.Scale, 'f', -1, 64))
	}

	reqURL := c.baseURL + path + encoded
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	return reqURL, nil
}
