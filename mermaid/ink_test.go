package mermaid

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(
		WithBaseURL(server.URL),
		WithRateLimit(rate.NewLimiter(rate.Inf, 1)),
		WithLogger(zap.NewNop()),
	)
}

func TestRequestImage_Defaults(t *testing.T) {
	g := buildGraph(t, askNode{}, answerNode{})
	code, err := Generate(g)
	require.NoError(t, err)
	encoded := base64.StdEncoding.EncodeToString([]byte(code))

	var gotPath, gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte("image-bytes"))
	})

	data, err := client.RequestImage(context.Background(), g, ImageConfig{})
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), data)
	assert.Equal(t, "/img/"+encoded, gotPath)
	assert.Contains(t, gotQuery, "type=jpeg")
}

func TestRequestImage_Params(t *testing.T) {
	g := buildGraph(t, askNode{}, answerNode{})

	var got *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte("ok"))
	})

	_, err := client.RequestImage(context.Background(), g, ImageConfig{
		Type:            ImagePNG,
		BackgroundColor: "!white",
		Theme:           ThemeForest,
		Width:           800,
		Height:          600,
		Scale:           2,
	})
	require.NoError(t, err)

	q := got.URL.Query()
	assert.Equal(t, "png", q.Get("type"))
	assert.Equal(t, "!white", q.Get("bgColor"))
	assert.Equal(t, "forest", q.Get("theme"))
	assert.Equal(t, "800", q.Get("width"))
	assert.Equal(t, "600", q.Get("height"))
	assert.Equal(t, "2", q.Get("scale"))
}

func TestRequestImage_PDF(t *testing.T) {
	g := buildGraph(t, askNode{}, answerNode{})

	var got *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte("%PDF"))
	})

	_, err := client.RequestImage(context.Background(), g, ImageConfig{
		Type:         ImagePDF,
		PDFLandscape: true,
		PDFPaper:     PaperA4,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got.URL.Path, "/pdf/"))
	q := got.URL.Query()
	assert.True(t, q.Has("landscape"))
	assert.Equal(t, "a4", q.Get("paper"))

	// fit overrides orientation and paper size
	_, err = client.RequestImage(context.Background(), g, ImageConfig{
		Type:         ImagePDF,
		PDFFit:       true,
		PDFLandscape: true,
		PDFPaper:     PaperA4,
	})
	require.NoError(t, err)
	q = got.URL.Query()
	assert.True(t, q.Has("fit"))
	assert.False(t, q.Has("landscape"))
	assert.False(t, q.Has("paper"))
}

func TestRequestImage_ScaleValidation(t *testing.T) {
	g := buildGraph(t, askNode{}, answerNode{})
	client := NewClient(WithLogger(zap.NewNop()))

	_, err := client.RequestImage(context.Background(), g, ImageConfig{Scale: 5, Width: 100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	_, err = client.RequestImage(context.Background(), g, ImageConfig{Scale: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires width or height")
}

func TestRequestImage_RemoteFailure(t *testing.T) {
	g := buildGraph(t, askNode{}, answerNode{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "diagram too large", http.StatusTooManyRequests)
	})

	_, err := client.RequestImage(context.Background(), g, ImageConfig{})
	require.Error(t, err)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusTooManyRequests, reqErr.StatusCode)
	assert.Contains(t, reqErr.Body, "diagram too large")
	assert.Contains(t, reqErr.Error(), "429")
}

func TestSaveImage_InfersTypeFromExtension(t *testing.T) {
	g := buildGraph(t, askNode{}, answerNode{})

	var got *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte("png-bytes"))
	})

	path := filepath.Join(t.TempDir(), "diagram.png")
	require.NoError(t, client.SaveImage(context.Background(), path, g, ImageConfig{}))
	assert.Equal(t, "png", got.URL.Query().Get("type"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	svgPath := filepath.Join(t.TempDir(), "diagram.svg")
	require.NoError(t, client.SaveImage(context.Background(), svgPath, g, ImageConfig{}))
	assert.True(t, strings.HasPrefix(got.URL.Path, "/svg/"))
}

func TestTypeFromPath(t *testing.T) {
	assert.Equal(t, ImagePNG, typeFromPath("a/b.png"))
	assert.Equal(t, ImageWebP, typeFromPath("b.WEBP"))
	assert.Equal(t, ImageSVG, typeFromPath("c.svg"))
	assert.Equal(t, ImagePDF, typeFromPath("d.pdf"))
	assert.Equal(t, ImageJPEG, typeFromPath("e.jpg"))
	assert.Equal(t, ImageJPEG, typeFromPath("no-extension"))
}
