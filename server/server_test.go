package server_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrsingh-rishi/voice-gateway/config"
	"github.com/mrsingh-rishi/voice-gateway/mocks"
	"github.com/mrsingh-rishi/voice-gateway/server"
)

type providers struct {
	chat   *mocks.MockChatCompleter
	speech *mocks.MockSpeechSynthesizer
	stt    *mocks.MockTranscriber
	live   *mocks.MockLiveTranscriber
}

func newTestApp(t *testing.T, cfg *config.Config) (*fiber.App, providers) {
	t.Helper()
	ctrl := gomock.NewController(t)
	p := providers{
		chat:   mocks.NewMockChatCompleter(ctrl),
		speech: mocks.NewMockSpeechSynthesizer(ctrl),
		stt:    mocks.NewMockTranscriber(ctrl),
		live:   mocks.NewMockLiveTranscriber(ctrl),
	}
	if cfg == nil {
		cfg = &config.Config{MaxUploadBytes: 1 << 20}
	}
	app := server.New(cfg, server.Dependencies{
		Chat:        p.chat,
		Speech:      p.speech,
		Transcriber: p.stt,
		Live:        p.live,
	}, zerolog.Nop())
	return app, p
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(body)
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealthIsStateless(t *testing.T) {
	app, _ := newTestApp(t, nil)

	for i := 0; i < 3; i++ {
		resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"status":"ok","message":"Backend running"}`, body)
	}

	do(t, app, postJSON("/chat", `{}`))
	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","message":"Backend running"}`, body)
}

func TestIndexServesEmbeddedPage(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "<title>Voice Chat</title>")
}

func TestIndexServesConfiguredFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(path, []byte("<html>custom</html>"), 0o600))
	app, _ := newTestApp(t, &config.Config{MaxUploadBytes: 1 << 20, IndexFile: path})

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html>custom</html>", body)
}

func TestStaticDirServesAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(`<script src="chat.js"></script>`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chat.js"), []byte("console.log('chat')"), 0o600))
	app, _ := newTestApp(t, &config.Config{MaxUploadBytes: 1 << 20, StaticDir: dir})

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `<script src="chat.js"></script>`, body)

	resp, body = do(t, app, httptest.NewRequest(http.MethodGet, "/chat.js", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "javascript")
	assert.Equal(t, "console.log('chat')", body)

	resp, body = do(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","message":"Backend running"}`, body)

	resp, body = do(t, app, httptest.NewRequest(http.MethodGet, "/missing.css", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Cannot GET /missing.css"}`, body)
}

func TestStaticDirWithoutIndexKeepsEmbeddedPage(t *testing.T) {
	app, _ := newTestApp(t, &config.Config{MaxUploadBytes: 1 << 20, StaticDir: t.TempDir()})

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<title>Voice Chat</title>")
}

func TestUnknownRouteRendersJSONError(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Cannot GET /nope"}`, body)
}

func TestMiddlewareHeaders(t *testing.T) {
	app, _ := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, _ := do(t, app, req)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := newTestApp(t, nil)
	do(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `gateway_http_requests_total{method="GET",route="/health",status="200"}`)
}

func multipartRequest(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.WriteField("lang", "en"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/stt", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}
