package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartmap-tools/holderscan/internal/router"
	"github.com/smartmap-tools/holderscan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(Config{
		Host:        "localhost",
		Port:        8080,
		CORSOrigin:  "*",
		MaxUploadMB: 10,
		TimeoutSec:  30,
		Routing:     router.DefaultConfig(),
	})
	require.NoError(t, err)
	return s
}

func newTestServerWithOracle(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "oracle.json")
	doc := `{"H100": {"material": "kov", "type": "stĺp značky samostatný", "confidence": 0.92}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	s, err := NewServer(Config{
		MaxUploadMB: 10,
		OraclePath:  path,
		Routing:     router.DefaultConfig(),
	})
	require.NoError(t, err)
	return s
}

func multipartImage(t *testing.T, fieldValues map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	img := testutil.PoleScene(t)
	var encoded bytes.Buffer
	require.NoError(t, png.Encode(&encoded, img))

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "H100.png")
	require.NoError(t, err)
	_, err = part.Write(encoded.Bytes())
	require.NoError(t, err)
	for k, v := range fieldValues {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.healthHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.NotEmpty(t, resp.Time)
}

func TestHealthHandlerMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()
	s.healthHandler(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDetectHandler(t *testing.T) {
	s := newTestServer(t)
	body, contentType := multipartImage(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/detect", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.detectHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp DetectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "normal", resp.Result.Profile)
	assert.Equal(t, 640, resp.Result.Width)
	assert.Equal(t, 480, resp.Result.Height)
}

func TestDetectHandlerProfileOverride(t *testing.T) {
	s := newTestServer(t)
	body, contentType := multipartImage(t, map[string]string{"profile": "aggressive"})

	req := httptest.NewRequest(http.MethodPost, "/detect", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.detectHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp DetectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "aggressive", resp.Result.Profile)
}

func TestDetectHandlerUnknownProfile(t *testing.T) {
	s := newTestServer(t)
	body, contentType := multipartImage(t, map[string]string{"profile": "extreme"})

	req := httptest.NewRequest(http.MethodPost, "/detect", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.detectHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetectHandlerNoFile(t *testing.T) {
	s := newTestServer(t)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("profile", "normal"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/detect", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	s.detectHandler(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp DetectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestDetectHandlerInvalidImage(t *testing.T) {
	s := newTestServer(t)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "bad.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("not an image"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/detect", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	s.detectHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetectHandlerMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/detect", nil)
	rec := httptest.NewRecorder()
	s.detectHandler(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestLabelHandlerOracleHit(t *testing.T) {
	s := newTestServerWithOracle(t)
	req := httptest.NewRequest(http.MethodGet, "/label/H100", nil)
	rec := httptest.NewRecorder()
	s.labelHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp LabelResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "H100", resp.HolderID)
	assert.Equal(t, "kov", resp.Material)
	assert.Equal(t, "oracle-lookup", resp.Source)
	assert.Equal(t, "auto-fill", resp.Tier)
	assert.Equal(t, "DMNB (AI: 0.92)", resp.TrackingNote)
}

func TestLabelHandlerFallback(t *testing.T) {
	s := newTestServerWithOracle(t)
	req := httptest.NewRequest(http.MethodGet, "/label/H999", nil)
	rec := httptest.NewRecorder()
	s.labelHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp LabelResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pattern-fallback", resp.Source)
	assert.InDelta(t, 0.55, resp.Confidence, 1e-9)
	assert.Equal(t, "manual-review", resp.Tier)
}

func TestLabelHandlerMissingID(t *testing.T) {
	s := newTestServerWithOracle(t)
	req := httptest.NewRequest(http.MethodGet, "/label/", nil)
	rec := httptest.NewRecorder()
	s.labelHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetupRoutes(t *testing.T) {
	s := newTestServer(t)
	mux := http.NewServeMux()
	s.SetupRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSMiddleware(t *testing.T) {
	s := newTestServer(t)
	handler := s.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodOptions, "/detect", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewServerRejectsBadConfig(t *testing.T) {
	_, err := NewServer(Config{
		MaxUploadMB: 10,
		Profile:     "extreme",
		Routing:     router.DefaultConfig(),
	})
	require.Error(t, err)

	_, err = NewServer(Config{
		MaxUploadMB: 10,
		Routing:     router.Config{HighCutoff: 0.5, LowCutoff: 0.9},
	})
	require.Error(t, err)

	_, err = NewServer(Config{
		MaxUploadMB: 10,
		OraclePath:  "/does/not/exist.json",
		Routing:     router.DefaultConfig(),
	})
	require.Error(t, err)
}
