package server

import (
	"bytes"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/smartmap-tools/holderscan/internal/router"
	"github.com/smartmap-tools/holderscan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestWebSocket(t *testing.T) *websocket.Conn {
	t.Helper()
	s, err := NewServer(Config{MaxUploadMB: 10, Routing: router.DefaultConfig()})
	require.NoError(t, err)

	ts := httptest.NewServer(http.HandlerFunc(s.detectWebSocketHandler))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestDetectWebSocket(t *testing.T) {
	conn := dialTestWebSocket(t)

	img := testutil.PoleScene(t)
	var encoded bytes.Buffer
	require.NoError(t, png.Encode(&encoded, img))

	require.NoError(t, conn.WriteJSON(WebSocketDetectRequest{
		Image:    encoded.Bytes(),
		Filename: "H100.png",
	}))

	var processing WebSocketDetectResponse
	require.NoError(t, conn.ReadJSON(&processing))
	assert.Equal(t, "processing", processing.Status)
	assert.Equal(t, "H100.png", processing.Filename)

	var completed WebSocketDetectResponse
	require.NoError(t, conn.ReadJSON(&completed))
	assert.Equal(t, "completed", completed.Status)
	require.NotNil(t, completed.Result)
	assert.Equal(t, "normal", completed.Result.Profile)
	assert.Equal(t, 640, completed.Result.Width)
}

func TestDetectWebSocketEmptyImage(t *testing.T) {
	conn := dialTestWebSocket(t)

	require.NoError(t, conn.WriteJSON(WebSocketDetectRequest{Filename: "x.png"}))

	var processing WebSocketDetectResponse
	require.NoError(t, conn.ReadJSON(&processing))
	var errResp WebSocketDetectResponse
	require.NoError(t, conn.ReadJSON(&errResp))
	assert.Equal(t, "error", errResp.Status)
	assert.NotEmpty(t, errResp.Error)
}

func TestDetectWebSocketInvalidImage(t *testing.T) {
	conn := dialTestWebSocket(t)

	require.NoError(t, conn.WriteJSON(WebSocketDetectRequest{
		Image:    []byte("garbage"),
		Filename: "x.png",
	}))

	var processing WebSocketDetectResponse
	require.NoError(t, conn.ReadJSON(&processing))
	var errResp WebSocketDetectResponse
	require.NoError(t, conn.ReadJSON(&errResp))
	assert.Equal(t, "error", errResp.Status)
}
