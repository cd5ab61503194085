package server

import (
	"bytes"
	"encoding/json"
	"image"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		return true
	},
}

// WebSocketDetectRequest is a detection request sent over a WebSocket
// connection. Image carries the raw encoded bytes (base64 on the wire).
type WebSocketDetectRequest struct {
	Image    []byte `json:"image"`
	Filename string `json:"filename,omitempty"`
	Profile  string `json:"profile,omitempty"`
}

// WebSocketDetectResponse reports detection progress and results over a
// WebSocket connection.
type WebSocketDetectResponse struct {
	Status   string        `json:"status"` // "processing", "completed", "error"
	Filename string        `json:"filename,omitempty"`
	Result   *DetectResult `json:"result,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// detectWebSocketHandler streams detection results back over a WebSocket.
// The client sends one WebSocketDetectRequest per image and receives a
// processing acknowledgment followed by the completed result, so a batch
// upload sees per-image progress instead of one response at the end.
func (s *Server) detectWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	for {
		var req WebSocketDetectRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("WebSocket read error", "error", err)
			}
			return
		}

		resp := s.handleWebSocketDetect(req)
		if err := s.writeWebSocketResponse(conn, WebSocketDetectResponse{
			Status:   "processing",
			Filename: req.Filename,
		}); err != nil {
			return
		}
		if err := s.writeWebSocketResponse(conn, resp); err != nil {
			return
		}
	}
}

// handleWebSocketDetect runs one WebSocket request through the pipeline.
func (s *Server) handleWebSocketDetect(req WebSocketDetectRequest) WebSocketDetectResponse {
	if len(req.Image) == 0 {
		return WebSocketDetectResponse{Status: "error", Filename: req.Filename, Error: "no image data provided"}
	}
	if int64(len(req.Image)) > s.maxUploadMB*1024*1024 {
		return WebSocketDetectResponse{Status: "error", Filename: req.Filename, Error: "image too large"}
	}

	img, _, err := image.Decode(bytes.NewReader(req.Image))
	if err != nil {
		return WebSocketDetectResponse{Status: "error", Filename: req.Filename, Error: "invalid image format"}
	}

	orch := s.orchestrator
	if req.Profile != "" && req.Profile != orch.Profile().Name {
		requested, err := s.orchestratorFor(req.Profile)
		if err != nil {
			return WebSocketDetectResponse{Status: "error", Filename: req.Filename, Error: err.Error()}
		}
		orch = requested
	}

	start := time.Now()
	candidates := orch.Run(img)
	elapsed := time.Since(start)

	detectRequestsTotal.WithLabelValues("success").Inc()
	detectDuration.WithLabelValues(orch.Profile().Name).Observe(elapsed.Seconds())

	bounds := img.Bounds()
	result := &DetectResult{
		Candidates: make([]CandidateInfo, 0, len(candidates)),
		Profile:    orch.Profile().Name,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
	}
	result.Processing.DetectionTimeMs = elapsed.Milliseconds()
	for _, c := range candidates {
		result.Candidates = append(result.Candidates, CandidateInfo{
			Class:      c.Class.String(),
			X:          int(c.Box.MinX),
			Y:          int(c.Box.MinY),
			Width:      int(c.Box.Width()),
			Height:     int(c.Box.Height()),
			Confidence: c.Confidence,
		})
	}

	return WebSocketDetectResponse{Status: "completed", Filename: req.Filename, Result: result}
}

func (s *Server) writeWebSocketResponse(conn *websocket.Conn, resp WebSocketDetectResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Warn("WebSocket write failed", "error", err)
		return err
	}
	return nil
}
