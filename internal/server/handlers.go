package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/smartmap-tools/holderscan/internal/pipeline"
	"github.com/smartmap-tools/holderscan/internal/router"
	"github.com/smartmap-tools/holderscan/internal/version"
	_ "golang.org/x/image/bmp"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}

// detectHandler processes uploaded images through the detection pipeline.
// An optional "profile" form field selects a sensitivity profile other than
// the one the server was started with.
func (s *Server) detectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		s.writeDetectError(w, "Failed to parse form data", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeDetectError(w, "No image file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > s.maxUploadMB*1024*1024 {
		s.writeDetectError(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}
	uploadSizeBytes.Observe(float64(header.Size))

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.writeDetectError(w, "Failed to read image data", http.StatusInternalServerError)
		return
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		s.writeDetectError(w, "Invalid image format", http.StatusBadRequest)
		return
	}

	orch := s.orchestrator
	if name := r.FormValue("profile"); name != "" && name != orch.Profile().Name {
		requested, err := s.orchestratorFor(name)
		if err != nil {
			s.writeDetectError(w, fmt.Sprintf("Unknown profile: %v", err), http.StatusBadRequest)
			return
		}
		orch = requested
	}

	start := time.Now()
	candidates := orch.Run(img)
	elapsed := time.Since(start)

	detectRequestsTotal.WithLabelValues("success").Inc()
	detectDuration.WithLabelValues(orch.Profile().Name).Observe(elapsed.Seconds())
	perClass := make(map[string]int)
	for _, c := range candidates {
		perClass[c.Class.String()]++
	}
	for class, n := range perClass {
		candidatesDetected.WithLabelValues(class).Observe(float64(n))
	}

	bounds := img.Bounds()
	result := DetectResult{
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

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(DetectResponse{Success: true, Result: result}); err != nil {
		slog.Error("Failed to encode detect response", "error", err)
	}
}

// orchestratorFor builds an orchestrator for a one-off profile request.
func (s *Server) orchestratorFor(name string) (*pipeline.Orchestrator, error) {
	b := pipeline.NewBuilder().WithProfile(name)
	if s.profilesFile != "" {
		b = b.WithProfilesFile(s.profilesFile)
	}
	return b.Build()
}

// labelHandler assigns a material/type label to the holder ID in the URL
// path and routes it to a review tier.
func (s *Server) labelHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	holderID := strings.TrimPrefix(r.URL.Path, "/label/")
	if holderID == "" || strings.Contains(holderID, "/") {
		s.writeLabelError(w, holderID, "Missing or malformed holder ID", http.StatusBadRequest)
		return
	}

	labeled := s.labels.Assign(holderID)
	tier := router.Route(labeled.Confidence, s.routing)
	labelRequestsTotal.WithLabelValues(labeled.Source, tier.String()).Inc()

	response := LabelResponse{
		Success:      true,
		HolderID:     labeled.HolderID,
		Material:     labeled.Material,
		Type:         labeled.Type,
		Confidence:   labeled.Confidence,
		Source:       labeled.Source,
		Tier:         tier.String(),
		TrackingNote: labeled.TrackingNote(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode label response", "error", err)
	}
}

func (s *Server) writeDetectError(w http.ResponseWriter, message string, statusCode int) {
	detectRequestsTotal.WithLabelValues("error").Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(DetectResponse{Success: false, Error: message}); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}

func (s *Server) writeLabelError(w http.ResponseWriter, holderID, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	response := LabelResponse{Success: false, HolderID: holderID, Error: message}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}
