package server

import (
	"image"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smartmap-tools/holderscan/internal/detector"
	"github.com/smartmap-tools/holderscan/internal/labeler"
	"github.com/smartmap-tools/holderscan/internal/pipeline"
	"github.com/smartmap-tools/holderscan/internal/router"
)

// orchestratorInterface defines the methods the server needs from a
// detection orchestrator.
type orchestratorInterface interface {
	Run(img image.Image) []detector.Candidate
	Profile() detector.SensitivityProfile
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	orchestrator orchestratorInterface
	labels       *labeler.Labeler
	routing      router.Config
	corsOrigin   string
	maxUploadMB  int64
	timeoutSec   int
	profilesFile string
}

// Config holds server configuration.
type Config struct {
	Host         string
	Port         int
	CORSOrigin   string
	MaxUploadMB  int64
	TimeoutSec   int
	Profile      string
	ProfilesFile string
	Limits       pipeline.ClassLimits
	Overlaps     pipeline.OverlapThresholds
	OraclePath   string
	Routing      router.Config
}

// Response types for API endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

type CandidateInfo struct {
	Class      string  `json:"class"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence"`
}

type DetectResult struct {
	Candidates []CandidateInfo `json:"candidates"`
	Profile    string          `json:"profile"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Processing struct {
		DetectionTimeMs int64 `json:"detection_time_ms"`
	} `json:"processing"`
}

type DetectResponse struct {
	Success bool         `json:"success"`
	Result  DetectResult `json:"result,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type LabelResponse struct {
	Success      bool    `json:"success"`
	HolderID     string  `json:"holder_id"`
	Material     string  `json:"material,omitempty"`
	Type         string  `json:"type,omitempty"`
	Confidence   float64 `json:"confidence,omitempty"`
	Source       string  `json:"source,omitempty"`
	Tier         string  `json:"tier,omitempty"`
	TrackingNote string  `json:"tracking_note,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// NewServer creates a new detection server instance.
func NewServer(config Config) (*Server, error) {
	limits := config.Limits
	if limits == (pipeline.ClassLimits{}) {
		limits = pipeline.DefaultLimits()
	}
	overlaps := config.Overlaps
	if overlaps == (pipeline.OverlapThresholds{}) {
		overlaps = pipeline.DefaultOverlaps()
	}

	b := pipeline.NewBuilder().
		WithProfile(config.Profile).
		WithLimits(limits).
		WithOverlaps(overlaps)
	if config.ProfilesFile != "" {
		b = b.WithProfilesFile(config.ProfilesFile)
	}
	orch, err := b.Build()
	if err != nil {
		return nil, err
	}

	var oracle *labeler.OracleTable
	if config.OraclePath != "" {
		oracle, err = labeler.LoadOracle(config.OraclePath)
		if err != nil {
			return nil, err
		}
	} else {
		oracle = labeler.NewOracleTable(nil)
	}

	routing := config.Routing
	if err := routing.Validate(); err != nil {
		return nil, err
	}

	return &Server{
		orchestrator: orch,
		labels:       labeler.New(oracle),
		routing:      routing,
		corsOrigin:   config.CORSOrigin,
		maxUploadMB:  config.MaxUploadMB,
		timeoutSec:   config.TimeoutSec,
		profilesFile: config.ProfilesFile,
	}, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/detect", s.corsMiddleware(s.detectHandler))
	mux.HandleFunc("/label/", s.corsMiddleware(s.labelHandler))
	mux.HandleFunc("/ws/detect", s.detectWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}
