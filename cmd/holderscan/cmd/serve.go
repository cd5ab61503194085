package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smartmap-tools/holderscan/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the detection HTTP server",
	Long: `Starts an HTTP server exposing the detection pipeline and label
assignment over a REST API.

Endpoints:
  POST /detect      - detect sign holders in an uploaded image
  GET  /label/{id}  - assign a label to a holder ID
  GET  /health      - health check
  GET  /metrics     - Prometheus metrics
  GET  /ws/detect   - WebSocket detection with per-image progress

Examples:
  holderscan serve
  holderscan serve --port 9090 --profile aggressive
  holderscan serve --oracle labels.json`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		host, _ := cmd.Flags().GetString("host")
		if host == "" {
			host = cfg.Server.Host
		}
		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = cfg.Server.Port
		}
		corsOrigin, _ := cmd.Flags().GetString("cors-origin")
		maxUploadMB, _ := cmd.Flags().GetInt("max-upload-mb")
		if maxUploadMB == 0 {
			maxUploadMB = cfg.Server.MaxUploadMB
		}
		timeout, _ := cmd.Flags().GetInt("timeout")
		if timeout == 0 {
			timeout = cfg.Server.TimeoutSeconds
		}
		shutdownTimeout, _ := cmd.Flags().GetInt("shutdown-timeout")
		profile, _ := cmd.Flags().GetString("profile")
		if profile == "" {
			profile = cfg.Pipeline.Profile
		}
		profilesFile, _ := cmd.Flags().GetString("profiles-file")
		if profilesFile == "" {
			profilesFile = cfg.Pipeline.ProfilesFile
		}
		oraclePath, _ := cmd.Flags().GetString("oracle")
		if oraclePath == "" {
			oraclePath = cfg.Labeler.OraclePath
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		serverConfig := server.Config{
			Host:         host,
			Port:         port,
			CORSOrigin:   corsOrigin,
			MaxUploadMB:  int64(maxUploadMB),
			TimeoutSec:   timeout,
			Profile:      profile,
			ProfilesFile: profilesFile,
			Limits:       cfg.Pipeline.Limits,
			Overlaps:     cfg.Pipeline.Overlaps,
			OraclePath:   oraclePath,
			Routing:      cfg.Router,
		}

		detectServer, err := server.NewServer(serverConfig)
		if err != nil {
			return fmt.Errorf("failed to initialize server: %w", err)
		}

		mux := http.NewServeMux()
		detectServer.SetupRoutes(mux)

		httpServer := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       time.Duration(timeout) * time.Second,
			WriteTimeout:      time.Duration(timeout) * time.Second,
		}

		go func() {
			slog.Info("Starting detection server", "host", host, "port", port, "profile", profile)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Server error", "error", err)
				cancel()
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal", "signal", sig.String())
		case <-ctx.Done():
			slog.Info("Context cancelled, initiating shutdown")
		}

		slog.Info("Starting graceful shutdown", "timeout", fmt.Sprintf("%ds", shutdownTimeout))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(shutdownTimeout)*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		} else {
			slog.Info("HTTP server shutdown completed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "host to bind to")
	serveCmd.Flags().Int("port", 0, "port to listen on")
	serveCmd.Flags().String("cors-origin", "*", "allowed CORS origin")
	serveCmd.Flags().Int("max-upload-mb", 0, "maximum upload size in MB")
	serveCmd.Flags().Int("timeout", 0, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "graceful shutdown timeout in seconds")
	serveCmd.Flags().String("profile", "", "sensitivity profile (conservative, normal, aggressive)")
	serveCmd.Flags().String("profiles-file", "", "YAML file with custom sensitivity profiles")
	serveCmd.Flags().String("oracle", "", "JSON file with known holder labels")
}
