package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/smartmap-tools/holderscan/internal/detector"
	"github.com/smartmap-tools/holderscan/internal/pipeline"
	"github.com/smartmap-tools/holderscan/internal/utils"
	"github.com/spf13/cobra"
)

const (
	outputFormatJSON = "json"
	outputFormatText = "text"
)

// detectCmd represents the detect command.
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect sign holders in images",
	Long: `Process one or more image files and report detected poles,
rectangular signs and circular signs.

Supported formats: JPEG, PNG, BMP

Examples:
  holderscan detect photo.jpg
  holderscan detect *.png --profile aggressive --format json
  holderscan detect photo.jpg --overlay-dir ./overlays`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()

		profile, _ := cmd.Flags().GetString("profile")
		if profile == "" {
			profile = cfg.Pipeline.Profile
		}
		profilesFile, _ := cmd.Flags().GetString("profiles-file")
		if profilesFile == "" {
			profilesFile = cfg.Pipeline.ProfilesFile
		}
		format, _ := cmd.Flags().GetString("format")
		if format == "" {
			format = cfg.Output.Format
		}
		overlayDir, _ := cmd.Flags().GetString("overlay-dir")
		if overlayDir == "" {
			overlayDir = cfg.Output.OverlayDir
		}

		if format != outputFormatJSON && format != outputFormatText {
			return fmt.Errorf("invalid output format: %s (must be one of: %s)",
				format, strings.Join([]string{outputFormatJSON, outputFormatText}, ", "))
		}

		b := pipeline.NewBuilder().
			WithProfile(profile).
			WithLimits(cfg.Pipeline.Limits).
			WithOverlaps(cfg.Pipeline.Overlaps)
		if profilesFile != "" {
			b = b.WithProfilesFile(profilesFile)
		}
		orch, err := b.Build()
		if err != nil {
			return fmt.Errorf("failed to build pipeline: %w", err)
		}

		if overlayDir != "" {
			if err := os.MkdirAll(overlayDir, 0o750); err != nil {
				return fmt.Errorf("failed to create overlay directory: %w", err)
			}
		}

		for _, path := range args {
			if err := detectOne(cmd, orch, path, format, overlayDir); err != nil {
				return err
			}
		}
		return nil
	},
}

// detectOne runs detection on a single file and prints the result.
func detectOne(cmd *cobra.Command, orch *pipeline.Orchestrator, path, format, overlayDir string) error {
	if !utils.IsSupportedImage(path) {
		return fmt.Errorf("unsupported image format: %s", path)
	}

	img, meta, err := utils.LoadImage(path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	candidates := orch.Run(img)

	switch format {
	case outputFormatJSON:
		data, err := detector.CandidatesToJSON(candidates, meta.Width, meta.Height, orch.Profile().Name)
		if err != nil {
			return fmt.Errorf("failed to encode result for %s: %w", path, err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	default:
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d candidate(s) [profile %s]\n",
			path, len(candidates), orch.Profile().Name)
		for _, c := range candidates {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %-16s at (%d,%d) %dx%d confidence %.2f\n",
				c.Class.String(), int(c.Box.MinX), int(c.Box.MinY), int(c.Box.Width()), int(c.Box.Height()), c.Confidence)
		}
	}

	if overlayDir != "" {
		overlay := detector.VisualizeCandidates(img, candidates, 2)
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + "_overlay.png"
		if err := utils.SaveImage(overlay, filepath.Join(overlayDir, name)); err != nil {
			return fmt.Errorf("failed to save overlay for %s: %w", path, err)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().String("profile", "", "sensitivity profile (conservative, normal, aggressive)")
	detectCmd.Flags().String("profiles-file", "", "YAML file with custom sensitivity profiles")
	detectCmd.Flags().String("format", "", "output format (json, text)")
	detectCmd.Flags().String("overlay-dir", "", "directory to write detection overlays to")
}
