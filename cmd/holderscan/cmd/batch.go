package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/smartmap-tools/holderscan/internal/batch"
	"github.com/smartmap-tools/holderscan/internal/labeler"
	"github.com/smartmap-tools/holderscan/internal/pipeline"
	"github.com/spf13/cobra"
)

// batchCmd represents the batch command.
var batchCmd = &cobra.Command{
	Use:   "batch [directory]",
	Short: "Process a directory of images in parallel",
	Long: `Runs the detection pipeline over every supported image in a
directory and writes a session report. When a label table is supplied the
holder IDs derived from the file names are labeled and routed as well.

Examples:
  holderscan batch ./images
  holderscan batch ./images --workers 8 --report report.json
  holderscan batch ./images --oracle labels.json --label-report labels_report.json`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input directory provided")
		}
		dir := args[0]

		cfg := GetConfig()

		workers, _ := cmd.Flags().GetInt("workers")
		if workers == 0 {
			workers = cfg.Batch.Workers
		}
		reportPath, _ := cmd.Flags().GetString("report")
		if reportPath == "" {
			reportPath = cfg.Batch.ReportPath
		}
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
		labelReportPath, _ := cmd.Flags().GetString("label-report")

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

		progress := func(done, total int) {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "\rProcessing %d/%d", done, total)
			if done == total {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr())
			}
		}

		report, err := batch.Run(cmd.Context(), dir, orch, workers, progress)
		if err != nil {
			return fmt.Errorf("batch run failed: %w", err)
		}

		if reportPath != "" {
			if err := batch.WriteReport(report, reportPath); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", reportPath)
		} else {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode report: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		}

		if oraclePath == "" {
			return nil
		}
		return labelBatch(cmd, report, oraclePath, labelReportPath)
	},
}

// labelBatch assigns labels to the holder IDs of a finished batch run.
func labelBatch(cmd *cobra.Command, report *batch.Report, oraclePath, labelReportPath string) error {
	cfg := GetConfig()

	oracle, err := labeler.LoadOracle(oraclePath)
	if err != nil {
		return fmt.Errorf("failed to load label table: %w", err)
	}

	holderIDs := make([]string, 0, len(report.Items))
	for _, item := range report.Items {
		if item.Error == "" {
			holderIDs = append(holderIDs, item.HolderID)
		}
	}

	labelReport := batch.LabelRun(holderIDs, labeler.New(oracle), cfg.Router)

	if labelReportPath != "" {
		if err := batch.WriteLabelReport(labelReport, labelReportPath); err != nil {
			return fmt.Errorf("failed to write label report: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Label report written to %s\n", labelReportPath)
		return nil
	}

	data, err := json.MarshalIndent(labelReport, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode label report: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Int("workers", 0, "number of parallel workers (0 = number of CPUs)")
	batchCmd.Flags().String("report", "", "file to write the session report to")
	batchCmd.Flags().String("profile", "", "sensitivity profile (conservative, normal, aggressive)")
	batchCmd.Flags().String("profiles-file", "", "YAML file with custom sensitivity profiles")
	batchCmd.Flags().String("oracle", "", "JSON file with known holder labels")
	batchCmd.Flags().String("label-report", "", "file to write the label report to")
}
