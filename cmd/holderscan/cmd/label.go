package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/smartmap-tools/holderscan/internal/labeler"
	"github.com/smartmap-tools/holderscan/internal/router"
	"github.com/spf13/cobra"
)

// labelCmd represents the label command.
var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Assign material and holder-type labels to holder IDs",
	Long: `Looks each holder ID up in the reference label table and falls back
to the most common label pair when the ID is unknown. Every assignment is
routed into a review tier based on its confidence.

Examples:
  holderscan label H100 --oracle labels.json
  holderscan label H100 H205 H999 --oracle labels.json --format json`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no holder IDs provided")
		}

		cfg := GetConfig()

		oraclePath, _ := cmd.Flags().GetString("oracle")
		if oraclePath == "" {
			oraclePath = cfg.Labeler.OraclePath
		}
		format, _ := cmd.Flags().GetString("format")
		if format == "" {
			format = cfg.Output.Format
		}

		routing := cfg.Router
		if cmd.Flags().Changed("high-cutoff") {
			routing.HighCutoff, _ = cmd.Flags().GetFloat64("high-cutoff")
		}
		if cmd.Flags().Changed("low-cutoff") {
			routing.LowCutoff, _ = cmd.Flags().GetFloat64("low-cutoff")
		}
		if err := routing.Validate(); err != nil {
			return err
		}

		oracle := labeler.NewOracleTable(nil)
		if oraclePath != "" {
			loaded, err := labeler.LoadOracle(oraclePath)
			if err != nil {
				return fmt.Errorf("failed to load label table: %w", err)
			}
			oracle = loaded
		}
		l := labeler.New(oracle)

		type labelOutput struct {
			HolderID     string  `json:"holder_id"`
			Material     string  `json:"material"`
			Type         string  `json:"type"`
			Confidence   float64 `json:"confidence"`
			Source       string  `json:"source"`
			Tier         string  `json:"tier"`
			TrackingNote string  `json:"tracking_note"`
		}

		results := make([]labelOutput, 0, len(args))
		for _, id := range args {
			labeled := l.Assign(id)
			tier := router.Route(labeled.Confidence, routing)
			results = append(results, labelOutput{
				HolderID:     labeled.HolderID,
				Material:     labeled.Material,
				Type:         labeled.Type,
				Confidence:   labeled.Confidence,
				Source:       labeled.Source,
				Tier:         tier.String(),
				TrackingNote: labeled.TrackingNote(),
			})
		}

		if format == outputFormatJSON {
			data, err := json.MarshalIndent(results, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode results: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		for _, r := range results {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s / %s (%.2f, %s) -> %s\n",
				r.HolderID, r.Material, r.Type, r.Confidence, r.Source, r.Tier)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(labelCmd)

	labelCmd.Flags().String("oracle", "", "JSON file with known holder labels")
	labelCmd.Flags().String("format", "", "output format (json, text)")
	labelCmd.Flags().Float64("high-cutoff", router.DefaultConfig().HighCutoff, "confidence at or above which labels auto-fill")
	labelCmd.Flags().Float64("low-cutoff", router.DefaultConfig().LowCutoff, "confidence at or above which labels are suggested for review")
}
