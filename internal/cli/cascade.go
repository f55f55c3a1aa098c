package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jrctsi/AdaptiveStarter/internal/crop"
)

var (
	cascadeCase    string
	cascadeTargets []string
	cascadeMargin  float64
	cascadePrefix  string
	cascadeSuffix  string
	cascadeReplace bool
	cascadeLighten float64
	cascadeOut     string
)

var cascadeCmd = &cobra.Command{
	Use:   "cascade",
	Short: "Build a ladder of cropped target volumes for boost planning",
	Long: `Derive one cropped planning volume per target, each cropped against
every target with a strictly higher dose.

Targets are given as ID:DOSE pairs, e.g. --target PTV_70:70 --target
PTV_60:60. The highest-dose target's derivative is an uncropped copy; each
lower tier excludes the margin-expanded regions of the tiers above it.
A single target's failure is logged and skipped without aborting the rest.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession()
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("margin") {
			cascadeMargin = sess.settings.Cascade.MarginMM
		}
		if !cmd.Flags().Changed("prefix") {
			cascadePrefix = sess.settings.Cascade.Prefix
		}
		if !cmd.Flags().Changed("suffix") {
			cascadeSuffix = sess.settings.Cascade.Suffix
		}
		if !cmd.Flags().Changed("lighten") {
			cascadeLighten = sess.settings.Cascade.Lighten
		}

		targets, err := parseTargetSpecs(cascadeTargets)
		if err != nil {
			return err
		}

		c, col, err := loadCollection(cascadeCase)
		if err != nil {
			return err
		}

		result, err := sess.engine.BuildCascade(context.Background(), col, &crop.CascadeRequest{
			Targets:       targets,
			MarginMM:      cascadeMargin,
			Prefix:        cascadePrefix,
			Suffix:        cascadeSuffix,
			Replace:       cascadeReplace,
			LightenFactor: cascadeLighten,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		PrintSuccess(fmt.Sprintf("Built %s", PrintCount(len(result.Entries), "cascade volume", "cascade volumes")))
		if len(result.Entries) > 0 {
			rows := make([][]string, 0, len(result.Entries))
			for _, e := range result.Entries {
				rows = append(rows, []string{e.Target, e.Cropped, fmt.Sprintf("%.1f", e.DoseGy)})
			}
			PrintTable([]string{"TARGET", "CROPPED", "DOSE (Gy)"}, rows)
		}
		for _, s := range result.Skipped {
			PrintWarning(fmt.Sprintf("skipped %s: %s", s.Target, s.Reason))
		}

		if cascadeOut != "" {
			report, err := sess.reports.Build("adaptive", rootCmd.Version, cascadeCase, c, col, result.Entries)
			if err != nil {
				return err
			}
			if err := sess.reports.Write(cascadeOut, report); err != nil {
				return err
			}
			PrintLabelValue("Report", cascadeOut)
		}
		return nil
	},
}

// parseTargetSpecs parses ID:DOSE pairs into target doses.
func parseTargetSpecs(specs []string) ([]crop.TargetDose, error) {
	targets := make([]crop.TargetDose, 0, len(specs))
	for _, spec := range specs {
		idx := strings.LastIndex(spec, ":")
		if idx <= 0 || idx == len(spec)-1 {
			return nil, fmt.Errorf("invalid target %q: expected ID:DOSE", spec)
		}
		dose, err := strconv.ParseFloat(spec[idx+1:], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid dose in target %q: %w", spec, err)
		}
		if dose <= 0 {
			return nil, fmt.Errorf("invalid dose in target %q: must be positive", spec)
		}
		targets = append(targets, crop.TargetDose{Target: spec[:idx], DoseGy: dose})
	}
	return targets, nil
}

func init() {
	cascadeCmd.Flags().StringVar(&cascadeCase, "case", "", "Case file to operate on")
	cascadeCmd.Flags().StringArrayVar(&cascadeTargets, "target", nil, "Target as ID:DOSE, highest dose first (repeatable)")
	cascadeCmd.Flags().Float64VarP(&cascadeMargin, "margin", "m", 0, "Cutter expansion margin in millimeters")
	cascadeCmd.Flags().StringVar(&cascadePrefix, "prefix", "", "Prefix for derived identifiers")
	cascadeCmd.Flags().StringVar(&cascadeSuffix, "suffix", "", "Suffix for derived identifiers")
	cascadeCmd.Flags().BoolVar(&cascadeReplace, "replace", false, "Replace existing volumes under derived identifiers")
	cascadeCmd.Flags().Float64Var(&cascadeLighten, "lighten", 0, "Blend factor toward white for derived colors [0,1]")
	cascadeCmd.Flags().StringVar(&cascadeOut, "out", "", "Write a YAML run report to this path")
	_ = cascadeCmd.MarkFlagRequired("case")
	_ = cascadeCmd.MarkFlagRequired("target")
}
