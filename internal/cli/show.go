package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showCase string

var showCmd = &cobra.Command{
	Use:   "show <structure-id>",
	Short: "Show one structure in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, col, err := loadCollection(showCase)
		if err != nil {
			return err
		}

		v, ok := col.FindByID(args[0])
		if !ok {
			return fmt.Errorf("structure %q not in case", args[0])
		}

		if jsonOutput {
			return outputJSON(map[string]interface{}{
				"name":       v.Name(),
				"category":   string(v.Category()),
				"resolution": string(v.Resolution()),
				"voxels":     v.Shape().Voxels(),
				"volume_cc":  volumeCC(v),
				"color":      v.Color().Hex(),
				"comment":    v.Comment(),
			})
		}

		PrintSection(v.Name())
		PrintLabelValue("Category", string(v.Category()))
		PrintLabelValue("Resolution", string(v.Resolution()))
		PrintLabelValue("Voxels", fmt.Sprintf("%d", v.Shape().Voxels()))
		PrintLabelValue("Volume", fmt.Sprintf("%.2f cc", volumeCC(v)))
		PrintLabelValue("Color", v.Color().Hex())
		if v.Comment() != "" {
			PrintLabelValue("Comment", v.Comment())
		}
		return nil
	},
}

func init() {
	showCmd.Flags().StringVar(&showCase, "case", "", "Case file to inspect")
	_ = showCmd.MarkFlagRequired("case")
}
