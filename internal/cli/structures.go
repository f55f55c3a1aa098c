package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jrctsi/AdaptiveStarter/internal/contour"
)

var structuresCase string

var structuresCmd = &cobra.Command{
	Use:   "structures",
	Short: "List the structures of a case file",
	Long:  `Display the structure inventory of a case: name, category, resolution, voxels, volume, and color.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, col, err := loadCollection(structuresCase)
		if err != nil {
			return err
		}

		if jsonOutput {
			type row struct {
				Name       string  `json:"name"`
				Category   string  `json:"category"`
				Resolution string  `json:"resolution"`
				Voxels     int     `json:"voxels"`
				VolumeCC   float64 `json:"volume_cc"`
				Color      string  `json:"color"`
			}
			rows := make([]row, 0, col.Len())
			for _, v := range col.Volumes() {
				rows = append(rows, row{
					Name:       v.Name(),
					Category:   string(v.Category()),
					Resolution: string(v.Resolution()),
					Voxels:     v.Shape().Voxels(),
					VolumeCC:   volumeCC(v),
					Color:      v.Color().Hex(),
				})
			}
			return outputJSON(rows)
		}

		PrintSection(fmt.Sprintf("Case: %s", c.Label))
		if col.Len() == 0 {
			PrintEmptyState("no structures")
			return nil
		}
		rows := make([][]string, 0, col.Len())
		for _, v := range col.Volumes() {
			rows = append(rows, []string{
				v.Name(),
				string(v.Category()),
				string(v.Resolution()),
				fmt.Sprintf("%d", v.Shape().Voxels()),
				fmt.Sprintf("%.2f", volumeCC(v)),
				v.Color().Hex(),
			})
		}
		PrintTable([]string{"NAME", "CATEGORY", "RESOLUTION", "VOXELS", "VOLUME (cc)", "COLOR"}, rows)
		return nil
	},
}

func volumeCC(v contour.Volume) float64 {
	if g, ok := v.Shape().(*contour.GridShape); ok {
		return g.VolumeCC()
	}
	return 0
}

func init() {
	structuresCmd.Flags().StringVar(&structuresCase, "case", "", "Case file to inspect")
	_ = structuresCmd.MarkFlagRequired("case")
}
