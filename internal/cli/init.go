package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jrctsi/AdaptiveStarter/internal/casefile"
	"github.com/jrctsi/AdaptiveStarter/internal/fsops"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter case file",
	Long: `Write a starter case file to the given path (default: case.yaml).

The starter case holds a small boost-planning scenario - two nested targets
and one organ at risk - ready for the crop and cascade commands.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false,
		"Overwrite the case file if it already exists")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := "case.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists\nUse --force to overwrite", path)
	}

	c := starterCase()
	if err := c.Save(fsops.NewRealFS(), path); err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("Wrote starter case to %s", path))
	fmt.Println()
	PrintInfo("Next steps:")
	fmt.Printf("  1. Inspect structures:  adaptive structures --case %s\n", path)
	fmt.Printf("  2. Crop the organ:      adaptive crop --case %s --base OAR --cutter PTV_70 --margin 3\n", path)
	fmt.Printf("  3. Build the cascade:   adaptive cascade --case %s --target PTV_70:70 --target PTV_60:60 --margin 3\n", path)

	return nil
}

// starterCase is a minimal two-tier boost scenario.
func starterCase() *casefile.Case {
	return &casefile.Case{
		Label: "starter",
		Structures: []casefile.Structure{
			{
				Name:       "PTV_70",
				Category:   "ptv",
				Color:      "#cc3333",
				Resolution: "fine",
				Solids: []casefile.Solid{
					{Sphere: &casefile.Sphere{Center: [3]float64{0, 0, 0}, RadiusMM: 15}},
				},
			},
			{
				Name:     "PTV_60",
				Category: "ptv",
				Color:    "#dd8833",
				Solids: []casefile.Solid{
					{Sphere: &casefile.Sphere{Center: [3]float64{0, 0, 0}, RadiusMM: 30}},
				},
			},
			{
				Name:     "OAR",
				Category: "organ",
				Color:    "#3366cc",
				Solids: []casefile.Solid{
					{Sphere: &casefile.Sphere{Center: [3]float64{25, 0, 0}, RadiusMM: 12}},
				},
			},
		},
	}
}
