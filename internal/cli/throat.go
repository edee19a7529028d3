package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/fdv-converter/internal/hydraulics"
)

func newThroatCommand(a *app) *cobra.Command {
	var (
		width, height float64
		form          string
	)
	cmd := &cobra.Command{
		Use:   "throat",
		Short: "Solve the side-arc radius of an egg-shaped section",
		Long: `Solve the side-arc (throat) radius r3 of an egg section from its width and
height in metres. Form 1 uses a half-width invert, form 2 (Egg Type 2 and 2a)
a quarter-width invert.`,
		Example: `  $ fdvconvert throat --width 1.0 --height 1.5 --form 2`,
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			eggForm, err := parseForm(form)
			if err != nil {
				return err
			}
			r3, err := hydraulics.ThroatRadius(width, height, eggForm)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%.5f\n", r3)
			return nil
		},
	}
	f := cmd.Flags()
	f.Float64Var(&width, "width", 0, "section width in metres")
	f.Float64Var(&height, "height", 0, "section height in metres")
	f.StringVar(&form, "form", "1", "egg form: 1, 2, or a shape name such as \"Egg Type 2a\"")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")
	return cmd
}

func parseForm(s string) (hydraulics.EggForm, error) {
	switch s {
	case "1":
		return hydraulics.EggForm1, nil
	case "2", "2a":
		return hydraulics.EggForm2, nil
	}
	return hydraulics.ParseEggForm(s)
}
