package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/beaconlabs/beacon/internal/models"
	"github.com/beaconlabs/beacon/internal/projectconfig"
	"github.com/beaconlabs/beacon/internal/promptgen"
)

func newMatrixCommand() *cobra.Command {
	var (
		matrixProfile string
		matrixTarget  int
		matrixJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Print the generated prompt matrix without running it",
		Long: `Print the prompt matrix that an audit would run.

Useful for reviewing prompt coverage and dimension weighting before spending
backend quota. The matrix is deterministic for a given profile and target
size.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := projectconfig.Load(".")
			if err != nil {
				return err
			}
			if matrixProfile != "" {
				cfg.Paths.Profile = matrixProfile
			}
			if matrixTarget > 0 {
				cfg.Defaults.TargetPrompts = matrixTarget
			}

			profile, err := models.LoadBrandProfile(cfg.Paths.Profile)
			if err != nil {
				return fmt.Errorf("failed to load profile: %w", err)
			}

			genCfg := promptgen.DefaultConfig()
			genCfg.TargetTotal = cfg.Defaults.TargetPrompts
			prompts := promptgen.Generate(profile, genCfg)

			if matrixJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(prompts)
			}

			printMatrix(profile, prompts)
			return nil
		},
	}

	cmd.Flags().StringVarP(&matrixProfile, "profile", "p", "", "Brand profile YAML (default: from .beacon.yaml)")
	cmd.Flags().IntVar(&matrixTarget, "target", 0, "Target prompt matrix size (default: 60)")
	cmd.Flags().BoolVar(&matrixJSON, "json", false, "Emit the matrix as JSON")

	return cmd
}

func printMatrix(profile *models.BrandProfile, prompts []models.Prompt) {
	fmt.Printf("Prompt matrix for %s: %d prompt(s)\n\n", profile.CompanyName, len(prompts))

	byDim := make(map[models.Dimension][]models.Prompt)
	for _, p := range prompts {
		byDim[p.Dimension] = append(byDim[p.Dimension], p)
	}

	for _, dim := range models.AllDimensions {
		dimPrompts := byDim[dim]
		if len(dimPrompts) == 0 {
			continue
		}
		fmt.Printf("%s (%d, weight %.2f):\n", dim, len(dimPrompts), dimPrompts[0].Weight)
		for _, p := range dimPrompts {
			fmt.Printf("  [%s] %s\n", p.ID, p.Text)
		}
		fmt.Println()
	}
}
