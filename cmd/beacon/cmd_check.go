package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/beaconlabs/beacon/internal/projectconfig"
	"github.com/beaconlabs/beacon/internal/validation"
)

func newCheckCommand() *cobra.Command {
	var checkProfile string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the brand profile and project config",
		Long: `Validate the brand profile and .beacon.yaml against their schemas.

Catches typos, missing required fields, and unknown keys before an audit
spends backend quota.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := projectconfig.Load(".")
			if err != nil {
				return err
			}
			if checkProfile != "" {
				cfg.Paths.Profile = checkProfile
			}
			return checkCommandE(cfg)
		},
	}

	cmd.Flags().StringVarP(&checkProfile, "profile", "p", "", "Brand profile YAML (default: from .beacon.yaml)")

	return cmd
}

func checkCommandE(cfg *projectconfig.ProjectConfig) error {
	failed := false

	profileErrs, err := validation.ValidateProfileFile(cfg.Paths.Profile)
	if err != nil {
		return err
	}
	if len(profileErrs) == 0 {
		fmt.Printf("✓ %s\n", cfg.Paths.Profile)
	} else {
		failed = true
		fmt.Printf("✗ %s\n", cfg.Paths.Profile)
		for _, e := range profileErrs {
			fmt.Printf("    %s\n", e)
		}
	}

	// The project config is optional; only validate it when present.
	if _, statErr := os.Stat(projectconfig.ConfigFileName); statErr == nil {
		configErrs, err := validation.ValidateConfigFile(projectconfig.ConfigFileName)
		if err != nil {
			return err
		}
		if len(configErrs) == 0 {
			fmt.Printf("✓ %s\n", projectconfig.ConfigFileName)
		} else {
			failed = true
			fmt.Printf("✗ %s\n", projectconfig.ConfigFileName)
			for _, e := range configErrs {
				fmt.Printf("    %s\n", e)
			}
		}
	}

	if failed {
		return errors.New("validation failed")
	}
	return nil
}
