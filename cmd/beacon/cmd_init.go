package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/beaconlabs/beacon/internal/projectconfig"
	"github.com/beaconlabs/beacon/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [company-name]",
		Short: "Create a brand profile and project config",
		Long: `Create a brand profile (brand.yaml) and a starter .beacon.yaml.

When running in a terminal (TTY), launches an interactive wizard that collects
the company basics, competitors, personas, and topics. In non-interactive
environments (CI, pipes), writes a commented template to fill in by hand.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			initialName := ""
			if len(args) == 1 {
				initialName = args[0]
			}
			return initCommandE(cmd, initialName, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files")

	return cmd
}

func initCommandE(cmd *cobra.Command, initialName string, force bool) error {
	out := cmd.OutOrStdout()

	profilePath := projectconfig.DefaultProfilePath
	if !force {
		if _, err := os.Stat(profilePath); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", profilePath)
		}
	}

	// Check TTY from the command's input stream, not os.Stdin directly.
	inReader := cmd.InOrStdin()
	isTTY := false
	if f, ok := inReader.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}

	var spec *wizard.ProfileSpec
	if isTTY {
		var err error
		spec, err = wizard.RunProfileWizard(inReader, out, initialName)
		if err != nil {
			return fmt.Errorf("wizard failed: %w", err)
		}
	} else {
		name := initialName
		if name == "" {
			name = "My Company"
		}
		spec = &wizard.ProfileSpec{CompanyName: name}
	}

	content, err := wizard.GenerateProfileYAML(spec)
	if err != nil {
		return fmt.Errorf("failed to generate profile: %w", err)
	}
	if err := os.WriteFile(profilePath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", profilePath, err)
	}
	fmt.Fprintf(out, "Created %s\n", profilePath) //nolint:errcheck

	wrote, err := writeStarterConfig(force)
	if err != nil {
		return err
	}
	if wrote {
		fmt.Fprintf(out, "Created %s\n", projectconfig.ConfigFileName) //nolint:errcheck
	}

	fmt.Fprintln(out) //nolint:errcheck
	fmt.Fprintf(out, "Next steps:\n")
	fmt.Fprintf(out, "  1. Fill in the optional sections of %s\n", profilePath)
	fmt.Fprintf(out, "  2. Set API keys (OPENAI_API_KEY, ANTHROPIC_API_KEY, ...)\n")
	fmt.Fprintf(out, "  3. Run: beacon run\n")
	return nil
}

const starterConfig = `# beacon project configuration
paths:
  profile: brand.yaml
  results: results/

defaults:
  concurrency: 5
  timeout: 120
  target_prompts: 60

# cache:
#   enabled: true
#   dir: .beacon-cache

backends:
  - kind: mock
    name: mock
  # - kind: openai
  #   name: openai
  #   model: gpt-4o
  # - kind: anthropic
  #   name: anthropic
  # - kind: gemini
  #   name: gemini
`

func writeStarterConfig(force bool) (bool, error) {
	path := projectconfig.ConfigFileName
	if !force {
		if _, err := os.Stat(path); err == nil {
			return false, nil // keep the existing project config
		}
	}
	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}
