package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/beaconlabs/beacon/internal/projectconfig"
	"github.com/beaconlabs/beacon/internal/store"
)

func newRunsCommand() *cobra.Command {
	var (
		runsCompany string
		runsLimit   int
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded audit runs",
		Long: `List audit runs recorded in the history database, newest first.

Use "beacon runs show <run-id>" to print the full stored outcome of one run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := projectconfig.Load(".")
			if err != nil {
				return err
			}
			s, err := store.Open(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.ListRuns(runsCompany, runsLimit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No recorded runs.")
				return nil
			}
			printRunsTable(runs)
			return nil
		},
	}

	cmd.Flags().StringVar(&runsCompany, "company", "", "Filter by company name")
	cmd.Flags().IntVarP(&runsLimit, "limit", "n", 0, "Maximum rows to list (default: 50)")

	cmd.AddCommand(newRunsShowCommand())

	return cmd
}

func newRunsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the full stored outcome of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := projectconfig.Load(".")
			if err != nil {
				return err
			}
			s, err := store.Open(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer s.Close()

			outcome, err := s.GetRun(args[0])
			if err != nil {
				return err
			}
			if outcome == nil {
				return fmt.Errorf("run %q not found", args[0])
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(outcome)
		},
	}
}

func printRunsTable(runs []store.RunSummary) {
	idWidth := len("Run ID")
	companyWidth := len("Company")
	for _, r := range runs {
		if len(r.RunID) > idWidth {
			idWidth = len(r.RunID)
		}
		if w := len(r.CompanyName); w > companyWidth {
			companyWidth = w
		}
	}

	fmt.Printf("%s  %s  %s  %s  %s  %s\n",
		padRight("Run ID", idWidth),
		padRight("Company", companyWidth),
		padRight("When", 19),
		padRight("Score", 6),
		padRight("Severity", 9),
		"Backends")
	for _, r := range runs {
		fmt.Printf("%s  %s  %s  %s  %s  %s\n",
			padRight(r.RunID, idWidth),
			padRight(r.CompanyName, companyWidth),
			padRight(r.CreatedAt, 19),
			padRight(fmt.Sprintf("%.1f", r.OverallScore), 6),
			padRight(r.Severity, 9),
			strings.Join(r.Backends, ","))
	}
}
