package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/beaconlabs/beacon/internal/cache"
	"github.com/beaconlabs/beacon/internal/projectconfig"
)

var cacheDir string

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the audit result cache",
		Long: `Manage the audit result cache.

The cache stores complete audit outcomes to avoid re-querying backends with
identical inputs. Cached results are keyed by the brand profile, the prompt
matrix configuration, and the backend set (excluding API keys).`,
	}

	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

func newCacheClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the audit result cache",
		Long: `Clear all cached audit outcomes.

The next audit run will query every backend from scratch.`,
		RunE: cacheClearE,
	}

	cmd.Flags().StringVar(&cacheDir, "cache-dir", projectconfig.DefaultCacheDir, "Cache directory to clear")

	return cmd
}

func cacheClearE(cmd *cobra.Command, args []string) error {
	absDir, err := filepath.Abs(cacheDir)
	if err != nil {
		return fmt.Errorf("resolving cache directory: %w", err)
	}

	c := cache.New(absDir)
	if err := c.Clear(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	fmt.Printf("Cache cleared: %s\n", absDir)
	return nil
}
