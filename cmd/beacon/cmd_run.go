package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/beaconlabs/beacon/internal/backend"
	"github.com/beaconlabs/beacon/internal/cache"
	"github.com/beaconlabs/beacon/internal/detect"
	"github.com/beaconlabs/beacon/internal/models"
	"github.com/beaconlabs/beacon/internal/parser"
	"github.com/beaconlabs/beacon/internal/projectconfig"
	"github.com/beaconlabs/beacon/internal/promptgen"
	"github.com/beaconlabs/beacon/internal/runner"
	"github.com/beaconlabs/beacon/internal/scoring"
	"github.com/beaconlabs/beacon/internal/statistics"
	"github.com/beaconlabs/beacon/internal/store"
)

var (
	profilePath   string
	outputPath    string
	verbose       bool
	concurrency   int
	targetPrompts int
	backendFlags  []string
	enableCache   bool
	disableCache  bool
	runCacheDir   string
	noStore       bool
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a brand visibility audit",
		Long: `Run a full brand visibility audit.

The audit loads the brand profile, generates the weighted prompt matrix,
queries every configured backend concurrently, scores the replies, and prints
a report with anti-pattern findings and a prioritized gap analysis.

Backends come from the backends section of .beacon.yaml, or from repeated
--backend flags (kind, or kind=model). API keys are read from the standard
environment variables (OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY,
PERPLEXITY_API_KEY) when not set in the config file.`,
		Args: cobra.NoArgs,
		RunE: runCommandE,
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Brand profile YAML (default: from .beacon.yaml)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output JSON file for the full audit outcome")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output with per-prompt progress")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Max in-flight queries per backend (default: 5)")
	cmd.Flags().IntVar(&targetPrompts, "target", 0, "Target prompt matrix size (default: 60)")
	cmd.Flags().StringArrayVar(&backendFlags, "backend", nil, "Backend to query, as kind or kind=model (can be repeated)")
	cmd.Flags().BoolVar(&enableCache, "cache", false, "Enable result caching (default: from .beacon.yaml)")
	cmd.Flags().BoolVar(&disableCache, "no-cache", false, "Disable result caching")
	cmd.Flags().StringVar(&runCacheDir, "cache-dir", "", "Cache directory for storing results")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "Skip recording this run in the history database")

	return cmd
}

func runCommandE(cmd *cobra.Command, args []string) error {
	cfg, err := projectconfig.Load(".")
	if err != nil {
		return err
	}
	applyRunFlags(cfg)

	profile, err := models.LoadBrandProfile(cfg.Paths.Profile)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	settings, err := resolveBackends(cfg)
	if err != nil {
		return err
	}

	genCfg := promptgen.DefaultConfig()
	genCfg.TargetTotal = cfg.Defaults.TargetPrompts
	prompts := promptgen.Generate(profile, genCfg)

	fmt.Printf("Auditing: %s\n", profile.CompanyName)
	fmt.Printf("Prompts: %d across %d dimensions\n", len(prompts), len(models.AllDimensions))
	names := backendNames(settings)
	fmt.Printf("Backends: %s\n", strings.Join(names, ", "))
	fmt.Println()

	// Cache lookup before any backend is dialed.
	var resultCache *cache.Cache
	var cacheKey string
	if *cfg.Cache.Enabled {
		absCacheDir, err := filepath.Abs(cfg.Cache.Dir)
		if err != nil {
			return fmt.Errorf("resolving cache directory: %w", err)
		}
		resultCache = cache.New(absCacheDir)
		cacheKey, err = cache.Key(profile, genCfg, settings)
		if err != nil {
			return fmt.Errorf("computing cache key: %w", err)
		}
		if cached, ok := resultCache.Get(cacheKey); ok {
			fmt.Println("Using cached audit result.")
			fmt.Println()
			return reportOutcome(cfg, cached)
		}
	}

	backends := make([]backend.Backend, 0, len(settings))
	for _, s := range settings {
		be, err := backend.New(s)
		if err != nil {
			return err
		}
		backends = append(backends, be)
	}

	p := parser.New(pickBackend(backends, cfg.Defaults.ExtractBackend))

	run := runner.New(backends, p, runner.WithConcurrency(cfg.Defaults.Concurrency))
	if verbose {
		run.OnProgress(verboseProgressListener)
	} else {
		run.OnProgress(simpleProgressListener)
	}

	started := time.Now()
	results, err := run.Run(context.Background(), profile, prompts)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	engine := scoring.NewEngine(scoring.DefaultConfig())
	promptScores := make([]models.PromptScore, 0, len(results))
	for _, r := range results {
		promptScores = append(promptScores,
			engine.ScorePromptForEntity(profile.CompanyName, r.Mentions, r.PromptID, r.Backend, r.Weight))
	}
	aggregate := engine.Aggregate(profile.CompanyName, promptScores)

	analyzer := scoring.NewAnalyzer(engine, pickBackend(backends, cfg.Defaults.JudgeBackend))
	analysis := analyzer.Analyze(context.Background(), profile, results)

	patterns, gaps := detect.Run(detect.Input{
		Profile:  profile,
		Analysis: &analysis,
		Results:  results,
	})

	outcome := &models.AuditOutcome{
		RunID:       uuid.NewString(),
		CompanyName: profile.CompanyName,
		Domain:      profile.Domain,
		Timestamp:   started,
		DurationMs:  time.Since(started).Milliseconds(),
		Aggregate:   aggregate,
		Analysis:    analysis,
		Patterns:    patterns,
		Gaps:        gaps,
		Results:     results,
		Backends:    names,
	}

	if resultCache != nil {
		if err := resultCache.Put(cacheKey, outcome); err != nil {
			fmt.Fprintf(os.Stderr, "warning: caching result failed: %v\n", err)
		}
	}

	if *cfg.Store.Enabled && !noStore {
		if err := recordRun(cfg, outcome); err != nil {
			fmt.Fprintf(os.Stderr, "warning: recording run failed: %v\n", err)
		}
	}

	return reportOutcome(cfg, outcome)
}

// applyRunFlags overlays CLI flags onto the loaded project config.
func applyRunFlags(cfg *projectconfig.ProjectConfig) {
	if profilePath != "" {
		cfg.Paths.Profile = profilePath
	}
	if concurrency > 0 {
		cfg.Defaults.Concurrency = concurrency
	}
	if targetPrompts > 0 {
		cfg.Defaults.TargetPrompts = targetPrompts
	}
	if enableCache {
		t := true
		cfg.Cache.Enabled = &t
	}
	if disableCache {
		f := false
		cfg.Cache.Enabled = &f
	}
	if runCacheDir != "" {
		cfg.Cache.Dir = runCacheDir
	}
	if verbose {
		t := true
		cfg.Defaults.Verbose = &t
	}
}

// resolveBackends builds the backend settings list from config and flags,
// filling API keys from the environment.
func resolveBackends(cfg *projectconfig.ProjectConfig) ([]backend.Settings, error) {
	settings := cfg.Backends
	if len(backendFlags) > 0 {
		settings = nil
		for _, flag := range backendFlags {
			kind, model, _ := strings.Cut(flag, "=")
			settings = append(settings, backend.Settings{Kind: kind, Model: model})
		}
	}
	if len(settings) == 0 {
		return nil, fmt.Errorf("%w: add a backends section to %s or pass --backend",
			runner.ErrNoBackends, projectconfig.ConfigFileName)
	}

	for i := range settings {
		if settings[i].Name == "" {
			settings[i].Name = settings[i].Kind
		}
		if settings[i].APIKey == "" {
			settings[i].APIKey = envAPIKey(settings[i].Kind)
		}
		if settings[i].Timeout == 0 {
			settings[i].Timeout = cfg.Timeout()
		}
	}
	return settings, nil
}

// envAPIKey returns the conventional environment variable for a backend kind.
func envAPIKey(kind string) string {
	switch strings.ToLower(kind) {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "perplexity":
		return os.Getenv("PERPLEXITY_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	default:
		return ""
	}
}

// pickBackend returns the backend with the given name, or the first backend
// when the name is empty or unknown. Returns nil for an empty list.
func pickBackend(backends []backend.Backend, name string) backend.Backend {
	if len(backends) == 0 {
		return nil
	}
	for _, be := range backends {
		if be.Name() == name {
			return be
		}
	}
	return backends[0]
}

func backendNames(settings []backend.Settings) []string {
	names := make([]string, 0, len(settings))
	for _, s := range settings {
		names = append(names, s.Name)
	}
	return names
}

// recordRun saves the outcome to the run store and prints the delta against
// the previous run for the same company.
func recordRun(cfg *projectconfig.ProjectConfig, outcome *models.AuditOutcome) error {
	s, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	previous, found, err := s.PreviousScore(outcome.CompanyName, outcome.RunID)
	if err != nil {
		return err
	}

	if err := s.SaveRun(outcome); err != nil {
		return err
	}

	if found {
		delta := statistics.ScoreDelta(previous, outcome.Analysis.OverallScore)
		fmt.Printf("Change vs previous run: %+.1f (%.1f -> %.1f)\n\n",
			delta, previous, outcome.Analysis.OverallScore)
	}
	return nil
}

// reportOutcome prints the summary and saves the JSON output if requested.
func reportOutcome(cfg *projectconfig.ProjectConfig, outcome *models.AuditOutcome) error {
	printSummary(outcome, *cfg.Defaults.Verbose)

	if outputPath != "" {
		if err := saveOutcome(outcome, outputPath); err != nil {
			return fmt.Errorf("failed to save output: %w", err)
		}
		fmt.Printf("\nResults saved to: %s\n", outputPath)
	}

	if outcome.Analysis.ErrorCount > 0 {
		return &AuditIncompleteError{
			Message: fmt.Sprintf("audit completed with %d failed quer(ies) out of %d",
				outcome.Analysis.ErrorCount, outcome.Analysis.TotalResponses),
		}
	}
	return nil
}

func saveOutcome(outcome *models.AuditOutcome, path string) error {
	data, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling outcome: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
