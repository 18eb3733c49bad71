package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/beaconlabs/beacon/internal/models"
	"github.com/beaconlabs/beacon/internal/runner"
)

// numPrinter renders large counts with thousands separators.
var numPrinter = message.NewPrinter(language.English)

// formatDuration formats a duration in a consistent, human-readable way.
// This ensures stable output regardless of Go version changes.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(100 * time.Millisecond).String()
}

// padRight pads s with spaces to the given display width, accounting for
// wide runes.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

// truncate shortens s to maxLen characters, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func verboseProgressListener(event runner.ProgressEvent) {
	switch event.EventType {
	case runner.EventRunStart:
		fmt.Printf("Running %d prompt/backend pair(s)...\n\n", event.Total)
	case runner.EventPromptStart:
		fmt.Printf("[%d/%d] %s → %s\n", event.Current, event.Total,
			truncate(event.PromptText, 80), event.Backend)
	case runner.EventPromptResult:
		switch {
		case event.Failed:
			fmt.Printf("  ✗ %s failed\n", event.Backend)
		case event.Mentioned && event.Position != nil:
			fmt.Printf("  ✓ mentioned at #%d (%s)\n", *event.Position, event.Backend)
		case event.Mentioned:
			fmt.Printf("  ✓ mentioned (%s)\n", event.Backend)
		default:
			fmt.Printf("  – not mentioned (%s)\n", event.Backend)
		}
	case runner.EventRunComplete:
		fmt.Printf("\nCompleted %d/%d pair(s)\n\n", event.Current, event.Total)
	}
}

func simpleProgressListener(event runner.ProgressEvent) {
	switch event.EventType {
	case runner.EventPromptResult:
		icon := "–"
		if event.Failed {
			icon = "✗"
		} else if event.Mentioned {
			icon = "✓"
		}
		fmt.Printf("%s [%d/%d] %s\n", icon, event.Current, event.Total, event.Backend)
	}
}

func printSummary(outcome *models.AuditOutcome, verbose bool) {
	a := outcome.Analysis

	fmt.Println("=" + strings.Repeat("=", 50))
	fmt.Printf(" VISIBILITY AUDIT: %s\n", outcome.CompanyName)
	fmt.Println("=" + strings.Repeat("=", 50))
	fmt.Println()

	fmt.Printf("Overall Score:      %.1f/100 [%s]\n", a.OverallScore, a.Severity)
	fmt.Printf("Mention Frequency:  %.1f\n", a.MentionFrequency)
	fmt.Printf("Position Quality:   %.1f\n", a.PositionQuality)
	fmt.Printf("Narrative Accuracy: %.1f\n", a.NarrativeAccuracy)
	fmt.Printf("Founder Retrieval:  %.1f\n", a.FounderRetrieval)
	if outcome.Aggregate.Interval != nil {
		fmt.Printf("95%% Interval:       %.1f - %.1f\n",
			outcome.Aggregate.Interval.Lower, outcome.Aggregate.Interval.Upper)
	}
	fmt.Println()

	fmt.Printf("Prompts:   %d (%d responses, %d mention(s), %d error(s))\n",
		a.TotalPrompts, a.TotalResponses, a.MentionsCount, a.ErrorCount)
	if a.TotalTokens > 0 {
		numPrinter.Printf("Tokens:    %d (est. $%.4f)\n", a.TotalTokens, a.EstimatedCostUSD)
	}
	duration := time.Duration(outcome.DurationMs) * time.Millisecond
	fmt.Printf("Duration:  %s\n", formatDuration(duration))
	fmt.Println()

	printDimensionTable(a.DimensionScores)
	printBackendTable(a.BackendScores)

	if len(outcome.Patterns) > 0 {
		fmt.Println("-" + strings.Repeat("-", 50))
		fmt.Println(" DETECTED PATTERNS")
		fmt.Println("-" + strings.Repeat("-", 50))
		for _, p := range outcome.Patterns {
			fmt.Printf("  [%s] %s\n", strings.ToUpper(string(p.Severity)), p.DisplayName)
			fmt.Printf("      %s\n", p.Evidence)
			if verbose {
				fmt.Printf("      → %s\n", p.Recommendation)
			}
		}
		fmt.Println()
	}

	if len(outcome.Gaps) > 0 {
		fmt.Println("-" + strings.Repeat("-", 50))
		fmt.Println(" TOP GAPS")
		fmt.Println("-" + strings.Repeat("-", 50))
		shown := outcome.Gaps
		if !verbose && len(shown) > 5 {
			shown = shown[:5]
		}
		for i, g := range shown {
			fmt.Printf("  %d. [%s] %s (priority %.2f)\n", i+1, g.Type, g.Description, g.Priority)
			if verbose && g.Recommendation != "" {
				fmt.Printf("     → %s\n", g.Recommendation)
			}
		}
		fmt.Println()
	}
}

func printDimensionTable(scores []models.DimensionScore) {
	if len(scores) == 0 {
		return
	}

	nameWidth := len("Dimension")
	for _, ds := range scores {
		if w := runewidth.StringWidth(string(ds.Dimension)); w > nameWidth {
			nameWidth = w
		}
	}

	fmt.Println("-" + strings.Repeat("-", 50))
	fmt.Println(" BY DIMENSION")
	fmt.Println("-" + strings.Repeat("-", 50))
	fmt.Printf("  %s  %s  %s  %s\n",
		padRight("Dimension", nameWidth),
		padRight("Score", 7),
		padRight("Mentions", 9),
		"Prompts")
	for _, ds := range scores {
		fmt.Printf("  %s  %s  %s  %d\n",
			padRight(string(ds.Dimension), nameWidth),
			padRight(fmt.Sprintf("%.1f", ds.Score), 7),
			padRight(fmt.Sprintf("%.0f%%", ds.MentionRate*100), 9),
			ds.PromptCount)
	}
	fmt.Println()
}

func printBackendTable(scores []models.BackendScore) {
	if len(scores) < 2 {
		return
	}

	nameWidth := len("Backend")
	for _, bs := range scores {
		if w := runewidth.StringWidth(bs.Backend); w > nameWidth {
			nameWidth = w
		}
	}

	fmt.Println("-" + strings.Repeat("-", 50))
	fmt.Println(" BY BACKEND")
	fmt.Println("-" + strings.Repeat("-", 50))
	fmt.Printf("  %s  %s  %s  %s\n",
		padRight("Backend", nameWidth),
		padRight("Score", 7),
		padRight("Mentions", 9),
		"Avg Pos")
	for _, bs := range scores {
		avgPos := "-"
		if bs.AvgPosition != nil {
			avgPos = fmt.Sprintf("%.1f", *bs.AvgPosition)
		}
		fmt.Printf("  %s  %s  %s  %s\n",
			padRight(bs.Backend, nameWidth),
			padRight(fmt.Sprintf("%.1f", bs.Score), 7),
			padRight(fmt.Sprintf("%.0f%%", bs.MentionRate*100), 9),
			avgPos)
	}
	fmt.Println()
}
