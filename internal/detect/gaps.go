package detect

import (
	"fmt"
	"sort"

	"github.com/beaconlabs/beacon/internal/models"
)

// AnalyzeGaps turns the scored audit and any detected patterns into a
// priority-ordered list of remediation opportunities. Priority is
// impact * coverage / effort, so cheap high-impact fixes rank first.
func AnalyzeGaps(input Input, patterns []models.DetectedPattern) []models.GapRecord {
	var gaps []models.GapRecord

	for _, ds := range input.Analysis.DimensionScores {
		if ds.MentionRate >= 0.3 {
			continue
		}
		impact := 1.0 - ds.MentionRate
		effort := 0.4
		coverage, ok := models.DimensionWeights[ds.Dimension]
		if !ok {
			coverage = 0.1
		}
		gaps = append(gaps, models.GapRecord{
			Type: models.GapContent,
			Description: fmt.Sprintf("Low visibility in %s dimension (%.0f%% mention rate)",
				ds.Dimension, ds.MentionRate*100),
			Impact:   impact,
			Effort:   effort,
			Coverage: coverage,
			Priority: impact * coverage / effort,
			Recommendation: fmt.Sprintf("Create targeted content for the %s dimension to improve AI visibility.",
				ds.Dimension),
		})
	}

	if input.Analysis.NarrativeAccuracy < 50 {
		gaps = append(gaps, models.GapRecord{
			Type: models.GapNarrative,
			Description: fmt.Sprintf("AI models describe the brand inaccurately (accuracy score: %.0f/100)",
				input.Analysis.NarrativeAccuracy),
			Impact:   0.8,
			Effort:   0.5,
			Coverage: 0.6,
			Priority: 0.8 * 0.6 / 0.5,
			Recommendation: "Publish clear, factual content about products, history, and " +
				"differentiators to correct AI model narratives.",
		})
	}

	brandRate := input.Analysis.MentionFrequency / 100
	for _, comp := range input.Profile.Competitors {
		rate, ok := input.Analysis.CompetitorMentionRates[comp.Name]
		if !ok || rate <= brandRate*2 || rate <= 0.5 {
			continue
		}
		gaps = append(gaps, models.GapRecord{
			Type: models.GapCompetitive,
			Description: fmt.Sprintf("%s has %.0f%% mention rate vs brand's %.0f%%",
				comp.Name, rate*100, input.Analysis.MentionFrequency),
			Impact:   0.7,
			Effort:   0.6,
			Coverage: 0.4,
			Priority: 0.7 * 0.4 / 0.6,
			Recommendation: fmt.Sprintf("Create direct comparison content against %s. Highlight unique differentiators that %s lacks.",
				comp.Name, comp.Name),
		})
	}

	for _, p := range patterns {
		if p.Severity != models.SeverityCritical && p.Severity != models.SeverityHigh {
			continue
		}
		impact := 0.7
		if p.Severity == models.SeverityCritical {
			impact = 0.9
		}
		evidence := p.Evidence
		if len(evidence) > 100 {
			evidence = evidence[:100]
		}
		gaps = append(gaps, models.GapRecord{
			Type:           models.GapStructural,
			Description:    fmt.Sprintf("%s: %s", p.DisplayName, evidence),
			Impact:         impact,
			Effort:         0.7,
			Coverage:       0.5,
			Priority:       impact * 0.5 / 0.7,
			Recommendation: p.Recommendation,
		})
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].Priority > gaps[j].Priority
	})
	return gaps
}
