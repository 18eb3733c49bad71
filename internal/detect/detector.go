// Package detect runs the rule-based anti-pattern detectors and the
// priority-scored gap analysis over a completed audit. Everything here is
// deterministic; no LLM calls.
package detect

import (
	"log/slog"

	"github.com/beaconlabs/beacon/internal/models"
)

// Input bundles everything the detectors look at.
type Input struct {
	Profile  *models.BrandProfile
	Analysis *models.AnalysisResult
	Results  []models.PromptResult
}

// Detector inspects an audit for a single named anti-pattern.
type Detector interface {
	Name() models.PatternType
	Detect(input Input) []models.DetectedPattern
}

// Detectors returns all anti-pattern detectors in display order.
func Detectors() []Detector {
	return []Detector{
		&CategoryLeaderDominanceDetector{},
		&PremiumTaxDetector{},
		&MessyMiddleDetector{},
		&FounderInvisibilityDetector{},
		&AwardAmnesiaDetector{},
		&NameFragmentationDetector{},
		&DualCategoryTrapDetector{},
		&SocialProofGapDetector{},
		&PortfolioIsolationDetector{},
		&AffiliateDistortionDetector{},
	}
}

// Run executes every detector and the gap analysis.
func Run(input Input) ([]models.DetectedPattern, []models.GapRecord) {
	var patterns []models.DetectedPattern
	for _, d := range Detectors() {
		patterns = append(patterns, d.Detect(input)...)
	}

	gaps := AnalyzeGaps(input, patterns)

	slog.Info("pattern detection complete",
		"patterns", len(patterns),
		"gaps", len(gaps))

	return patterns, gaps
}
