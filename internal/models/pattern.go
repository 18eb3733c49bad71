package models

// PatternType identifies a named anti-pattern in a brand's visibility
// profile.
type PatternType string

const (
	PatternCategoryLeaderDominance PatternType = "category_leader_dominance"
	PatternPremiumTax              PatternType = "premium_tax"
	PatternMessyMiddle             PatternType = "messy_middle"
	PatternFounderInvisibility     PatternType = "founder_invisibility"
	PatternAwardAmnesia            PatternType = "award_amnesia"
	PatternNameFragmentation       PatternType = "name_fragmentation"
	PatternDualCategoryTrap        PatternType = "dual_category_trap"
	PatternSocialProofGap          PatternType = "social_proof_gap"
	PatternPortfolioIsolation      PatternType = "portfolio_isolation"
	PatternAffiliateDistortion     PatternType = "affiliate_distortion"
)

// PatternDisplayNames maps pattern types to their report display names.
var PatternDisplayNames = map[PatternType]string{
	PatternCategoryLeaderDominance: "Category-Leader Dominance",
	PatternPremiumTax:              "The Premium Tax",
	PatternMessyMiddle:             "The Messy Middle",
	PatternFounderInvisibility:     "Founder Invisibility",
	PatternAwardAmnesia:            "Award Amnesia",
	PatternNameFragmentation:       "Name Fragmentation",
	PatternDualCategoryTrap:        "The Dual-Category Trap",
	PatternSocialProofGap:          "Social Proof Is Not AI Proof",
	PatternPortfolioIsolation:      "Portfolio Isolation",
	PatternAffiliateDistortion:     "Affiliate Distortion",
}

// PatternSeverity ranks how damaging a detected pattern is.
type PatternSeverity string

const (
	SeverityLow      PatternSeverity = "low"
	SeverityMedium   PatternSeverity = "medium"
	SeverityHigh     PatternSeverity = "high"
	SeverityCritical PatternSeverity = "critical"
)

// DetectedPattern is a named anti-pattern surfaced by one detector, with
// supporting evidence and a remediation recommendation.
type DetectedPattern struct {
	Type           PatternType     `json:"type"`
	DisplayName    string          `json:"display_name"`
	Severity       PatternSeverity `json:"severity"`
	Evidence       string          `json:"evidence"`
	Recommendation string          `json:"recommendation"`
}

// GapType classifies a visibility gap.
type GapType string

const (
	GapContent     GapType = "content"
	GapNarrative   GapType = "narrative"
	GapCompetitive GapType = "competitive"
	GapStructural  GapType = "structural"
)

// GapRecord is a prioritized improvement opportunity. Priority is
// impact × coverage / effort; the gap list is always sorted descending by
// priority before being returned.
type GapRecord struct {
	Type           GapType `json:"type"`
	Description    string  `json:"description"`
	Impact         float64 `json:"impact"`
	Effort         float64 `json:"effort"`
	Coverage       float64 `json:"coverage"`
	Priority       float64 `json:"priority"`
	Recommendation string  `json:"recommendation"`
}
