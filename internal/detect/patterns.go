package detect

import (
	"fmt"
	"strings"

	"github.com/beaconlabs/beacon/internal/models"
)

func pattern(pt models.PatternType, severity models.PatternSeverity, evidence, recommendation string) []models.DetectedPattern {
	return []models.DetectedPattern{{
		Type:           pt,
		DisplayName:    models.PatternDisplayNames[pt],
		Severity:       severity,
		Evidence:       evidence,
		Recommendation: recommendation,
	}}
}

// CategoryLeaderDominanceDetector fires when any competitor appears in more
// than 70% of replies, making it the category's default answer.
type CategoryLeaderDominanceDetector struct{}

var _ Detector = (*CategoryLeaderDominanceDetector)(nil)

func (*CategoryLeaderDominanceDetector) Name() models.PatternType {
	return models.PatternCategoryLeaderDominance
}

func (*CategoryLeaderDominanceDetector) Detect(input Input) []models.DetectedPattern {
	// Walk competitors in profile order so the first dominant one wins.
	for _, comp := range input.Profile.Competitors {
		rate, ok := input.Analysis.CompetitorMentionRates[comp.Name]
		if ok && rate > 0.70 {
			return pattern(models.PatternCategoryLeaderDominance, models.SeverityCritical,
				fmt.Sprintf("%s appears in %.0f%% of AI responses, dominating the category. %s must compete against this default recommendation.",
					comp.Name, rate*100, input.Profile.CompanyName),
				fmt.Sprintf("CREATE content that directly differentiates from %s. PUBLISH comparison content and unique positioning narratives to break the default association.",
					comp.Name))
		}
	}
	return nil
}

// PremiumTaxDetector fires when the brand is mostly mentioned with cautionary
// or mixed sentiment tied to price language.
type PremiumTaxDetector struct{}

var _ Detector = (*PremiumTaxDetector)(nil)

func (*PremiumTaxDetector) Name() models.PatternType { return models.PatternPremiumTax }

var priceKeywords = []string{"price", "cost", "expensive", "premium", "pricey", "afford"}

func (*PremiumTaxDetector) Detect(input Input) []models.DetectedPattern {
	var mentioned []models.PromptResult
	for _, r := range input.Results {
		if r.BrandMentioned {
			mentioned = append(mentioned, r)
		}
	}
	if len(mentioned) < 3 {
		return nil
	}

	var cautionary int
	for _, r := range mentioned {
		if r.Sentiment == models.SentimentCautionary || r.Sentiment == models.SentimentMixed {
			cautionary++
		}
	}
	if float64(cautionary)/float64(len(mentioned)) <= 0.5 {
		return nil
	}

	var priceMentions int
	for _, r := range mentioned {
		contextLower := strings.ToLower(r.Context)
		for _, kw := range priceKeywords {
			if strings.Contains(contextLower, kw) {
				priceMentions++
				break
			}
		}
	}
	if priceMentions < 2 {
		return nil
	}

	return pattern(models.PatternPremiumTax, models.SeverityHigh,
		fmt.Sprintf("%d of %d mentions include cautionary sentiment, often related to pricing. AI models perceive the brand as expensive relative to alternatives.",
			cautionary, len(mentioned)),
		"PUBLISH value-focused content emphasizing ROI and total cost of ownership. CREATE comparison guides that reframe the price conversation.")
}

// MessyMiddleDetector fires when the brand averages position 4-7 and never
// cracks the top two.
type MessyMiddleDetector struct{}

var _ Detector = (*MessyMiddleDetector)(nil)

func (*MessyMiddleDetector) Name() models.PatternType { return models.PatternMessyMiddle }

func (*MessyMiddleDetector) Detect(input Input) []models.DetectedPattern {
	var positions []int
	for _, r := range input.Results {
		if r.BrandMentioned && r.Position != nil {
			positions = append(positions, *r.Position)
		}
	}
	if len(positions) < 3 {
		return nil
	}

	sum, minPos := 0, positions[0]
	for _, p := range positions {
		sum += p
		if p < minPos {
			minPos = p
		}
	}
	avg := float64(sum) / float64(len(positions))

	if avg < 4 || avg > 7 || minPos <= 2 {
		return nil
	}

	return pattern(models.PatternMessyMiddle, models.SeverityHigh,
		fmt.Sprintf("Average position is %.1f with best position at #%d. The brand is recognized but never recommended first, stuck in the 'messy middle' of AI recommendations.",
			avg, minPos),
		"STRENGTHEN top-of-mind positioning through authoritative content. TARGET specific dimensions where position improvement is most feasible.")
}

// FounderInvisibilityDetector fires when the founder retrieval factor is
// below 20.
type FounderInvisibilityDetector struct{}

var _ Detector = (*FounderInvisibilityDetector)(nil)

func (*FounderInvisibilityDetector) Name() models.PatternType {
	return models.PatternFounderInvisibility
}

func (*FounderInvisibilityDetector) Detect(input Input) []models.DetectedPattern {
	if input.Analysis.FounderRetrieval >= 20 {
		return nil
	}
	return pattern(models.PatternFounderInvisibility, models.SeverityHigh,
		fmt.Sprintf("Founder retrieval score is %.0f/100. AI models cannot identify the company's leadership, missing a key trust signal.",
			input.Analysis.FounderRetrieval),
		"PUBLISH founder profiles, interviews, and thought leadership content. ENSURE founder information is prominent on the website and in press.")
}

// AwardAmnesiaDetector fires when the profile lists awards but no reply that
// mentions the brand ever cites one.
type AwardAmnesiaDetector struct{}

var _ Detector = (*AwardAmnesiaDetector)(nil)

func (*AwardAmnesiaDetector) Name() models.PatternType { return models.PatternAwardAmnesia }

func (*AwardAmnesiaDetector) Detect(input Input) []models.DetectedPattern {
	if len(input.Profile.Awards) == 0 {
		return nil
	}

	awards := input.Profile.Awards
	if len(awards) > 5 {
		awards = awards[:5]
	}
	keywords := make([]string, 0, len(awards))
	for _, a := range awards {
		kw := strings.ToLower(a)
		if len(kw) > 20 {
			kw = kw[:20]
		}
		keywords = append(keywords, kw)
	}

	for _, r := range input.Results {
		if !r.BrandMentioned {
			continue
		}
		replyLower := strings.ToLower(r.RawReply)
		for _, kw := range keywords {
			if strings.Contains(replyLower, kw) {
				return nil
			}
		}
	}

	return pattern(models.PatternAwardAmnesia, models.SeverityMedium,
		fmt.Sprintf("The brand has %d awards/certifications, but none appear in AI responses. AI models are unaware of these credibility signals.",
			len(input.Profile.Awards)),
		"INTEGRATE award mentions into website copy, press releases, and structured data. PUBLISH content that references specific awards.")
}

// NameFragmentationDetector fires when a brand alias shows up without the
// primary name in two or more replies.
type NameFragmentationDetector struct{}

var _ Detector = (*NameFragmentationDetector)(nil)

func (*NameFragmentationDetector) Name() models.PatternType {
	return models.PatternNameFragmentation
}

func (*NameFragmentationDetector) Detect(input Input) []models.DetectedPattern {
	if len(input.Profile.Aliases) == 0 {
		return nil
	}

	companyLower := strings.ToLower(input.Profile.CompanyName)
	var aliasMentions int
	for _, r := range input.Results {
		if r.RawReply == "" {
			continue
		}
		replyLower := strings.ToLower(r.RawReply)
		if strings.Contains(replyLower, companyLower) {
			continue
		}
		for _, alias := range input.Profile.Aliases {
			if strings.Contains(replyLower, strings.ToLower(alias)) {
				aliasMentions++
				break
			}
		}
	}
	if aliasMentions < 2 {
		return nil
	}

	aliases := input.Profile.Aliases
	if len(aliases) > 3 {
		aliases = aliases[:3]
	}

	return pattern(models.PatternNameFragmentation, models.SeverityMedium,
		fmt.Sprintf("Brand aliases (%s) appear as separate entities in %d responses. AI models don't recognize these as the same company.",
			strings.Join(aliases, ", "), aliasMentions),
		"CONSOLIDATE brand naming across all digital presence. ENSURE consistent use of the primary brand name in all content.")
}

// DualCategoryTrapDetector fires when a multi-category brand is only
// recognized in its primary category.
type DualCategoryTrapDetector struct{}

var _ Detector = (*DualCategoryTrapDetector)(nil)

func (*DualCategoryTrapDetector) Name() models.PatternType {
	return models.PatternDualCategoryTrap
}

func (*DualCategoryTrapDetector) Detect(input Input) []models.DetectedPattern {
	if len(input.Profile.AdjacentCategories) < 2 {
		return nil
	}

	adjScore := input.Analysis.Dimension(models.DimensionAdjacentCategory)
	if adjScore == nil || adjScore.MentionRate >= 0.15 {
		return nil
	}

	categories := input.Profile.AdjacentCategories
	if len(categories) > 3 {
		categories = categories[:3]
	}

	return pattern(models.PatternDualCategoryTrap, models.SeverityMedium,
		fmt.Sprintf("The brand operates in multiple categories (%s) but is only recognized in the primary category. Adjacent category mention rate is %.0f%%.",
			strings.Join(categories, ", "), adjScore.MentionRate*100),
		"CREATE cross-category content that bridges the primary category with adjacent ones. PUBLISH thought leadership spanning categories.")
}

// SocialProofGapDetector fires when strong offline signals (awards, press,
// differentiators) fail to translate into AI visibility.
type SocialProofGapDetector struct{}

var _ Detector = (*SocialProofGapDetector)(nil)

func (*SocialProofGapDetector) Name() models.PatternType { return models.PatternSocialProofGap }

func (*SocialProofGapDetector) Detect(input Input) []models.DetectedPattern {
	hasStrongSignals := len(input.Profile.Awards) >= 2 ||
		len(input.Profile.PressMentions) >= 2 ||
		len(input.Profile.Differentiators) >= 3
	if !hasStrongSignals || input.Analysis.MentionFrequency >= 30 {
		return nil
	}

	return pattern(models.PatternSocialProofGap, models.SeverityHigh,
		fmt.Sprintf("Despite strong offline signals (awards, press, differentiators), the brand is only mentioned in %.0f%% of AI responses. Traditional credibility isn't translating to AI visibility.",
			input.Analysis.MentionFrequency),
		"BRIDGE the gap between offline reputation and AI training data. PUBLISH digital content that mirrors your offline strengths. ENSURE structured data and authoritative citations online.")
}

// PortfolioIsolationDetector fires when sibling brands never co-occur with
// the primary brand in replies.
type PortfolioIsolationDetector struct{}

var _ Detector = (*PortfolioIsolationDetector)(nil)

func (*PortfolioIsolationDetector) Name() models.PatternType {
	return models.PatternPortfolioIsolation
}

func (*PortfolioIsolationDetector) Detect(input Input) []models.DetectedPattern {
	if len(input.Profile.SiblingBrands) == 0 {
		return nil
	}

	for _, r := range input.Results {
		if !r.BrandMentioned {
			continue
		}
		replyLower := strings.ToLower(r.RawReply)
		for _, sibling := range input.Profile.SiblingBrands {
			if strings.Contains(replyLower, strings.ToLower(sibling)) {
				return nil
			}
		}
	}

	siblings := input.Profile.SiblingBrands
	if len(siblings) > 3 {
		siblings = siblings[:3]
	}

	return pattern(models.PatternPortfolioIsolation, models.SeverityLow,
		fmt.Sprintf("Sibling brands (%s) are never mentioned alongside the primary brand. AI models treat them as completely separate entities.",
			strings.Join(siblings, ", ")),
		"CREATE content that connects portfolio brands. PUBLISH company pages that highlight the brand family and shared expertise.")
}

// AffiliateDistortionDetector fires when the brand barely surfaces in
// category prompts while multiple competitors have very high rates.
type AffiliateDistortionDetector struct{}

var _ Detector = (*AffiliateDistortionDetector)(nil)

func (*AffiliateDistortionDetector) Name() models.PatternType {
	return models.PatternAffiliateDistortion
}

func (*AffiliateDistortionDetector) Detect(input Input) []models.DetectedPattern {
	catDim := input.Analysis.Dimension(models.DimensionCategoryDefault)
	if catDim == nil || catDim.MentionRate > 0.3 {
		return nil
	}

	var highCompCount int
	for _, rate := range input.Analysis.CompetitorMentionRates {
		if rate > 0.6 {
			highCompCount++
		}
	}
	if highCompCount < 2 || catDim.MentionRate >= 0.15 {
		return nil
	}

	return pattern(models.PatternAffiliateDistortion, models.SeverityMedium,
		fmt.Sprintf("Multiple competitors have >60%% mention rates while the brand has only %.0f%% in category prompts. This may indicate affiliate/SEO content driving AI training bias.",
			catDim.MentionRate*100),
		"PUBLISH authoritative, non-commercial content to compete with affiliate-driven narratives. CREATE expert-level comparison content that positions the brand fairly.")
}
