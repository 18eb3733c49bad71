package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/beaconlabs/beacon/internal/backend"
	"github.com/beaconlabs/beacon/internal/models"
)

// Four-factor composite weights.
const (
	WeightMentionFrequency  = 0.40
	WeightPositionQuality   = 0.25
	WeightNarrativeAccuracy = 0.20
	WeightFounderRetrieval  = 0.15
)

// narrativeFallbackScore is the partial credit given when no judge backend is
// available or the judge reply cannot be decoded.
const narrativeFallbackScore = 50.0

// Analyzer computes the four-factor analysis over a full set of results.
// The judge backend rates narrative accuracy; it may be nil.
type Analyzer struct {
	engine *Engine
	judge  backend.Backend
}

// NewAnalyzer creates an analyzer. A nil judge falls back to partial credit
// for narrative accuracy.
func NewAnalyzer(engine *Engine, judge backend.Backend) *Analyzer {
	return &Analyzer{engine: engine, judge: judge}
}

// Analyze computes the complete four-factor analysis with all breakdowns.
func (a *Analyzer) Analyze(ctx context.Context, profile *models.BrandProfile, results []models.PromptResult) models.AnalysisResult {
	mentionFreq := mentionFrequency(results)
	positionQual := positionQuality(results)
	narrativeAcc := a.narrativeAccuracy(ctx, profile, results)
	founderRet := founderRetrieval(profile, results)

	overall := mentionFreq*WeightMentionFrequency +
		positionQual*WeightPositionQuality +
		narrativeAcc*WeightNarrativeAccuracy +
		founderRet*WeightFounderRetrieval
	overall = math.Min(100, math.Max(0, overall))

	analysis := models.AnalysisResult{
		OverallScore:           round1(overall),
		Severity:               models.SeverityFor(overall),
		MentionFrequency:       round1(mentionFreq),
		PositionQuality:        round1(positionQual),
		NarrativeAccuracy:      round1(narrativeAcc),
		FounderRetrieval:       round1(founderRet),
		DimensionScores:        dimensionBreakdown(results),
		BackendScores:          backendBreakdown(results),
		PersonaMentionRates:    groupedMentionRates(results, func(r models.PromptResult) string { return r.Persona }),
		TopicMentionRates:      groupedMentionRates(results, func(r models.PromptResult) string { return r.Topic }),
		CompetitorMentionRates: competitorMentionRates(profile, results),
		TotalResponses:         len(results),
	}

	promptIDs := map[string]bool{}
	for _, r := range results {
		promptIDs[r.PromptID] = true
		if r.BrandMentioned {
			analysis.MentionsCount++
		}
		if r.Error != "" {
			analysis.ErrorCount++
		}
		analysis.TotalTokens += r.TokensUsed
	}
	analysis.TotalPrompts = len(promptIDs)

	// Rough blended rate across models.
	analysis.EstimatedCostUSD = math.Round(float64(analysis.TotalTokens)/1000*0.003*10000) / 10000

	return analysis
}

// mentionFrequency is the percentage of results mentioning the brand.
func mentionFrequency(results []models.PromptResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var mentioned int
	for _, r := range results {
		if r.BrandMentioned {
			mentioned++
		}
	}
	return float64(mentioned) / float64(len(results)) * 100
}

// positionQuality averages position scores over mentioned results. Unlike
// per-mention scoring, confidence is not applied here; a confident last-place
// mention is still a last-place mention.
func positionQuality(results []models.PromptResult) float64 {
	config := DefaultConfig()

	var scores []float64
	for _, r := range results {
		if !r.BrandMentioned {
			continue
		}

		var posScore float64
		if r.Position != nil {
			pos := *r.Position
			if s, ok := config.PositionScores[pos]; ok {
				posScore = s
			} else if pos > 5 {
				posScore = math.Max(10, 20-float64(pos-5)*2)
			}
		}

		recScore := config.RecommendationScores[r.RecommendationType]
		base := math.Max(posScore, recScore)

		mod, ok := config.SentimentModifiers[r.Sentiment]
		if !ok {
			mod = 1.0
		}

		scores = append(scores, math.Min(100, base*mod))
	}

	if len(scores) == 0 {
		return 0
	}
	return mean(scores)
}

// narrativeAccuracy asks the judge backend to rate a batch of brand-mention
// contexts against the profile's ground truth.
func (a *Analyzer) narrativeAccuracy(ctx context.Context, profile *models.BrandProfile, results []models.PromptResult) float64 {
	var mentioned []models.PromptResult
	for _, r := range results {
		if r.BrandMentioned && r.Context != "" {
			mentioned = append(mentioned, r)
		}
	}
	if len(mentioned) == 0 {
		return 0
	}

	if a.judge == nil {
		return narrativeFallbackScore
	}

	prompt := narrativePrompt(profile, mentioned)

	reply, err := a.judge.Query(ctx, prompt)
	if err != nil {
		slog.Warn("narrative accuracy judging failed", "error", err)
		return narrativeFallbackScore
	}

	ratings, err := decodeRatings(reply.Text)
	if err != nil || len(ratings) == 0 {
		slog.Warn("narrative accuracy reply unusable", "error", err)
		return narrativeFallbackScore
	}

	return mean(ratings) * 100
}

func narrativePrompt(profile *models.BrandProfile, mentioned []models.PromptResult) string {
	products := "N/A"
	if len(profile.Products) > 0 {
		var names []string
		for i, p := range profile.Products {
			if i >= 5 {
				break
			}
			names = append(names, p.Name)
		}
		products = strings.Join(names, ", ")
	}

	diffs := "N/A"
	if len(profile.Differentiators) > 0 {
		n := min(5, len(profile.Differentiators))
		diffs = strings.Join(profile.Differentiators[:n], ", ")
	}

	founder := "Unknown"
	if len(profile.Founders) > 0 {
		f := profile.Founders[0]
		founder = fmt.Sprintf("%s, %s. %s", f.Name, f.Title, f.Background)
	}

	// Batch at most ten contexts per call.
	batch := mentioned
	if len(batch) > 10 {
		batch = batch[:10]
	}
	var contexts strings.Builder
	for i, r := range batch {
		context := r.Context
		if len(context) > 200 {
			context = context[:200]
		}
		fmt.Fprintf(&contexts, "%d. [%s] %s\n", i+1, r.Backend, context)
	}

	return fmt.Sprintf(`Rate the accuracy of these AI response snippets about %s.

## Ground Truth
- Company: %s
- Industry: %s
- Products/Services: %s
- Differentiators: %s
- Founder/Leader: %s
- Description: %s

## AI Response Contexts (mentioning %s)
%s
## Instructions
For each snippet, rate accuracy from 0.0 to 1.0:
- 1.0 = Completely accurate, matches ground truth
- 0.7 = Mostly accurate, minor inaccuracies
- 0.5 = Partially accurate, some wrong info
- 0.3 = Mostly inaccurate
- 0.0 = Completely wrong or hallucinated

Return ONLY valid JSON:
{"ratings": [0.8, 0.6, ...]}`,
		profile.CompanyName, profile.CompanyName, profile.Industry, products, diffs,
		founder, profile.Description, profile.CompanyName, contexts.String())
}

func decodeRatings(text string) ([]float64, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	var doc struct {
		Ratings []float64 `json:"ratings"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &doc); err != nil {
		return nil, err
	}
	return doc.Ratings, nil
}

// founderRetrieval scores how well replies to founder prompts surface the
// company, founder names, titles, and prior companies.
func founderRetrieval(profile *models.BrandProfile, results []models.PromptResult) float64 {
	var founderResults []models.PromptResult
	for _, r := range results {
		if r.Dimension == models.DimensionFounderBrand {
			founderResults = append(founderResults, r)
		}
	}
	if len(founderResults) == 0 {
		return 0
	}

	companyLower := strings.ToLower(profile.CompanyName)

	var scores []float64
	for _, r := range founderResults {
		replyLower := strings.ToLower(r.RawReply)
		var score float64

		if strings.Contains(replyLower, companyLower) {
			score += 30
		}

		for _, f := range profile.Founders {
			if f.Name == "" || !strings.Contains(replyLower, strings.ToLower(f.Name)) {
				continue
			}
			score += 50
			if f.Title != "" && strings.Contains(replyLower, strings.ToLower(f.Title)) {
				score += 10
			}
			for _, prior := range f.PriorCompanies {
				if prior != "" && strings.Contains(replyLower, strings.ToLower(prior)) {
					score += 10
					break
				}
			}
			break
		}

		scores = append(scores, math.Min(100, score))
	}

	return mean(scores)
}

func dimensionBreakdown(results []models.PromptResult) []models.DimensionScore {
	groups := map[models.Dimension][]models.PromptResult{}
	for _, r := range results {
		groups[r.Dimension] = append(groups[r.Dimension], r)
	}

	var scores []models.DimensionScore
	for _, dim := range models.AllDimensions {
		group, ok := groups[dim]
		if !ok {
			continue
		}

		mentioned, avgPos := mentionStats(group)
		scores = append(scores, models.DimensionScore{
			Dimension:   dim,
			Score:       round1(positionQuality(group)),
			MentionRate: ratio(mentioned, len(group)),
			PromptCount: len(group),
			AvgPosition: avgPos,
		})
	}
	return scores
}

func backendBreakdown(results []models.PromptResult) []models.BackendScore {
	groups := map[string][]models.PromptResult{}
	var names []string
	for _, r := range results {
		if _, ok := groups[r.Backend]; !ok {
			names = append(names, r.Backend)
		}
		groups[r.Backend] = append(groups[r.Backend], r)
	}
	sort.Strings(names)

	var scores []models.BackendScore
	for _, name := range names {
		group := groups[name]
		mentioned, avgPos := mentionStats(group)
		scores = append(scores, models.BackendScore{
			Backend:     name,
			Score:       round1(positionQuality(group)),
			MentionRate: ratio(mentioned, len(group)),
			PromptCount: len(group),
			AvgPosition: avgPos,
		})
	}
	return scores
}

func mentionStats(results []models.PromptResult) (mentioned int, avgPosition *float64) {
	var positions []float64
	for _, r := range results {
		if r.BrandMentioned {
			mentioned++
			if r.Position != nil {
				positions = append(positions, float64(*r.Position))
			}
		}
	}
	if len(positions) > 0 {
		avg := mean(positions)
		avgPosition = &avg
	}
	return mentioned, avgPosition
}

func groupedMentionRates(results []models.PromptResult, key func(models.PromptResult) string) map[string]float64 {
	totals := map[string]int{}
	mentions := map[string]int{}
	for _, r := range results {
		k := key(r)
		if k == "" {
			continue
		}
		totals[k]++
		if r.BrandMentioned {
			mentions[k]++
		}
	}

	if len(totals) == 0 {
		return nil
	}

	rates := make(map[string]float64, len(totals))
	for k, total := range totals {
		rates[k] = ratio(mentions[k], total)
	}
	return rates
}

// competitorMentionRates is a raw substring scan: how often each of the first
// five competitors shows up in replies, regardless of parser output.
func competitorMentionRates(profile *models.BrandProfile, results []models.PromptResult) map[string]float64 {
	if len(profile.Competitors) == 0 || len(results) == 0 {
		return nil
	}

	comps := profile.Competitors
	if len(comps) > 5 {
		comps = comps[:5]
	}

	rates := make(map[string]float64, len(comps))
	for _, comp := range comps {
		compLower := strings.ToLower(comp.Name)
		var count int
		for _, r := range results {
			if strings.Contains(strings.ToLower(r.RawReply), compLower) {
				count++
			}
		}
		rates[comp.Name] = ratio(count, len(results))
	}
	return rates
}
