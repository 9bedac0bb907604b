package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/ports"
	"leadflow_backend/platform/logger"
)

// Input carries everything the scorer needs for one lead.
type Input struct {
	CompanyName     string
	Tech            *domain.WebsiteTechData
	Social          domain.SocialMediaInfo
	Company         *domain.CompanyEnrichmentData
	Normalized      *domain.NormalizedRecord
	WhatsAppEnabled bool
}

// Service scores and enriches leads. When a text generation provider is
// configured it augments the deterministic baseline with model output;
// without one, or on any provider failure, it returns the fully
// deterministic result set with identical shape.
type Service struct {
	gen ports.TextGenerationProvider
	log *logger.Logger
}

// NewService creates a scoring service. gen may be nil to run
// deterministic-only.
func NewService(gen ports.TextGenerationProvider, log *logger.Logger) *Service {
	return &Service{gen: gen, log: log}
}

// ScoreAndEnrich computes the lead score and advisory insights.
// It never returns an error: the deterministic path is total.
func (s *Service) ScoreAndEnrich(ctx context.Context, in Input) (domain.LeadScoringResult, domain.EnrichedInsights) {
	baseline := Factors(in.Tech, in.Social, in.Company, in.Normalized, in.WhatsAppEnabled)

	if s.gen == nil {
		return s.deterministicResult(in, baseline)
	}

	raw, err := s.gen.Complete(ctx, buildPrompt(in, baseline))
	if err != nil {
		s.log.ProviderError("ai_scoring", err)
		return s.deterministicResult(in, baseline)
	}

	var resp aiResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		s.log.ProviderError("ai_scoring", fmt.Errorf("unusable model output: %w", err))
		return s.deterministicResult(in, baseline)
	}

	return mergeResponse(resp, baseline)
}

// deterministicResult builds the full fallback result from the baseline
// factors and the template narrative.
func (s *Service) deterministicResult(in Input, factors domain.ScoringFactors) (domain.LeadScoringResult, domain.EnrichedInsights) {
	score := factors.Total()
	tag := domain.TagForScore(score)
	approach := approachForTag(tag, in.WhatsAppEnabled)

	scoring := domain.LeadScoringResult{
		Score:               score,
		PotentialTag:        tag,
		ScoringFactors:      factors,
		Notes:               notesForScore(score, factors),
		RecommendedApproach: approach,
	}

	insights := domain.EnrichedInsights{
		SuggestedSalesApproach:  approach,
		LikelyPainPoints:        painPoints(in.Tech, in.WhatsAppEnabled),
		MarketingReadiness:      marketingReadiness(factors),
		AutomationOpportunities: automationOpportunities(in.Tech, in.Social, in.WhatsAppEnabled),
		NextSteps:               nextSteps(tag),
	}

	return scoring, insights
}

// aiResponse is the structured shape requested from the model. Pointer
// fields distinguish "absent" from zero so the merge can fall back
// field-by-field.
type aiResponse struct {
	Score                   *int                   `json:"score"`
	PotentialTag            string                 `json:"potential_tag"`
	ScoringFactors          *domain.ScoringFactors `json:"scoring_factors"`
	Notes                   string                 `json:"notes"`
	RecommendedApproach     string                 `json:"recommended_approach"`
	SuggestedSalesApproach  string                 `json:"suggested_sales_approach"`
	LikelyPainPoints        []string               `json:"likely_pain_points"`
	MarketingReadiness      string                 `json:"marketing_readiness"`
	CompetitorActivity      string                 `json:"competitor_activity"`
	IndustryTrends          []string               `json:"industry_trends"`
	AutomationOpportunities []string               `json:"automation_opportunities"`
	NextSteps               []string               `json:"next_steps"`
}

// mergeResponse overlays model output on the deterministic baseline.
// Bounds are re-clamped and the tag is re-derived from the final score so
// the scoring invariants hold regardless of what the model returned.
func mergeResponse(resp aiResponse, baseline domain.ScoringFactors) (domain.LeadScoringResult, domain.EnrichedInsights) {
	factors := baseline
	if resp.ScoringFactors != nil {
		factors = clampFactors(*resp.ScoringFactors)
	}

	score := factors.Total()
	if resp.Score != nil {
		score = clampScore(*resp.Score)
	}

	tag := domain.TagForScore(score)

	scoring := domain.LeadScoringResult{
		Score:               score,
		PotentialTag:        tag,
		ScoringFactors:      factors,
		Notes:               resp.Notes,
		RecommendedApproach: resp.RecommendedApproach,
	}

	insights := domain.EnrichedInsights{
		SuggestedSalesApproach:  resp.SuggestedSalesApproach,
		LikelyPainPoints:        orEmpty(resp.LikelyPainPoints),
		MarketingReadiness:      resp.MarketingReadiness,
		CompetitorActivity:      resp.CompetitorActivity,
		IndustryTrends:          orEmpty(resp.IndustryTrends),
		AutomationOpportunities: orEmpty(resp.AutomationOpportunities),
		NextSteps:               orEmpty(resp.NextSteps),
	}

	return scoring, insights
}

func orEmpty(values []string) []string {
	if values == nil {
		return make([]string, 0)
	}
	return values
}

// buildPrompt embeds the company data and baseline factors into the scoring
// prompt and spells out the JSON shape expected back.
func buildPrompt(in Input, baseline domain.ScoringFactors) string {
	var b strings.Builder

	b.WriteString("You are a B2B lead scoring expert specializing in evaluating companies for marketing automation, ")
	b.WriteString("WhatsApp Business API, and digital transformation opportunities. ")
	b.WriteString("Analyze the provided data and return a JSON response with lead scoring and insights.\n\n")

	fmt.Fprintf(&b, "Company: %s\n", in.CompanyName)
	fmt.Fprintf(&b, "Industry: %s\n", firstNonEmpty(companyCategory(in.Company), normalizedIndustry(in.Normalized), "Unknown"))
	fmt.Fprintf(&b, "Size: %s (%s employees)\n", firstNonEmpty(companySize(in.Company), "Unknown"), companyEmployees(in.Company))
	fmt.Fprintf(&b, "Location: %s\n\n", firstNonEmpty(companyAddress(in.Company), normalizedCity(in.Normalized), "Unknown"))

	b.WriteString("Website Technology:\n")
	fmt.Fprintf(&b, "- Platform: %s\n", firstNonEmpty(techPlatform(in.Tech), "Unknown"))
	fmt.Fprintf(&b, "- Tech Stack: %s\n", firstNonEmpty(normalizedStack(in.Normalized), "Unknown"))
	fmt.Fprintf(&b, "- E-commerce: %s\n", firstNonEmpty(techEcommerce(in.Tech), "No"))
	fmt.Fprintf(&b, "- Analytics: %s\n\n", firstNonEmpty(techAnalytics(in.Tech), "None"))

	b.WriteString("Social Media Presence:\n")
	fmt.Fprintf(&b, "- Platforms: %s\n", firstNonEmpty(socialPlatforms(in.Social), "None"))
	fmt.Fprintf(&b, "- Social Score: %d/100\n\n", normalizedSocialScore(in.Normalized))

	whatsapp := "No"
	if in.WhatsAppEnabled {
		whatsapp = "Yes"
	}
	fmt.Fprintf(&b, "WhatsApp Business: %s\n\n", whatsapp)

	b.WriteString("Base Scoring Factors (0-20 each):\n")
	fmt.Fprintf(&b, "- Website Quality: %d\n", baseline.WebsiteQuality)
	fmt.Fprintf(&b, "- Social Activity: %d\n", baseline.SocialActivity)
	fmt.Fprintf(&b, "- Tech Readiness: %d\n", baseline.TechReadiness)
	fmt.Fprintf(&b, "- Business Maturity: %d\n", baseline.BusinessMaturity)
	fmt.Fprintf(&b, "- Automation Potential: %d\n\n", baseline.AutomationPotential)

	b.WriteString(`Provide a comprehensive analysis in JSON format with the following structure:
{
  "score": <total score 0-100>,
  "potential_tag": "<HIGH|MEDIUM|LOW>",
  "scoring_factors": {"website_quality": <0-20>, "social_activity": <0-20>, "tech_readiness": <0-20>, "business_maturity": <0-20>, "automation_potential": <0-20>},
  "notes": "<2-3 sentence summary of why this score was given>",
  "recommended_approach": "<specific sales approach recommendation>",
  "suggested_sales_approach": "<detailed sales strategy>",
  "likely_pain_points": ["<pain point 1>", "<pain point 2>"],
  "marketing_readiness": "<assessment of their marketing maturity>",
  "competitor_activity": "<insights about competition if applicable>",
  "industry_trends": ["<trend 1>", "<trend 2>"],
  "automation_opportunities": ["<opportunity 1>", "<opportunity 2>"],
  "next_steps": ["<action 1>", "<action 2>"]
}
`)

	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func companyCategory(c *domain.CompanyEnrichmentData) string {
	if c == nil {
		return ""
	}
	return c.Category
}

func companySize(c *domain.CompanyEnrichmentData) string {
	if c == nil {
		return ""
	}
	return c.Size
}

func companyEmployees(c *domain.CompanyEnrichmentData) string {
	if c == nil || c.Employees == 0 {
		return "Unknown"
	}
	return fmt.Sprintf("%d", c.Employees)
}

func companyAddress(c *domain.CompanyEnrichmentData) string {
	if c == nil {
		return ""
	}
	return c.Address
}

func normalizedIndustry(n *domain.NormalizedRecord) string {
	if n == nil {
		return ""
	}
	return n.IndustryCategory
}

func normalizedCity(n *domain.NormalizedRecord) string {
	if n == nil {
		return ""
	}
	return n.Location.City
}

func normalizedStack(n *domain.NormalizedRecord) string {
	if n == nil {
		return ""
	}
	return strings.Join(n.TechStack, ", ")
}

func normalizedSocialScore(n *domain.NormalizedRecord) int {
	if n == nil {
		return 0
	}
	return n.SocialPresenceScore
}

func techPlatform(t *domain.WebsiteTechData) string {
	if t == nil {
		return ""
	}
	return t.Platform
}

func techEcommerce(t *domain.WebsiteTechData) string {
	if t == nil {
		return ""
	}
	return t.Ecommerce
}

func techAnalytics(t *domain.WebsiteTechData) string {
	if t == nil {
		return ""
	}
	return strings.Join(t.Analytics, ", ")
}

func socialPlatforms(info domain.SocialMediaInfo) string {
	if len(info) == 0 {
		return ""
	}
	platforms := make([]string, 0, len(info))
	for platform := range info {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)
	return strings.Join(platforms, ", ")
}
