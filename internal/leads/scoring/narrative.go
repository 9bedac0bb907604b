package scoring

import "leadflow_backend/internal/leads/domain"

// Deterministic narrative generation. Everything in this file is a pure
// function of the score tier and factor values so the fallback path stays
// reproducible.

func notesForScore(score int, factors domain.ScoringFactors) string {
	switch {
	case score >= 70:
		strength := "digital presence"
		if factors.BusinessMaturity > 15 {
			strength = "business maturity"
		}
		return "Strong lead with high potential. Excellent " + strength + " and clear automation opportunities."
	case score >= 40:
		promise := "business development"
		if factors.TechReadiness > 10 {
			promise = "technology adoption"
		}
		return "Moderate potential. Shows promise in " + promise + ". May benefit from targeted outreach."
	default:
		return "Lower priority lead. Limited digital presence or early-stage business. May require more nurturing."
	}
}

func approachForTag(tag domain.PotentialTag, whatsappEnabled bool) string {
	switch tag {
	case domain.PotentialHigh:
		emphasis := "Offer advanced automation features."
		if !whatsappEnabled {
			emphasis = "Emphasize WhatsApp Business API benefits."
		}
		return "Direct outreach recommended. Focus on ROI and efficiency gains. " + emphasis
	case domain.PotentialMedium:
		return "Educational approach. Share case studies and demonstrate value. Build relationship before hard sell."
	default:
		return "Long-term nurturing strategy. Provide valuable content and wait for growth signals."
	}
}

func painPoints(tech *domain.WebsiteTechData, whatsappEnabled bool) []string {
	points := make([]string, 0, 3)

	if !whatsappEnabled {
		points = append(points, "Missing modern customer communication channels")
	}
	if tech == nil || len(tech.Analytics) == 0 {
		points = append(points, "Limited data-driven decision making")
	}
	if tech == nil || tech.Ecommerce == "" {
		points = append(points, "Potential for online sales channel expansion")
	}

	if len(points) == 0 {
		points = append(points, "General business growth and efficiency")
	}
	return points
}

func marketingReadiness(factors domain.ScoringFactors) string {
	total := factors.SocialActivity + factors.TechReadiness
	switch {
	case total >= 30:
		return "High - Active digital presence and tech-savvy"
	case total >= 15:
		return "Medium - Some digital adoption, room for improvement"
	default:
		return "Low - Early stages of digital marketing adoption"
	}
}

func automationOpportunities(tech *domain.WebsiteTechData, social domain.SocialMediaInfo, whatsappEnabled bool) []string {
	opportunities := make([]string, 0, 4)

	if !whatsappEnabled {
		opportunities = append(opportunities, "WhatsApp Business API for customer communication")
	}
	if tech != nil && tech.Ecommerce != "" {
		opportunities = append(opportunities, "E-commerce automation and cart recovery")
	}
	if len(social) > 0 {
		opportunities = append(opportunities, "Social media management and engagement automation")
	}
	if tech == nil || len(tech.Analytics) == 0 {
		opportunities = append(opportunities, "Marketing analytics and tracking implementation")
	}

	return opportunities
}

func nextSteps(tag domain.PotentialTag) []string {
	switch tag {
	case domain.PotentialHigh:
		return []string{
			"Schedule discovery call within 48 hours",
			"Prepare customized solution proposal",
			"Share relevant case studies",
			"Offer free consultation or demo",
		}
	case domain.PotentialMedium:
		return []string{
			"Add to nurture campaign",
			"Send educational content",
			"Monitor for buying signals",
			"Schedule follow-up in 2 weeks",
		}
	default:
		return []string{
			"Add to long-term nurture list",
			"Send monthly newsletter",
			"Track for company growth indicators",
			"Re-evaluate in 3 months",
		}
	}
}
