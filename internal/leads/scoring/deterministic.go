// Package scoring converts normalized lead signals into a bounded score and
// potential tag. The deterministic engine here is the baseline for, and the
// fallback of, the AI-assisted adapter in service.go.
package scoring

import (
	"math"
	"strconv"
	"time"

	"leadflow_backend/internal/leads/domain"
)

const factorMax = 20

// Factors computes the five deterministic sub-scores, each clamped to
// [0,20]. Absent fragments contribute their documented defaults.
func Factors(
	tech *domain.WebsiteTechData,
	social domain.SocialMediaInfo,
	company *domain.CompanyEnrichmentData,
	normalized *domain.NormalizedRecord,
	whatsappEnabled bool,
) domain.ScoringFactors {
	return domain.ScoringFactors{
		WebsiteQuality:      clampFactor(websiteQuality(tech)),
		SocialActivity:      clampFactor(socialActivity(normalized)),
		TechReadiness:       clampFactor(techReadiness(tech, normalized)),
		BusinessMaturity:    clampFactor(businessMaturity(company)),
		AutomationPotential: clampFactor(automationPotential(tech, social, whatsappEnabled)),
	}
}

func websiteQuality(tech *domain.WebsiteTechData) int {
	if tech == nil {
		return 0
	}

	score := 0
	if tech.Platform != "" && tech.Platform != "Unknown" {
		score += 5
	}
	if tech.CMS != "" {
		score += 3
	}
	if tech.Ecommerce != "" {
		score += 5
	}
	if len(tech.Analytics) > 0 {
		score += 3
	}
	if len(tech.Frameworks) > 0 {
		score += 4
	}
	return score
}

func socialActivity(normalized *domain.NormalizedRecord) int {
	if normalized == nil {
		return 0
	}
	return int(math.Round(float64(normalized.SocialPresenceScore) / 100 * factorMax))
}

func techReadiness(tech *domain.WebsiteTechData, normalized *domain.NormalizedRecord) int {
	score := 0
	if tech != nil {
		if len(tech.Technologies) > 5 {
			score += 5
		}
		if tech.Ecommerce != "" {
			score += 5
		}
		if len(tech.Analytics) > 0 {
			score += 5
		}
	}
	if normalized != nil && len(normalized.TechStack) > 0 {
		score += 5
	}
	return score
}

func businessMaturity(company *domain.CompanyEnrichmentData) int {
	if company == nil {
		return 0
	}

	score := 0
	if company.Employees > 0 {
		switch {
		case company.Employees > 100:
			score += 10
		case company.Employees > 50:
			score += 7
		case company.Employees > 10:
			score += 5
		default:
			score += 2
		}
	}
	if company.Founded != "" {
		age := 0
		if year, err := strconv.Atoi(company.Founded); err == nil {
			age = time.Now().Year() - year
		}
		switch {
		case age > 10:
			score += 5
		case age > 5:
			score += 3
		default:
			score += 1
		}
	}
	if company.Funding != "" {
		score += 5
	}
	return score
}

func automationPotential(tech *domain.WebsiteTechData, social domain.SocialMediaInfo, whatsappEnabled bool) int {
	score := 0
	// A missing business messaging account is an adoption opportunity.
	if !whatsappEnabled {
		score += 5
	}
	if tech != nil {
		if tech.Ecommerce != "" {
			score += 5
		}
		if len(tech.Analytics) > 0 {
			score += 3
		}
		// Unknown or custom platforms are greenfield for tooling.
		if tech.Platform == "" || tech.Platform == "Custom" || tech.Platform == "Unknown" {
			score += 2
		}
	}
	if len(social) > 2 {
		score += 5
	}
	return score
}

func clampFactor(value int) int {
	if value < 0 {
		return 0
	}
	if value > factorMax {
		return factorMax
	}
	return value
}

func clampFactors(f domain.ScoringFactors) domain.ScoringFactors {
	return domain.ScoringFactors{
		WebsiteQuality:      clampFactor(f.WebsiteQuality),
		SocialActivity:      clampFactor(f.SocialActivity),
		TechReadiness:       clampFactor(f.TechReadiness),
		BusinessMaturity:    clampFactor(f.BusinessMaturity),
		AutomationPotential: clampFactor(f.AutomationPotential),
	}
}

func clampScore(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
