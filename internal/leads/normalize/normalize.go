// Package normalize reconciles raw enrichment fragments into the canonical
// lead record. Every transform is stateless, idempotent and total: malformed
// input degrades to an empty value, it never produces an error.
package normalize

import (
	"net/url"
	"regexp"
	"strings"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/phone"
)

// Legal-entity suffixes stripped from company names, matched case-insensitively
// and anchored at the end of the string, with optional preceding comma.
var suffixPatterns = compileSuffixPatterns([]string{
	"Inc.", "Inc", "LLC", "Ltd.", "Ltd", "Corporation", "Corp.", "Corp",
	"Company", "Co.", "Co", "LP", "LLP", "PLC",
})

func compileSuffixPatterns(suffixes []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(suffixes))
	for _, s := range suffixes {
		patterns = append(patterns, regexp.MustCompile(`(?i)\s*,?\s*`+regexp.QuoteMeta(s)+`\s*$`))
	}
	return patterns
}

// CompanyName strips legal-entity suffixes and title-cases each token.
func CompanyName(name string) string {
	normalized := strings.TrimSpace(name)

	for _, pattern := range suffixPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}

	words := strings.Fields(normalized)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// URL ensures a scheme, then drops any trailing slash from the path.
// On parse failure the original string is returned unchanged.
func URL(raw string) string {
	if raw == "" {
		return ""
	}

	candidate := raw
	if !strings.HasPrefix(candidate, "http://") && !strings.HasPrefix(candidate, "https://") {
		candidate = "https://" + candidate
	}

	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Host == "" {
		return raw
	}

	normalized := parsed.Scheme + "://" + parsed.Host + parsed.Path
	return strings.TrimSuffix(normalized, "/")
}

// Phone formats a phone number to the international layout. Unparseable
// numbers pass through unchanged.
func Phone(raw string) string {
	if raw == "" {
		return ""
	}
	return phone.NormalizeInternational(raw)
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email lowercases and trims the address. Returns an empty string when the
// result is not syntactically valid; no guess-fixing.
func Email(raw string) string {
	if raw == "" {
		return ""
	}

	normalized := strings.ToLower(strings.TrimSpace(raw))
	if !emailPattern.MatchString(normalized) {
		return ""
	}
	return normalized
}

// ParseLocation splits a free-form location on commas.
// One part is a city, two are city+country, three or more are city, state
// and the last segment as country.
func ParseLocation(raw string) domain.Location {
	if strings.TrimSpace(raw) == "" {
		return domain.Location{}
	}

	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}

	switch len(parts) {
	case 1:
		return domain.Location{City: parts[0]}
	case 2:
		return domain.Location{City: parts[0], Country: parts[1]}
	default:
		return domain.Location{City: parts[0], State: parts[1], Country: parts[len(parts)-1]}
	}
}

// industryMapping maps a lowercase keyword to its canonical category.
// Declaration order matters: the first key contained in the input wins.
var industryMapping = []struct {
	keyword  string
	category string
}{
	{"technology", "Technology"},
	{"tech", "Technology"},
	{"software", "Software & Technology"},
	{"saas", "Software & Technology"},
	{"ecommerce", "E-commerce & Retail"},
	{"retail", "E-commerce & Retail"},
	{"healthcare", "Healthcare"},
	{"health", "Healthcare"},
	{"finance", "Financial Services"},
	{"fintech", "Financial Services"},
	{"education", "Education"},
	{"manufacturing", "Manufacturing"},
	{"consulting", "Professional Services"},
	{"marketing", "Marketing & Advertising"},
	{"advertising", "Marketing & Advertising"},
	{"real estate", "Real Estate"},
	{"hospitality", "Hospitality & Tourism"},
	{"food", "Food & Beverage"},
	{"automotive", "Automotive"},
	{"construction", "Construction"},
	{"legal", "Legal Services"},
}

// Industry maps a raw category onto the fixed taxonomy by case-insensitive
// substring match. Unmatched input passes through unchanged.
func Industry(category string) string {
	if category == "" {
		return ""
	}

	lowered := strings.ToLower(category)
	for _, entry := range industryMapping {
		if strings.Contains(lowered, entry.keyword) {
			return entry.category
		}
	}
	return category
}

// Analytics tools worth keeping in the canonical tech stack.
var knownAnalytics = map[string]bool{
	"Google Analytics": true,
	"Facebook Pixel":   true,
	"Mixpanel":         true,
	"Segment":          true,
}

// TechStack builds the deduplicated union of platform, CMS, e-commerce
// platform, frameworks and allowlisted analytics tools.
func TechStack(tech *domain.WebsiteTechData) []string {
	stack := make([]string, 0)
	if tech == nil {
		return stack
	}

	seen := make(map[string]bool)
	add := func(value string) {
		if value == "" || seen[value] {
			return
		}
		seen[value] = true
		stack = append(stack, value)
	}

	if tech.Platform != "" && tech.Platform != "Unknown" {
		add(tech.Platform)
	}
	add(tech.CMS)
	add(tech.Ecommerce)
	for _, fw := range tech.Frameworks {
		add(fw)
	}
	for _, tool := range tech.Analytics {
		if knownAnalytics[tool] {
			add(tool)
		}
	}

	return stack
}

// SocialPresenceScore scores a company's social footprint on [0,100]:
// 10 per platform present, 15 per verified profile, plus a followers-tier
// bonus per platform.
func SocialPresenceScore(info domain.SocialMediaInfo) int {
	if len(info) == 0 {
		return 0
	}

	score := len(info) * 10

	for _, metrics := range info {
		if metrics.Verified {
			score += 15
		}
		if metrics.Followers > 0 {
			switch {
			case metrics.Followers > 100_000:
				score += 20
			case metrics.Followers > 10_000:
				score += 15
			case metrics.Followers > 1_000:
				score += 10
			default:
				score += 5
			}
		}
	}

	if score > 100 {
		score = 100
	}
	return score
}

// Record assembles the canonical normalized record from the lead input and
// whatever raw fragments survived enrichment. Absent fragments yield zero
// values, never an error.
func Record(
	input domain.LeadInput,
	tech *domain.WebsiteTechData,
	social domain.SocialMediaInfo,
	company *domain.CompanyEnrichmentData,
	whatsappEnabled bool,
) domain.NormalizedRecord {
	var companyPhone, companyEmail, companyCategory, companyAddress string
	if company != nil {
		companyPhone = company.Phone
		companyEmail = company.Email
		companyCategory = company.Category
		companyAddress = company.Address
	}

	location := input.Location
	if location == "" {
		location = companyAddress
	}

	return domain.NormalizedRecord{
		CompanyName:         CompanyName(input.CompanyName),
		WebsiteURL:          URL(input.WebsiteURL),
		FormattedPhone:      Phone(companyPhone),
		FormattedEmail:      Email(companyEmail),
		Location:            ParseLocation(location),
		IndustryCategory:    Industry(companyCategory),
		TechStack:           TechStack(tech),
		SocialPresenceScore: SocialPresenceScore(social),
		WhatsAppEnabled:     whatsappEnabled,
	}
}
