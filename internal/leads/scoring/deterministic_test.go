package scoring

import (
	"testing"

	"leadflow_backend/internal/leads/domain"
)

func richTech() *domain.WebsiteTechData {
	return &domain.WebsiteTechData{
		Platform:     "Shopify",
		Technologies: []string{"Shopify", "React", "Node.js", "Cloudflare", "Stripe", "Klaviyo"},
		CMS:          "Shopify",
		Ecommerce:    "Shopify",
		Analytics:    []string{"Google Analytics", "Facebook Pixel"},
		Frameworks:   []string{"React"},
	}
}

func richCompany() *domain.CompanyEnrichmentData {
	return &domain.CompanyEnrichmentData{
		Name:      "Acme",
		Employees: 150,
		Founded:   "2005",
		Funding:   "Series B",
	}
}

func TestFactorsBounds(t *testing.T) {
	social := domain.SocialMediaInfo{
		"instagram": {Platform: "instagram", Followers: 500_000, Verified: true},
		"linkedin":  {Platform: "linkedin", Followers: 200_000, Verified: true},
		"facebook":  {Platform: "facebook", Followers: 150_000, Verified: true},
		"tiktok":    {Platform: "tiktok", Followers: 900_000, Verified: true},
	}
	normalized := &domain.NormalizedRecord{
		TechStack:           []string{"Shopify", "React"},
		SocialPresenceScore: 100,
	}

	factors := Factors(richTech(), social, richCompany(), normalized, false)

	for name, value := range map[string]int{
		"website_quality":      factors.WebsiteQuality,
		"social_activity":      factors.SocialActivity,
		"tech_readiness":       factors.TechReadiness,
		"business_maturity":    factors.BusinessMaturity,
		"automation_potential": factors.AutomationPotential,
	} {
		if value < 0 || value > 20 {
			t.Errorf("%s = %d, want within [0,20]", name, value)
		}
	}

	total := factors.Total()
	if total < 0 || total > 100 {
		t.Errorf("Total() = %d, want within [0,100]", total)
	}
}

func TestFactorsAllInputsMissing(t *testing.T) {
	factors := Factors(nil, nil, nil, nil, false)

	if factors.WebsiteQuality != 0 {
		t.Errorf("WebsiteQuality = %d, want 0", factors.WebsiteQuality)
	}
	if factors.SocialActivity != 0 {
		t.Errorf("SocialActivity = %d, want 0", factors.SocialActivity)
	}
	if factors.TechReadiness != 0 {
		t.Errorf("TechReadiness = %d, want 0", factors.TechReadiness)
	}
	if factors.BusinessMaturity != 0 {
		t.Errorf("BusinessMaturity = %d, want 0", factors.BusinessMaturity)
	}
	// No business messaging account is the only signal left standing.
	if factors.AutomationPotential != 5 {
		t.Errorf("AutomationPotential = %d, want 5", factors.AutomationPotential)
	}
	if factors.Total() != 5 {
		t.Errorf("Total() = %d, want 5", factors.Total())
	}
}

func TestWebsiteQuality(t *testing.T) {
	cases := []struct {
		name string
		tech *domain.WebsiteTechData
		want int
	}{
		{"nil", nil, 0},
		{"unknown platform only", &domain.WebsiteTechData{Platform: "Unknown"}, 0},
		{"platform only", &domain.WebsiteTechData{Platform: "WordPress"}, 5},
		{"full stack", richTech(), 20},
		{
			"cms and analytics",
			&domain.WebsiteTechData{CMS: "WordPress", Analytics: []string{"Google Analytics"}},
			6,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := websiteQuality(tc.tech); got != tc.want {
				t.Errorf("websiteQuality = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSocialActivityScalesPresenceScore(t *testing.T) {
	cases := []struct {
		presence int
		want     int
	}{
		{0, 0},
		{25, 5},
		{50, 10},
		{75, 15},
		{100, 20},
	}

	for _, tc := range cases {
		got := socialActivity(&domain.NormalizedRecord{SocialPresenceScore: tc.presence})
		if got != tc.want {
			t.Errorf("socialActivity(presence=%d) = %d, want %d", tc.presence, got, tc.want)
		}
	}
}

func TestBusinessMaturityTiers(t *testing.T) {
	cases := []struct {
		name    string
		company *domain.CompanyEnrichmentData
		want    int
	}{
		{"nil", nil, 0},
		{"large old funded", richCompany(), 20},
		{"mid-size", &domain.CompanyEnrichmentData{Employees: 60}, 7},
		{"small", &domain.CompanyEnrichmentData{Employees: 5}, 2},
		{"young company", &domain.CompanyEnrichmentData{Founded: "2024"}, 1},
		{"unparseable founding year", &domain.CompanyEnrichmentData{Founded: "nineties"}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := businessMaturity(tc.company); got != tc.want {
				t.Errorf("businessMaturity = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestClampFactors(t *testing.T) {
	clamped := clampFactors(domain.ScoringFactors{
		WebsiteQuality:      99,
		SocialActivity:      -3,
		TechReadiness:       20,
		BusinessMaturity:    0,
		AutomationPotential: 21,
	})

	want := domain.ScoringFactors{
		WebsiteQuality:      20,
		SocialActivity:      0,
		TechReadiness:       20,
		BusinessMaturity:    0,
		AutomationPotential: 20,
	}
	if clamped != want {
		t.Errorf("clampFactors = %+v, want %+v", clamped, want)
	}
}
