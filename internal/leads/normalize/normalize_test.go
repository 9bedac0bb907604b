package normalize

import (
	"reflect"
	"testing"

	"leadflow_backend/internal/leads/domain"
)

func TestCompanyName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"strips corp suffix", "Acme Corp.", "Acme"},
		{"strips inc with comma", "Globex, Inc.", "Globex"},
		{"strips llc case-insensitive", "initech llc", "Initech"},
		{"strips ltd", "Wayne Enterprises Ltd", "Wayne Enterprises"},
		{"title cases tokens", "stark INDUSTRIES", "Stark Industries"},
		{"plain name untouched", "Acme", "Acme"},
		{"whitespace trimmed", "  Acme  ", "Acme"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CompanyName(tc.in); got != tc.want {
				t.Errorf("CompanyName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCompanyNameIdempotent(t *testing.T) {
	inputs := []string{"Acme Corp.", "Globex, Inc.", "stark industries", "Hooli"}
	for _, in := range inputs {
		once := CompanyName(in)
		twice := CompanyName(once)
		if once != twice {
			t.Errorf("CompanyName not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"adds scheme", "acme.com", "https://acme.com"},
		{"keeps http", "http://acme.com", "http://acme.com"},
		{"drops trailing slash", "https://acme.com/", "https://acme.com"},
		{"keeps path", "acme.com/about/", "https://acme.com/about"},
		{"unparseable passes through", "not a url at all", "not a url at all"},
		{"empty stays empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := URL(tc.in); got != tc.want {
				t.Errorf("URL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Contact@Acme.COM", "contact@acme.com"},
		{"  sales@acme.io ", "sales@acme.io"},
		{"not-an-email", ""},
		{"missing@tld", ""},
		{"", ""},
	}

	for _, tc := range cases {
		if got := Email(tc.in); got != tc.want {
			t.Errorf("Email(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseLocation(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want domain.Location
	}{
		{"single part is city", "Amsterdam", domain.Location{City: "Amsterdam"}},
		{"two parts are city and country", "Berlin, Germany", domain.Location{City: "Berlin", Country: "Germany"}},
		{"three parts", "Austin, TX, USA", domain.Location{City: "Austin", State: "TX", Country: "USA"}},
		{"extra parts keep last as country", "A, B, C, D", domain.Location{City: "A", State: "B", Country: "D"}},
		{"empty", "", domain.Location{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseLocation(tc.in); got != tc.want {
				t.Errorf("ParseLocation(%q) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestIndustry(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Technology", "Technology"},
		{"FinTech startup", "Financial Services"},
		{"Healthcare & Wellness", "Healthcare"},
		{"SaaS", "Software & Technology"},
		{"Underwater Basket Weaving", "Underwater Basket Weaving"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := Industry(tc.in); got != tc.want {
			t.Errorf("Industry(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTechStack(t *testing.T) {
	tech := &domain.WebsiteTechData{
		Platform:   "Shopify",
		CMS:        "WordPress",
		Ecommerce:  "Shopify",
		Frameworks: []string{"React", "Next.js", "React"},
		Analytics:  []string{"Google Analytics", "Hotjar", "Mixpanel"},
	}

	got := TechStack(tech)
	want := []string{"Shopify", "WordPress", "React", "Next.js", "Google Analytics", "Mixpanel"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TechStack = %v, want %v", got, want)
	}
}

func TestTechStackDefaults(t *testing.T) {
	if got := TechStack(nil); len(got) != 0 {
		t.Errorf("TechStack(nil) = %v, want empty", got)
	}

	unknown := &domain.WebsiteTechData{Platform: "Unknown"}
	if got := TechStack(unknown); len(got) != 0 {
		t.Errorf("TechStack(unknown platform) = %v, want empty", got)
	}
}

func TestSocialPresenceScoreClamped(t *testing.T) {
	info := domain.SocialMediaInfo{}
	for _, platform := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		info[platform] = domain.SocialMediaMetrics{
			Platform:  platform,
			Followers: 2_000_000_000,
			Verified:  true,
		}
	}

	if got := SocialPresenceScore(info); got != 100 {
		t.Errorf("SocialPresenceScore with extreme inputs = %d, want 100", got)
	}
}

func TestSocialPresenceScore(t *testing.T) {
	cases := []struct {
		name string
		info domain.SocialMediaInfo
		want int
	}{
		{"nil map", nil, 0},
		{
			"single unverified platform, no followers",
			domain.SocialMediaInfo{"instagram": {Platform: "instagram"}},
			10,
		},
		{
			"verified with mid-tier followers",
			domain.SocialMediaInfo{"linkedin": {Platform: "linkedin", Verified: true, Followers: 50_000}},
			40, // 10 platform + 15 verified + 15 follower tier
		},
		{
			"small follower count",
			domain.SocialMediaInfo{"twitter": {Platform: "twitter", Followers: 500}},
			15, // 10 platform + 5 tier
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SocialPresenceScore(tc.info); got != tc.want {
				t.Errorf("SocialPresenceScore = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRecord(t *testing.T) {
	input := domain.LeadInput{CompanyName: "Acme Corp.", WebsiteURL: "acme.com"}
	company := &domain.CompanyEnrichmentData{
		Name:     "Acme Corp.",
		Category: "software",
		Email:    "Info@Acme.com",
		Address:  "Austin, TX, USA",
	}

	record := Record(input, nil, nil, company, false)

	if record.CompanyName != "Acme" {
		t.Errorf("CompanyName = %q, want %q", record.CompanyName, "Acme")
	}
	if record.WebsiteURL != "https://acme.com" {
		t.Errorf("WebsiteURL = %q, want %q", record.WebsiteURL, "https://acme.com")
	}
	if record.FormattedEmail != "info@acme.com" {
		t.Errorf("FormattedEmail = %q, want %q", record.FormattedEmail, "info@acme.com")
	}
	if record.IndustryCategory != "Software & Technology" {
		t.Errorf("IndustryCategory = %q", record.IndustryCategory)
	}
	if record.Location.City != "Austin" || record.Location.Country != "USA" {
		t.Errorf("Location = %+v", record.Location)
	}
	if record.TechStack == nil {
		t.Error("TechStack must be an empty slice, not nil")
	}
	if record.SocialPresenceScore != 0 || record.WhatsAppEnabled {
		t.Errorf("defaults wrong: score=%d whatsapp=%v", record.SocialPresenceScore, record.WhatsAppEnabled)
	}
}

func TestRecordIdempotentOnNormalizedName(t *testing.T) {
	first := Record(domain.LeadInput{CompanyName: "Acme Corp."}, nil, nil, nil, false)
	second := Record(domain.LeadInput{CompanyName: first.CompanyName}, nil, nil, nil, false)
	if first.CompanyName != second.CompanyName {
		t.Errorf("normalization not idempotent: %q vs %q", first.CompanyName, second.CompanyName)
	}
}
