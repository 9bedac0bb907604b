package email

import (
	"strings"
	"testing"
	"time"

	"leadflow_backend/internal/leads/domain"
)

func TestRenderWeeklyReport(t *testing.T) {
	report := WeeklyReport{
		NewLeads:    12,
		GeneratedAt: time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC),
		TopLeads: []domain.Lead{
			{
				CompanyName: "Acme <Corp>",
				WebsiteURL:  "https://acme.com",
				Scoring: &domain.LeadScoringResult{
					Score:               82,
					PotentialTag:        domain.PotentialHigh,
					RecommendedApproach: "Lead with the platform migration story.",
				},
			},
			{CompanyName: "Bare Lead"},
		},
	}

	html := renderWeeklyReport(report)

	for _, fragment := range []string{
		"New leads this week: <strong>12</strong>",
		"Acme &lt;Corp&gt;",
		"<td>82</td>",
		"<td>HIGH</td>",
		"Lead with the platform migration story.",
	} {
		if !strings.Contains(html, fragment) {
			t.Errorf("report missing %q", fragment)
		}
	}

	// Unscored leads render placeholders rather than being dropped.
	if !strings.Contains(html, "Bare Lead") {
		t.Error("report must include unscored leads")
	}
}

func TestRenderWeeklyReportNoLeads(t *testing.T) {
	html := renderWeeklyReport(WeeklyReport{NewLeads: 0, GeneratedAt: time.Now()})
	if !strings.Contains(html, "No scored leads yet.") {
		t.Errorf("empty report = %q", html)
	}
}
