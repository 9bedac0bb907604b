package exports

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"leadflow_backend/internal/leads/domain"
)

func TestWriteCSV(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	leads := []domain.Lead{
		{
			CompanyName: "Acme Corp.",
			WebsiteURL:  "acme.com",
			Status:      domain.StatusCompleted,
			CreatedAt:   created,
			WebsiteTech: &domain.WebsiteTechData{Platform: "Shopify"},
			NormalizedData: &domain.NormalizedRecord{
				CompanyName:         "Acme",
				WebsiteURL:          "https://acme.com",
				FormattedEmail:      "info@acme.com",
				FormattedPhone:      "+1 212-555-0100",
				Location:            domain.Location{City: "Austin", State: "TX", Country: "USA"},
				IndustryCategory:    "E-commerce & Retail",
				TechStack:           []string{"Shopify", "React"},
				SocialPresenceScore: 55,
				WhatsAppEnabled:     true,
			},
			Scoring: &domain.LeadScoringResult{Score: 72, PotentialTag: domain.PotentialHigh},
		},
		{
			CompanyName: "Mystery Co",
			Status:      domain.StatusFailed,
			CreatedAt:   created,
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, leads); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(records))
	}
	if records[0][0] != "Company Name" || records[0][len(records[0])-1] != "Created At" {
		t.Errorf("unexpected header: %v", records[0])
	}

	acme := records[1]
	if acme[0] != "Acme" || acme[1] != "https://acme.com" {
		t.Errorf("normalized fields must win: %v", acme[:2])
	}
	if acme[2] != "Austin, TX, USA" {
		t.Errorf("location = %q", acme[2])
	}
	if acme[4] != "72" || acme[5] != "HIGH" {
		t.Errorf("score/tag = %q/%q", acme[4], acme[5])
	}
	if acme[8] != "Shopify; React" {
		t.Errorf("tech stack = %q", acme[8])
	}
	if acme[10] != "Yes" {
		t.Errorf("whatsapp = %q", acme[10])
	}
	if acme[13] != "2026-03-14T09:30:00Z" {
		t.Errorf("created at = %q", acme[13])
	}

	mystery := records[2]
	if mystery[0] != "Mystery Co" || mystery[4] != "" || mystery[10] != "No" {
		t.Errorf("unscored lead row wrong: %v", mystery)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("rows = %d, want header only", len(records))
	}
}
