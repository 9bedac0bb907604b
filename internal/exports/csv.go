// Package exports renders lead collections into downloadable formats.
package exports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"leadflow_backend/internal/leads/domain"
)

var csvHeader = []string{
	"Company Name", "Website", "Location", "Industry", "Lead Score", "Potential",
	"Status", "Platform", "Tech Stack", "Social Score", "WhatsApp", "Email",
	"Phone", "Created At",
}

// WriteCSV streams the leads as CSV. One row per lead; missing enrichment
// fragments render as empty cells.
func WriteCSV(w io.Writer, leads []domain.Lead) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, lead := range leads {
		if err := writer.Write(leadRow(lead)); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func leadRow(lead domain.Lead) []string {
	var score, tag string
	if lead.Scoring != nil {
		score = fmt.Sprintf("%d", lead.Scoring.Score)
		tag = string(lead.Scoring.PotentialTag)
	}

	var platform string
	if lead.WebsiteTech != nil {
		platform = lead.WebsiteTech.Platform
	}

	var location, industry, techStack, socialScore, email, phone string
	whatsapp := "No"
	if n := lead.NormalizedData; n != nil {
		location = formatLocation(n.Location)
		industry = n.IndustryCategory
		techStack = strings.Join(n.TechStack, "; ")
		socialScore = fmt.Sprintf("%d", n.SocialPresenceScore)
		email = n.FormattedEmail
		phone = n.FormattedPhone
		if n.WhatsAppEnabled {
			whatsapp = "Yes"
		}
	} else {
		location = lead.Location
		industry = lead.Industry
	}

	companyName := lead.CompanyName
	website := lead.WebsiteURL
	if n := lead.NormalizedData; n != nil {
		if n.CompanyName != "" {
			companyName = n.CompanyName
		}
		if n.WebsiteURL != "" {
			website = n.WebsiteURL
		}
	}

	return []string{
		companyName,
		website,
		location,
		industry,
		score,
		tag,
		string(lead.Status),
		platform,
		techStack,
		socialScore,
		whatsapp,
		email,
		phone,
		lead.CreatedAt.Format(time.RFC3339),
	}
}

func formatLocation(loc domain.Location) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{loc.City, loc.State, loc.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
