// Package ports defines the narrow provider interfaces the enrichment
// pipeline consumes. Implementations live in internal/providers and are
// injected at process start.
package ports

import (
	"context"

	"leadflow_backend/internal/leads/domain"
)

// TechnologyProvider detects the technology stack behind a website.
// Implementations must not return an error for unreachable sites; they
// return a default record with platform "Unknown" instead.
type TechnologyProvider interface {
	Detect(ctx context.Context, websiteURL string) (domain.WebsiteTechData, error)
}

// SocialProvider looks up a company's social media presence.
// Partial-platform results are allowed; per-platform failures are
// swallowed inside the implementation.
type SocialProvider interface {
	Search(ctx context.Context, companyName, websiteURL string) (domain.SocialMediaInfo, error)
}

// BusinessInfoProvider enriches a company with business information.
// Implementations must return at least the company name on total failure.
type BusinessInfoProvider interface {
	Enrich(ctx context.Context, companyName, websiteURL, location, industry string) (domain.CompanyEnrichmentData, error)
}

// MessagingStatusProvider checks whether a phone number is registered as a
// business messaging account. Returns an all-false default when the phone
// is absent.
type MessagingStatusProvider interface {
	Check(ctx context.Context, phoneNumber, companyName string) (domain.MessagingStatus, error)
}

// ContactExtractor scrapes contact details from a company website.
/// Best-effort: an empty result with a nil error means nothing was found.
type ContactExtractor interface {
	ExtractPhone(ctx context.Context, websiteURL string) (string, error)
	ExtractEmail(ctx context.Context, websiteURL string) (string, error)
}

// TextGenerationProvider produces a structured JSON completion for a prompt.
// Used only by the AI-assisted scoring adapter; any error triggers the
// deterministic fallback.
type TextGenerationProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
