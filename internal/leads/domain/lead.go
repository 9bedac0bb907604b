// Package domain defines the lead aggregate and the canonical enrichment
// schema shared by the pipeline, scoring and persistence layers.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// LeadStatus is the lifecycle state of a lead aggregate.
type LeadStatus string

const (
	StatusProcessing LeadStatus = "PROCESSING"
	StatusCompleted  LeadStatus = "COMPLETED"
	StatusFailed     LeadStatus = "FAILED"
)

// PotentialTag is the categorical bucket derived from the lead score.
type PotentialTag string

const (
	PotentialHigh   PotentialTag = "HIGH"
	PotentialMedium PotentialTag = "MEDIUM"
	PotentialLow    PotentialTag = "LOW"
)

// TagForScore derives the potential tag from a total score.
// Thresholds are exact: >=70 HIGH, >=40 MEDIUM, else LOW.
func TagForScore(score int) PotentialTag {
	switch {
	case score >= 70:
		return PotentialHigh
	case score >= 40:
		return PotentialMedium
	default:
		return PotentialLow
	}
}

// StepStatus is the terminal or transient state of one pipeline step.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepFailed     StepStatus = "failed"
)

// Pipeline step names, in execution order.
const (
	StepWebsiteTech     = "Fetch Website Technology"
	StepSocialMedia     = "Fetch Social Media Presence"
	StepCompanyInfo     = "Fetch & Enrich Company Info"
	StepMessagingStatus = "Check WhatsApp Business API"
	StepNormalize       = "Normalize Data"
	StepScoring         = "AI Lead Scoring"
)

// StepOrder lists all pipeline steps in their fixed execution order.
var StepOrder = []string{
	StepWebsiteTech,
	StepSocialMedia,
	StepCompanyInfo,
	StepMessagingStatus,
	StepNormalize,
	StepScoring,
}

// SocialPlatforms is the fixed set of platforms the social lookup covers.
var SocialPlatforms = []string{"instagram", "facebook", "linkedin", "tiktok", "twitter"}

// LeadInput is the caller-supplied seed for a lead. Immutable.
type LeadInput struct {
	CompanyName string `json:"company_name" validate:"required"`
	WebsiteURL  string `json:"website_url,omitempty"`
	Location    string `json:"location,omitempty"`
	Industry    string `json:"industry,omitempty"`
}

// WebsiteTechData holds raw technology detection results for a website.
type WebsiteTechData struct {
	Platform     string   `json:"platform,omitempty"`
	Technologies []string `json:"technologies"`
	CMS          string   `json:"cms,omitempty"`
	Ecommerce    string   `json:"ecommerce,omitempty"`
	Analytics    []string `json:"analytics"`
	Frameworks   []string `json:"frameworks"`
	Hosting      string   `json:"hosting,omitempty"`
}

// SocialMediaMetrics holds per-platform social presence metrics.
type SocialMediaMetrics struct {
	Platform       string  `json:"platform"`
	URL            string  `json:"url,omitempty"`
	Followers      int64   `json:"followers,omitempty"`
	Posts          int     `json:"posts,omitempty"`
	EngagementRate float64 `json:"engagement_rate,omitempty"`
	LastPostDate   string  `json:"last_post_date,omitempty"`
	Verified       bool    `json:"verified,omitempty"`
}

// SocialMediaInfo maps platform name to its metrics. Platforms with no
// detectable presence are absent from the map.
type SocialMediaInfo map[string]SocialMediaMetrics

// MessagingStatus describes a company's business messaging account state.
type MessagingStatus struct {
	HasBusinessAccount bool   `json:"has_business_account"`
	IsVerified         bool   `json:"is_verified"`
	PhoneNumber        string `json:"phone_number,omitempty"`
	BusinessName       string `json:"business_name,omitempty"`
	APIEnabled         bool   `json:"api_enabled"`
}

// KeyContact is a named contact person at the company.
type KeyContact struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// CompanyEnrichmentData holds raw business information from enrichment sources.
type CompanyEnrichmentData struct {
	Name        string       `json:"name"`
	Domain      string       `json:"domain,omitempty"`
	Description string       `json:"description,omitempty"`
	Category    string       `json:"category,omitempty"`
	Size        string       `json:"size,omitempty"`
	Founded     string       `json:"founded,omitempty"`
	Employees   int          `json:"employees,omitempty"`
	Funding     string       `json:"funding,omitempty"`
	Revenue     string       `json:"revenue,omitempty"`
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Address     string       `json:"address,omitempty"`
	LinkedInURL string       `json:"linkedin_url,omitempty"`
	KeyContacts []KeyContact `json:"key_contacts,omitempty"`
}

// Location is the parsed city/state/country triple of a free-form address.
type Location struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// NormalizedRecord is the canonical record derived from all raw fragments.
// It is produced by the normalization engine and never hand-edited.
type NormalizedRecord struct {
	CompanyName         string   `json:"company_name"`
	WebsiteURL          string   `json:"website_url,omitempty"`
	FormattedPhone      string   `json:"formatted_phone,omitempty"`
	FormattedEmail      string   `json:"formatted_email,omitempty"`
	Location            Location `json:"location"`
	IndustryCategory    string   `json:"industry_category,omitempty"`
	TechStack           []string `json:"tech_stack"`
	SocialPresenceScore int      `json:"social_presence_score"`
	WhatsAppEnabled     bool     `json:"whatsapp_enabled"`
}

// ScoringFactors holds the five bounded sub-scores, each in [0,20].
type ScoringFactors struct {
	WebsiteQuality      int `json:"website_quality"`
	SocialActivity      int `json:"social_activity"`
	TechReadiness       int `json:"tech_readiness"`
	BusinessMaturity    int `json:"business_maturity"`
	AutomationPotential int `json:"automation_potential"`
}

// Total sums the sub-scores. Given the per-factor bounds the result is
// always in [0,100].
func (f ScoringFactors) Total() int {
	return f.WebsiteQuality + f.SocialActivity + f.TechReadiness + f.BusinessMaturity + f.AutomationPotential
}

// LeadScoringResult is the scoring outcome for a lead.
type LeadScoringResult struct {
	Score               int            `json:"score"`
	PotentialTag        PotentialTag   `json:"potential_tag"`
	ScoringFactors      ScoringFactors `json:"scoring_factors"`
	Notes               string         `json:"notes"`
	RecommendedApproach string         `json:"recommended_approach"`
}

// EnrichedInsights holds advisory narrative fields. They never feed back
// into the score.
type EnrichedInsights struct {
	SuggestedSalesApproach  string   `json:"suggested_sales_approach"`
	LikelyPainPoints        []string `json:"likely_pain_points"`
	MarketingReadiness      string   `json:"marketing_readiness"`
	CompetitorActivity      string   `json:"competitor_activity,omitempty"`
	IndustryTrends          []string `json:"industry_trends,omitempty"`
	AutomationOpportunities []string `json:"automation_opportunities"`
	NextSteps               []string `json:"next_steps"`
}

// ProcessingStep records the outcome of one pipeline stage.
type ProcessingStep struct {
	StepName    string      `json:"step_name"`
	Status      StepStatus  `json:"status"`
	Data        interface{} `json:"data,omitempty"`
	Error       string      `json:"error,omitempty"`
	StartedAt   time.Time   `json:"started_at"`
	CompletedAt time.Time   `json:"completed_at,omitempty"`
}

// Lead is the aggregate root owned by a single pipeline run for its lifetime.
type Lead struct {
	ID              uuid.UUID              `json:"lead_id"`
	CompanyName     string                 `json:"company_name"`
	WebsiteURL      string                 `json:"website_url,omitempty"`
	Location        string                 `json:"location,omitempty"`
	Industry        string                 `json:"industry,omitempty"`
	Status          LeadStatus             `json:"status"`
	ProcessingStage string                 `json:"processing_stage,omitempty"`
	WebsiteTech     *WebsiteTechData       `json:"website_tech,omitempty"`
	SocialMediaInfo SocialMediaInfo        `json:"social_media_info,omitempty"`
	MessagingStatus *MessagingStatus       `json:"whatsapp_status,omitempty"`
	CompanyInfo     *CompanyEnrichmentData `json:"company_info_enriched,omitempty"`
	NormalizedData  *NormalizedRecord      `json:"normalized_data,omitempty"`
	Scoring         *LeadScoringResult     `json:"lead_score_and_notes,omitempty"`
	Insights        *EnrichedInsights      `json:"enriched_insights,omitempty"`
	ProcessingSteps []ProcessingStep       `json:"processing_steps"`
	LastProcessedAt *time.Time             `json:"last_processed_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// Input reconstructs the original caller-supplied seed from the aggregate.
func (l *Lead) Input() LeadInput {
	return LeadInput{
		CompanyName: l.CompanyName,
		WebsiteURL:  l.WebsiteURL,
		Location:    l.Location,
		Industry:    l.Industry,
	}
}

// History actions recorded on scoring events.
const (
	ActionLeadProcessed = "LEAD_PROCESSED"
	ActionScoreUpdated  = "SCORE_UPDATED"
)

// HistoryEntry is one append-only audit record of a scoring event.
type HistoryEntry struct {
	ID            uuid.UUID              `json:"id"`
	LeadID        uuid.UUID              `json:"lead_id"`
	Action        string                 `json:"action"`
	PreviousScore *int                   `json:"previous_score,omitempty"`
	NewScore      *int                   `json:"new_score,omitempty"`
	Changes       map[string]interface{} `json:"changes,omitempty"`
	PerformedAt   time.Time              `json:"performed_at"`
}
