// Package transport defines the request and response DTOs of the leads API.
package transport

import "leadflow_backend/internal/leads/domain"

// CreateLeadRequest seeds a single enrichment run.
type CreateLeadRequest struct {
	CompanyName string `json:"company_name" validate:"required,min=1,max=200"`
	WebsiteURL  string `json:"website_url,omitempty" validate:"omitempty,max=500"`
	Location    string `json:"location,omitempty" validate:"omitempty,max=200"`
	Industry    string `json:"industry,omitempty" validate:"omitempty,max=100"`
}

// Input converts the request to the domain seed.
func (r CreateLeadRequest) Input() domain.LeadInput {
	return domain.LeadInput{
		CompanyName: r.CompanyName,
		WebsiteURL:  r.WebsiteURL,
		Location:    r.Location,
		Industry:    r.Industry,
	}
}

// BatchCreateRequest seeds multiple enrichment runs in one call.
type BatchCreateRequest struct {
	Leads []CreateLeadRequest `json:"leads" validate:"required,min=1,max=100,dive"`
}

// BatchCreateResponse reports per-batch outcome. Failed leads are dropped,
// so processed may be smaller than requested.
type BatchCreateResponse struct {
	Requested int            `json:"requested"`
	Processed int            `json:"processed"`
	Leads     []*domain.Lead `json:"leads"`
}

// ListLeadsQuery filters the lead listing.
type ListLeadsQuery struct {
	Status   string `form:"status" validate:"omitempty,oneof=PROCESSING COMPLETED FAILED"`
	Tag      string `form:"potential_tag" validate:"omitempty,oneof=HIGH MEDIUM LOW"`
	MinScore *int   `form:"min_score" validate:"omitempty,min=0,max=100"`
	MaxScore *int   `form:"max_score" validate:"omitempty,min=0,max=100"`
	Limit    int    `form:"limit" validate:"omitempty,min=1,max=200"`
	Offset   int    `form:"offset" validate:"omitempty,min=0"`
}

// ListLeadsResponse is a page of leads plus the total for the filter.
type ListLeadsResponse struct {
	Leads  []domain.Lead `json:"leads"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// HistoryResponse is the audit trail of one lead.
type HistoryResponse struct {
	LeadID  string                `json:"lead_id"`
	History []domain.HistoryEntry `json:"history"`
}
