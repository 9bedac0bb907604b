// Package businessinfo enriches a company with firmographic data from a
// Clearbit-compatible company lookup API. Without a configured API the
// provider degrades to echoing the caller-supplied fields; it never returns
// less than the company name.
package businessinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/logger"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Logger
}

// New creates the enrichment client. An empty baseURL or apiKey leaves the
// remote lookup disabled.
func New(baseURL, apiKey string, timeout time.Duration, limiter *rate.Limiter, log *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		log:        log,
	}
}

// companyResponse mirrors the Clearbit company object, reduced to the fields
// the enrichment record carries.
type companyResponse struct {
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
	Category    struct {
		Industry string `json:"industry"`
	} `json:"category"`
	FoundedYear int `json:"foundedYear"`
	Metrics     struct {
		Employees              int    `json:"employees"`
		EstimatedAnnualRevenue string `json:"estimatedAnnualRevenue"`
		Raised                 string `json:"raised"`
	} `json:"metrics"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Geo   struct {
		StreetAddress string `json:"streetAddress"`
		City          string `json:"city"`
		State         string `json:"state"`
		Country       string `json:"country"`
	} `json:"geo"`
	LinkedIn struct {
		Handle string `json:"handle"`
	} `json:"linkedin"`
}

// Enrich builds the enrichment record. Remote failure degrades to the
// caller-supplied fields; the company name is always present.
func (c *Client) Enrich(ctx context.Context, companyName, websiteURL, location, industry string) (domain.CompanyEnrichmentData, error) {
	enriched := domain.CompanyEnrichmentData{
		Name:   companyName,
		Domain: domainOf(websiteURL),
	}

	if c.enabled() && enriched.Domain != "" {
		if remote, err := c.lookup(ctx, enriched.Domain); err != nil {
			c.log.ProviderError("business_info", err)
		} else if remote != nil {
			merge(&enriched, remote)
		}
	}

	// Caller-supplied fields fill gaps, never overwrite enrichment.
	if location != "" && enriched.Address == "" {
		enriched.Address = location
	}
	if industry != "" && enriched.Category == "" {
		enriched.Category = industry
	}

	return enriched, nil
}

func (c *Client) enabled() bool {
	return c.baseURL != "" && c.apiKey != ""
}

func (c *Client) lookup(ctx context.Context, domainName string) (*companyResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	reqURL := fmt.Sprintf("%s/v2/companies/find?domain=%s", c.baseURL, url.QueryEscape(domainName))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("company lookup status %d", resp.StatusCode)
	}

	var payload companyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// merge overlays remote data on the record, field by field. Remote values
// win over the seed values because the seed only carries what the caller
// typed in.
func merge(enriched *domain.CompanyEnrichmentData, remote *companyResponse) {
	if remote.Name != "" {
		enriched.Name = remote.Name
	}
	if remote.Domain != "" {
		enriched.Domain = remote.Domain
	}
	enriched.Description = remote.Description
	enriched.Category = remote.Category.Industry
	enriched.Employees = remote.Metrics.Employees
	enriched.Size = SizeBucket(remote.Metrics.Employees)
	enriched.Revenue = remote.Metrics.EstimatedAnnualRevenue
	enriched.Funding = remote.Metrics.Raised
	enriched.Email = remote.Email
	enriched.Phone = remote.Phone
	enriched.Address = formatAddress(remote)
	if remote.FoundedYear > 0 {
		enriched.Founded = fmt.Sprintf("%d", remote.FoundedYear)
	}
	if remote.LinkedIn.Handle != "" {
		enriched.LinkedInURL = "https://www.linkedin.com/" + remote.LinkedIn.Handle
	}
}

func formatAddress(remote *companyResponse) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{remote.Geo.StreetAddress, remote.Geo.City, remote.Geo.State, remote.Geo.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// SizeBucket maps an employee count onto the standard size labels.
func SizeBucket(employees int) string {
	switch {
	case employees <= 0:
		return ""
	case employees < 10:
		return "Small (1-10)"
	case employees < 50:
		return "Small (11-50)"
	case employees < 200:
		return "Medium (51-200)"
	case employees < 1000:
		return "Medium (201-1000)"
	case employees < 5000:
		return "Large (1001-5000)"
	default:
		return "Enterprise (5000+)"
	}
}

func domainOf(websiteURL string) string {
	if websiteURL == "" {
		return ""
	}
	candidate := websiteURL
	if !strings.HasPrefix(candidate, "http://") && !strings.HasPrefix(candidate, "https://") {
		candidate = "https://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}
