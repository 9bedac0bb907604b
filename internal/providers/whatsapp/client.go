// Package whatsapp checks whether a phone number is registered as a
// WhatsApp Business account through the Graph API. Without a configured
// API, or without a usable phone number, the check degrades to the
// all-false default.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/phone"
)

type Client struct {
	baseURL    string
	apiKey     string
	businessID string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Logger
}

func New(baseURL, apiKey, businessID string, timeout time.Duration, limiter *rate.Limiter, log *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		businessID: businessID,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		log:        log,
	}
}

type phoneNumberResponse struct {
	VerifiedName           string `json:"verified_name"`
	CodeVerificationStatus string `json:"code_verification_status"`
	QualityRating          string `json:"quality_rating"`
	Error                  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Check looks up the business account status of a phone number. Missing or
// unparseable numbers yield the all-false default with a nil error.
func (c *Client) Check(ctx context.Context, phoneNumber, companyName string) (domain.MessagingStatus, error) {
	status := domain.MessagingStatus{}

	if phoneNumber == "" {
		return status, nil
	}

	normalized := phone.NormalizeE164(phoneNumber)
	if normalized == "" {
		return status, nil
	}
	status.PhoneNumber = normalized

	if !c.enabled() {
		return status, nil
	}

	resp, err := c.lookupNumber(ctx, normalized)
	if err != nil {
		c.log.ProviderError("whatsapp", err)
		return status, nil
	}
	if resp == nil || resp.Error != nil {
		return status, nil
	}

	status.HasBusinessAccount = resp.VerifiedName != ""
	status.IsVerified = resp.CodeVerificationStatus == "VERIFIED"
	status.APIEnabled = resp.QualityRating != ""
	status.BusinessName = resp.VerifiedName
	if status.BusinessName == "" {
		status.BusinessName = companyName
	}

	return status, nil
}

func (c *Client) enabled() bool {
	return c.baseURL != "" && c.apiKey != "" && c.businessID != ""
}

func (c *Client) lookupNumber(ctx context.Context, phoneNumber string) (*phoneNumberResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	body, err := json.Marshal(map[string]string{"phone_number": phoneNumber})
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/%s/phone_numbers", c.baseURL, c.businessID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whatsapp lookup status %d", resp.StatusCode)
	}

	var payload phoneNumberResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
