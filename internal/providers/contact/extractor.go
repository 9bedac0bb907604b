// Package contact scrapes phone numbers and email addresses off a company
// website. Extraction is best-effort: unreachable sites and pages without
// contact details yield empty results with a nil error.
package contact

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/phone"
)

const (
	userAgent   = "Mozilla/5.0 (compatible; LeadFlowBot/1.0)"
	maxBodySize = 2 << 20
)

type Extractor struct {
	client  *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

func New(timeout time.Duration, limiter *rate.Limiter, log *logger.Logger) *Extractor {
	return &Extractor{
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
		log:     log,
	}
}

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+\d{1,3}[\s.-]?\(?\d{1,4}\)?[\s.-]?\d{3,4}[\s.-]?\d{3,4}`),
	regexp.MustCompile(`\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`),
}

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// junkEmailDomains are hosts that show up in page source but never belong
// to the company itself.
var junkEmailDomains = []string{
	"example.com",
	"sentry.io",
	"wixpress.com",
	"jsdelivr.net",
	"schema.org",
}

var preferredEmailPrefixes = []string{"contact", "info", "sales", "hello", "support"}

// ExtractPhone returns the first valid phone number on the page in E.164
// form. tel: links are checked before free text.
func (e *Extractor) ExtractPhone(ctx context.Context, websiteURL string) (string, error) {
	doc, err := e.fetch(ctx, websiteURL)
	if err != nil {
		e.log.ProviderError("contact_phone", err)
		return "", nil
	}

	found := ""
	doc.Find(`a[href^="tel:"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if normalized := phone.NormalizeE164(strings.TrimPrefix(href, "tel:")); normalized != "" {
			found = normalized
			return false
		}
		return true
	})
	if found != "" {
		return found, nil
	}

	text := doc.Text()
	for _, pattern := range phonePatterns {
		for _, candidate := range pattern.FindAllString(text, 10) {
			if normalized := phone.NormalizeE164(candidate); normalized != "" {
				return normalized, nil
			}
		}
	}
	return "", nil
}

// ExtractEmail returns the most contact-worthy email address on the page.
// Addresses with a recognized contact prefix win over the first match.
func (e *Extractor) ExtractEmail(ctx context.Context, websiteURL string) (string, error) {
	doc, err := e.fetch(ctx, websiteURL)
	if err != nil {
		e.log.ProviderError("contact_email", err)
		return "", nil
	}

	html, err := doc.Html()
	if err != nil {
		return "", nil
	}

	candidates := make([]string, 0, 4)
	seen := make(map[string]bool)
	for _, match := range emailPattern.FindAllString(html, 50) {
		address := strings.ToLower(match)
		if seen[address] || junkEmail(address) {
			continue
		}
		seen[address] = true
		candidates = append(candidates, address)
	}
	if len(candidates) == 0 {
		return "", nil
	}

	for _, prefix := range preferredEmailPrefixes {
		for _, address := range candidates {
			if strings.HasPrefix(address, prefix) {
				return address, nil
			}
		}
	}
	return candidates[0], nil
}

func junkEmail(address string) bool {
	at := strings.LastIndexByte(address, '@')
	if at < 0 {
		return true
	}
	host := address[at+1:]
	for _, junk := range junkEmailDomains {
		if host == junk || strings.HasSuffix(host, "."+junk) {
			return true
		}
	}
	// Asset filenames picked up by the pattern, e.g. logo@2x.png.
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"} {
		if strings.HasSuffix(host, ext) {
			return true
		}
	}
	return false
}

func (e *Extractor) fetch(ctx context.Context, websiteURL string) (*goquery.Document, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	target := websiteURL
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "https://" + target
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodySize))
}
