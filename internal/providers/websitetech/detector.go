// Package websitetech detects the technology stack behind a website by
// fetching its landing page and looking for platform markers.
package websitetech

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/logger"
)

const (
	userAgent   = "Mozilla/5.0 (compatible; LeadFlowBot/1.0)"
	maxBodySize = 2 << 20 // 2 MiB of HTML is plenty for marker detection
)

type Detector struct {
	client  *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

// New creates a detector. limiter may be shared across providers; nil
// disables rate limiting.
func New(timeout time.Duration, limiter *rate.Limiter, log *logger.Logger) *Detector {
	return &Detector{
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
		log:     log,
	}
}

// Detect fetches the site and classifies its stack. Unreachable sites yield
// the default "Unknown" record with a nil error.
func (d *Detector) Detect(ctx context.Context, websiteURL string) (domain.WebsiteTechData, error) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return unknownTech(), nil
		}
	}

	html, doc, err := d.fetch(ctx, websiteURL)
	if err != nil {
		d.log.ProviderError("website_tech", err)
		return unknownTech(), nil
	}

	return classify(html, doc), nil
}

func (d *Detector) fetch(ctx context.Context, websiteURL string) (string, *goquery.Document, error) {
	if !strings.HasPrefix(websiteURL, "http://") && !strings.HasPrefix(websiteURL, "https://") {
		websiteURL = "https://" + websiteURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, websiteURL, nil)
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", nil, err
	}

	html := string(body)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", nil, err
	}
	return html, doc, nil
}

func classify(html string, doc *goquery.Document) domain.WebsiteTechData {
	lowered := strings.ToLower(html)

	tech := domain.WebsiteTechData{
		Platform:     "Custom",
		Technologies: make([]string, 0),
		Analytics:    make([]string, 0),
		Frameworks:   make([]string, 0),
	}

	add := func(name string) {
		for _, existing := range tech.Technologies {
			if existing == name {
				return
			}
		}
		tech.Technologies = append(tech.Technologies, name)
	}

	if strings.Contains(lowered, "wp-content") || strings.Contains(lowered, "wordpress") {
		tech.Platform = "WordPress"
		tech.CMS = "WordPress"
		add("WordPress")
	}
	if strings.Contains(lowered, "shopify") || strings.Contains(lowered, "cdn.shopify") {
		tech.Platform = "Shopify"
		tech.Ecommerce = "Shopify"
		add("Shopify")
	}
	if strings.Contains(lowered, "woocommerce") {
		tech.Ecommerce = "WooCommerce"
		add("WooCommerce")
	}
	if strings.Contains(lowered, "wix.com") || strings.Contains(lowered, "_wix") {
		tech.Platform = "Wix"
		tech.CMS = "Wix"
		add("Wix")
	}
	if strings.Contains(lowered, "squarespace") {
		tech.Platform = "Squarespace"
		tech.CMS = "Squarespace"
		add("Squarespace")
	}

	if strings.Contains(lowered, "google-analytics") || strings.Contains(lowered, "gtag") {
		tech.Analytics = append(tech.Analytics, "Google Analytics")
		add("Google Analytics")
	}
	if strings.Contains(lowered, "facebook-pixel") || strings.Contains(lowered, "fbq(") {
		tech.Analytics = append(tech.Analytics, "Facebook Pixel")
		add("Facebook Pixel")
	}
	if strings.Contains(lowered, "mixpanel") {
		tech.Analytics = append(tech.Analytics, "Mixpanel")
		add("Mixpanel")
	}

	hasNext := strings.Contains(html, "__NEXT_DATA__")
	if doc.Find(`script[src*="react"]`).Length() > 0 || hasNext {
		tech.Frameworks = append(tech.Frameworks, "React")
		add("React")
	}
	if hasNext {
		tech.Frameworks = append(tech.Frameworks, "Next.js")
		add("Next.js")
	}
	if doc.Find(`script[src*="vue"]`).Length() > 0 || strings.Contains(html, "__VUE__") {
		tech.Frameworks = append(tech.Frameworks, "Vue.js")
		add("Vue.js")
	}
	if doc.Find(`script[src*="angular"]`).Length() > 0 {
		tech.Frameworks = append(tech.Frameworks, "Angular")
		add("Angular")
	}

	return tech
}

func unknownTech() domain.WebsiteTechData {
	return domain.WebsiteTechData{
		Platform:     "Unknown",
		Technologies: make([]string, 0),
		Analytics:    make([]string, 0),
		Frameworks:   make([]string, 0),
	}
}
