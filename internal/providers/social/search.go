// Package social probes the major social platforms for a company profile.
// Detection is handle-based: the company name is collapsed into a likely
// handle and each platform URL is probed. Per-platform failures are
// swallowed; the result holds only the platforms that responded.
package social

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/logger"
)

const (
	userAgent   = "Mozilla/5.0 (compatible; LeadFlowBot/1.0)"
	maxBodySize = 1 << 20
)

type Searcher struct {
	client  *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

func New(timeout time.Duration, limiter *rate.Limiter, log *logger.Logger) *Searcher {
	return &Searcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		limiter: limiter,
		log:     log,
	}
}

// Search probes every known platform for the company. The returned map only
// contains platforms with a detectable presence; it is never nil.
func (s *Searcher) Search(ctx context.Context, companyName, _ string) (domain.SocialMediaInfo, error) {
	info := make(domain.SocialMediaInfo)

	handle := handleFor(companyName)
	if handle == "" {
		return info, nil
	}

	for _, platform := range domain.SocialPlatforms {
		metrics, ok := s.probe(ctx, platform, handle)
		if ok {
			info[platform] = metrics
		}
	}
	return info, nil
}

func handleFor(companyName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(companyName) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func profileURL(platform, handle string) string {
	switch platform {
	case "instagram":
		return "https://www.instagram.com/" + handle
	case "facebook":
		return "https://www.facebook.com/" + handle
	case "linkedin":
		return "https://www.linkedin.com/company/" + handle
	case "tiktok":
		return "https://www.tiktok.com/@" + handle
	case "twitter":
		return "https://twitter.com/" + handle
	default:
		return ""
	}
}

func (s *Searcher) probe(ctx context.Context, platform, handle string) (domain.SocialMediaMetrics, bool) {
	url := profileURL(platform, handle)
	if url == "" {
		return domain.SocialMediaMetrics{}, false
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return domain.SocialMediaMetrics{}, false
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.SocialMediaMetrics{}, false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.ProviderError("social_"+platform, err)
		return domain.SocialMediaMetrics{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.SocialMediaMetrics{}, false
	}

	metrics := domain.SocialMediaMetrics{Platform: platform, URL: url}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return metrics, true
	}
	enrichFromPage(&metrics, string(body))
	return metrics, true
}

// enrichFromPage pulls follower counts and verification hints out of the
// profile page's meta description. Best-effort; absent data leaves zeroes.
func enrichFromPage(metrics *domain.SocialMediaMetrics, html string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return
	}

	description, _ := doc.Find(`meta[property="og:description"]`).Attr("content")
	if description == "" {
		description, _ = doc.Find(`meta[name="description"]`).Attr("content")
	}
	if description == "" {
		return
	}

	if followers := ParseFollowerCount(description); followers > 0 {
		metrics.Followers = followers
	}
	if strings.Contains(strings.ToLower(description), "verified") {
		metrics.Verified = true
	}
}

var followerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)([\d.]+[KMB]?)\s*(?:followers|following)`),
	regexp.MustCompile(`(?i)([\d,]+)\s*(?:followers|following)`),
}

// ParseFollowerCount extracts a follower count from free text, handling the
// K/M/B shorthand. Returns 0 when nothing parseable is present.
func ParseFollowerCount(text string) int64 {
	for _, pattern := range followerPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if count := parseCompactNumber(match[1]); count > 0 {
			return count
		}
	}
	return 0
}

func parseCompactNumber(value string) int64 {
	cleaned := strings.ReplaceAll(value, ",", "")

	multiplier := float64(1)
	switch {
	case strings.HasSuffix(cleaned, "K"), strings.HasSuffix(cleaned, "k"):
		multiplier = 1_000
		cleaned = cleaned[:len(cleaned)-1]
	case strings.HasSuffix(cleaned, "M"), strings.HasSuffix(cleaned, "m"):
		multiplier = 1_000_000
		cleaned = cleaned[:len(cleaned)-1]
	case strings.HasSuffix(cleaned, "B"), strings.HasSuffix(cleaned, "b"):
		multiplier = 1_000_000_000
		cleaned = cleaned[:len(cleaned)-1]
	}

	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return int64(parsed * multiplier)
}
