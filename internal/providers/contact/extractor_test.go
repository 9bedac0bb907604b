package contact

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leadflow_backend/platform/logger"
)

func servePage(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestExtractor() *Extractor {
	return New(5*time.Second, nil, logger.New("test"))
}

func TestExtractPhonePrefersTelLink(t *testing.T) {
	srv := servePage(t, `<html><body>
		<p>Call us at (999) 000-0000</p>
		<a href="tel:+1-212-555-0100">Call</a>
	</body></html>`)

	got, err := newTestExtractor().ExtractPhone(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ExtractPhone: %v", err)
	}
	if got != "+12125550100" {
		t.Errorf("phone = %q, want +12125550100", got)
	}
}

func TestExtractPhoneFromBodyText(t *testing.T) {
	srv := servePage(t, `<html><body>
		<footer>Reach us: +1 212 555 0100 or by mail.</footer>
	</body></html>`)

	got, err := newTestExtractor().ExtractPhone(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ExtractPhone: %v", err)
	}
	if got != "+12125550100" {
		t.Errorf("phone = %q, want +12125550100", got)
	}
}

func TestExtractPhoneNothingFound(t *testing.T) {
	srv := servePage(t, `<html><body><p>No contact details here.</p></body></html>`)

	got, err := newTestExtractor().ExtractPhone(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ExtractPhone: %v", err)
	}
	if got != "" {
		t.Errorf("phone = %q, want empty", got)
	}
}

func TestExtractPhoneUnreachableSite(t *testing.T) {
	got, err := newTestExtractor().ExtractPhone(context.Background(), "http://127.0.0.1:1")
	if err != nil {
		t.Fatalf("unreachable site must not error, got %v", err)
	}
	if got != "" {
		t.Errorf("phone = %q, want empty", got)
	}
}

func TestExtractEmailPrefersContactPrefix(t *testing.T) {
	srv := servePage(t, `<html><body>
		<p>press@acme.com</p>
		<p>contact@acme.com</p>
	</body></html>`)

	got, err := newTestExtractor().ExtractEmail(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ExtractEmail: %v", err)
	}
	if got != "contact@acme.com" {
		t.Errorf("email = %q, want contact@acme.com", got)
	}
}

func TestExtractEmailSkipsJunkDomains(t *testing.T) {
	srv := servePage(t, `<html><body>
		<script src="https://browser.sentry.io/x.js"></script>
		<p>report@sentry.io</p>
		<p>user@example.com</p>
		<img src="logo@2x.png">
		<p>hello@acme.com</p>
	</body></html>`)

	got, err := newTestExtractor().ExtractEmail(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ExtractEmail: %v", err)
	}
	if got != "hello@acme.com" {
		t.Errorf("email = %q, want hello@acme.com", got)
	}
}

func TestExtractEmailNothingFound(t *testing.T) {
	srv := servePage(t, `<html><body><p>Find us on social media.</p></body></html>`)

	got, err := newTestExtractor().ExtractEmail(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ExtractEmail: %v", err)
	}
	if got != "" {
		t.Errorf("email = %q, want empty", got)
	}
}
