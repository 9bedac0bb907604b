// Package email sends scheduled lead reports over SMTP.
package email

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

const sendTimeout = 10 * time.Second

// WeeklyReport is the aggregate content of one scheduled report email.
type WeeklyReport struct {
	NewLeads    int64
	TopLeads    []domain.Lead
	GeneratedAt time.Time
}

type Reporter struct {
	cfg config.EmailConfig
	log *logger.Logger
}

func New(cfg config.EmailConfig, log *logger.Logger) *Reporter {
	return &Reporter{cfg: cfg, log: log}
}

// Enabled reports whether SMTP and a recipient are configured.
func (r *Reporter) Enabled() bool {
	return r.cfg.IsEmailEnabled() && r.cfg.GetReportRecipient() != ""
}

// SendWeeklyReport mails the report to the configured recipient. Returns a
// nil error without sending when email is not configured.
func (r *Reporter) SendWeeklyReport(ctx context.Context, report WeeklyReport) error {
	if !r.Enabled() {
		r.log.Info("email not configured, skipping weekly report")
		return nil
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(r.cfg.GetEmailFromName(), r.cfg.GetEmailFromAddress()); err != nil {
		return apperr.Wrap(apperr.KindInternal, "invalid report sender address", err)
	}
	if err := msg.To(r.cfg.GetReportRecipient()); err != nil {
		return apperr.Wrap(apperr.KindInternal, "invalid report recipient address", err)
	}
	msg.Subject(fmt.Sprintf("Weekly Lead Report — %s", report.GeneratedAt.Format("Jan 2, 2006")))
	msg.SetBodyString(gomail.TypeTextHTML, renderWeeklyReport(report))

	client, err := gomail.NewClient(r.cfg.GetSMTPHost(),
		gomail.WithPort(r.cfg.GetSMTPPort()),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(r.cfg.GetSMTPUser()),
		gomail.WithPassword(r.cfg.GetSMTPPass()),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(sendTimeout),
	)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to create SMTP client", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to send weekly report", err)
	}

	r.log.Info("weekly report sent", "recipient", r.cfg.GetReportRecipient(), "top_leads", len(report.TopLeads))
	return nil
}

func renderWeeklyReport(report WeeklyReport) string {
	var b strings.Builder

	b.WriteString("<h2>Weekly Lead Report</h2>")
	fmt.Fprintf(&b, "<p>New leads this week: <strong>%d</strong></p>", report.NewLeads)

	if len(report.TopLeads) == 0 {
		b.WriteString("<p>No scored leads yet.</p>")
		return b.String()
	}

	b.WriteString("<h3>Top Leads</h3>")
	b.WriteString("<table border=\"1\" cellpadding=\"6\" cellspacing=\"0\">")
	b.WriteString("<tr><th>Company</th><th>Score</th><th>Potential</th><th>Website</th><th>Recommended Approach</th></tr>")
	for _, lead := range report.TopLeads {
		score, tag, approach := "-", "-", "-"
		if lead.Scoring != nil {
			score = fmt.Sprintf("%d", lead.Scoring.Score)
			tag = string(lead.Scoring.PotentialTag)
			if lead.Scoring.RecommendedApproach != "" {
				approach = html.EscapeString(lead.Scoring.RecommendedApproach)
			}
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			html.EscapeString(lead.CompanyName), score, tag, html.EscapeString(lead.WebsiteURL), approach)
	}
	b.WriteString("</table>")

	return b.String()
}
