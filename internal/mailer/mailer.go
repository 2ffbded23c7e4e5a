// Package mailer delivers workflow notifications over SMTP.
package mailer

import (
	"fmt"
	"html"
	"log"

	"github.com/vernard/PostReviewer/internal/service"
	"gopkg.in/gomail.v2"
)

// Mailer sends notification mail asynchronously. A send failure is
// logged and dropped; the workflow state that triggered it is already
// committed.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// New creates a Mailer. With an empty host it stays inert, which keeps
// local development working without an SMTP server.
func New(host string, port int, username, password, from string) *Mailer {
	m := &Mailer{from: from}
	if host != "" {
		m.dialer = gomail.NewDialer(host, port, username, password)
	}
	return m
}

// Notify implements service.Notifier.
func (m *Mailer) Notify(kind, recipient string, data map[string]string) {
	if m.dialer == nil || recipient == "" {
		return
	}

	subject, body := compose(kind, data)
	if subject == "" {
		log.Printf("mailer: unknown notification kind %q", kind)
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	go func() {
		if err := m.dialer.DialAndSend(msg); err != nil {
			log.Printf("mailer: send %q to %s failed: %v", kind, recipient, err)
		}
	}()
}

func compose(kind string, data map[string]string) (subject, body string) {
	esc := func(key string) string { return html.EscapeString(data[key]) }

	switch kind {
	case service.NotifyPostSubmitted:
		subject = fmt.Sprintf("Post awaiting review: %s", data["post_title"])
		body = fmt.Sprintf(
			"<p><strong>%s</strong> submitted <strong>%s</strong> (%s) for approval.</p><p>Log in to review it.</p>",
			esc("submitted_by"), esc("post_title"), esc("brand_name"))
	case service.NotifyPostApproved:
		subject = fmt.Sprintf("Approved: %s", data["post_title"])
		body = fmt.Sprintf(
			"<p><strong>%s</strong> approved <strong>%s</strong>.</p>",
			esc("reviewer_name"), esc("post_title"))
		if data["comment"] != "" {
			body += fmt.Sprintf("<blockquote>%s</blockquote>", esc("comment"))
		}
	case service.NotifyPostChangesRequested:
		subject = fmt.Sprintf("Changes requested: %s", data["post_title"])
		body = fmt.Sprintf(
			"<p><strong>%s</strong> requested changes on <strong>%s</strong>:</p><blockquote>%s</blockquote>",
			esc("reviewer_name"), esc("post_title"), esc("comment"))
	case service.NotifyReviewInvite:
		subject = fmt.Sprintf("Please review: %s", data["post_title"])
		body = fmt.Sprintf(
			"<p><strong>%s</strong> invited you to review <strong>%s</strong> for %s.</p>"+
				"<p><a href=\"%s\">Open the review</a> (link valid until %s).</p>",
			esc("sender"), esc("post_title"), esc("brand_name"),
			esc("review_url"), esc("expires_at"))
	case service.NotifyTeamInvitation:
		subject = fmt.Sprintf("You're invited to join %s", data["agency_name"])
		body = fmt.Sprintf(
			"<p><strong>%s</strong> invited you to join <strong>%s</strong> as a %s.</p>"+
				"<p><a href=\"%s\">Accept the invitation</a>.</p>",
			esc("inviter"), esc("agency_name"), esc("role"), esc("accept_url"))
	}
	return subject, body
}
