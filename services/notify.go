package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"coachroadmap/backend/config"
	"coachroadmap/backend/models"
)

// Notifier delivers credentials email best-effort: one attempt to the client,
// one domain-policy fallback to the configured test inbox, everything else
// logged and swallowed. It never fails the request.
type Notifier struct {
	mailer Mailer
	cfg    config.Config
}

func NewNotifier(mailer Mailer, cfg config.Config) *Notifier {
	return &Notifier{mailer: mailer, cfg: cfg}
}

// SendCredentials fires once per ingestion, after the synchronizer completes.
func (n *Notifier) SendCredentials(ctx context.Context, client *models.Profile, password string, created bool) {
	if password == "" {
		return
	}
	subject := "Your coaching platform access"
	intro := "Your account credentials have been updated."
	if created {
		intro = "Your coaching account has been created."
	}
	text := fmt.Sprintf("Hello %s,\n\n%s\n\nEmail: %s\nPassword: %s\n", client.FullName, intro, client.Email, password)
	html := fmt.Sprintf("<p>Hello %s,</p><p>%s</p><p>Email: <b>%s</b><br>Password: <b>%s</b></p>",
		client.FullName, intro, client.Email, password)

	mail := Mail{From: n.cfg.MailFrom, To: client.Email, Subject: subject, HTML: html, Text: text}
	err := n.mailer.Send(ctx, mail)
	if err == nil {
		log.Printf("notify: credentials sent to %s", client.Email)
		return
	}
	if errors.Is(err, ErrDomainNotVerified) && n.cfg.MailFallbackTo != "" {
		redirect := mail
		redirect.To = n.cfg.MailFallbackTo
		redirect.Text = fmt.Sprintf("[redirected from %s]\n\n%s", client.Email, mail.Text)
		redirect.HTML = fmt.Sprintf("<p><i>[redirected from %s]</i></p>%s", client.Email, mail.HTML)
		if err := n.mailer.Send(ctx, redirect); err != nil {
			log.Printf("notify: fallback delivery failed: %v", err)
			return
		}
		log.Printf("notify: credentials for %s redirected to %s", client.Email, n.cfg.MailFallbackTo)
		return
	}
	log.Printf("notify: delivery to %s failed: %v", client.Email, err)
}
