package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"coachroadmap/backend/config"
)

// ErrDomainNotVerified marks a delivery rejection attributable to the
// sender-domain verification policy of the mail provider.
var ErrDomainNotVerified = errors.New("sender domain not verified")

type Mail struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// ResendMailer posts to the transactional email HTTP API.
type ResendMailer struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

const resendEndpoint = "https://api.resend.com/emails"

func NewResendMailer(cfg config.Config) *ResendMailer {
	return &ResendMailer{
		apiKey:   cfg.ResendAPIKey,
		endpoint: resendEndpoint,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (r *ResendMailer) Send(ctx context.Context, m Mail) error {
	if r.apiKey == "" {
		return fmt.Errorf("mail API key is not configured")
	}
	payload := map[string]any{
		"from":    m.From,
		"to":      []string{m.To},
		"subject": m.Subject,
		"html":    m.HTML,
		"text":    m.Text,
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		if strings.Contains(strings.ToLower(string(body)), "domain is not verified") {
			return fmt.Errorf("%w: %s", ErrDomainNotVerified, string(body))
		}
		return fmt.Errorf("mail provider returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
