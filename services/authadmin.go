package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"coachroadmap/backend/config"
)

// AuthAdmin is the admin-level client of the identity provider (GoTrue-style
// API): create users, rotate passwords, ban and unban. All calls carry the
// service key; a 401 means that key lacks admin rights and is reported
// distinctly from other provisioning failures.
type AuthAdmin struct {
	baseURL    string
	serviceKey string
	http       *http.Client
}

func NewAuthAdmin(cfg config.Config) *AuthAdmin {
	return &AuthAdmin{
		baseURL:    cfg.AuthAdminURL,
		serviceKey: cfg.AuthServiceKey,
		http:       &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *AuthAdmin) Configured() bool {
	return a.baseURL != "" && a.serviceKey != ""
}

// CreateUser provisions an auth identity bound to the email and returns its id.
func (a *AuthAdmin) CreateUser(ctx context.Context, email, password string) (string, error) {
	body := map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": true,
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := a.do(ctx, http.MethodPost, "/admin/users", body, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("%w: identity provider returned no user id", ErrProvisioning)
	}
	return out.ID, nil
}

// UpdatePassword rotates an existing identity's credential.
func (a *AuthAdmin) UpdatePassword(ctx context.Context, userID, password string) error {
	return a.do(ctx, http.MethodPut, "/admin/users/"+userID, map[string]any{"password": password}, nil)
}

// SetBan bans (duration like "876000h") or unbans (duration "none") a user.
func (a *AuthAdmin) SetBan(ctx context.Context, userID, duration string) error {
	return a.do(ctx, http.MethodPut, "/admin/users/"+userID, map[string]any{"ban_duration": duration}, nil)
}

func (a *AuthAdmin) do(ctx context.Context, method, path string, body any, out any) error {
	if !a.Configured() {
		return fmt.Errorf("%w: identity provider credentials are not set", ErrConfiguration)
	}
	b, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvisioning, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.serviceKey)
	req.Header.Set("apikey", a.serviceKey)

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvisioning, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: identity provider rejected the service key", ErrCredentialConfig)
	case resp.StatusCode >= 300:
		return fmt.Errorf("%w: identity provider returned %d: %s", ErrProvisioning, resp.StatusCode, string(respBody))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%w: malformed identity provider response", ErrProvisioning)
		}
	}
	return nil
}
