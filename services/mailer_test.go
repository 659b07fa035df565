package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResendMailerSend(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer rk", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "email-1"})
	}))
	defer srv.Close()

	m := &ResendMailer{apiKey: "rk", endpoint: srv.URL, http: srv.Client()}
	err := m.Send(context.Background(), Mail{From: "a@b.test", To: "c@d.test", Subject: "hi", HTML: "<p>x</p>", Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.test", got["from"])
	assert.Equal(t, []any{"c@d.test"}, got["to"])
}

func TestResendMailerDomainRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"The example.test domain is not verified"}`))
	}))
	defer srv.Close()

	m := &ResendMailer{apiKey: "rk", endpoint: srv.URL, http: srv.Client()}
	err := m.Send(context.Background(), Mail{To: "c@d.test"})
	require.ErrorIs(t, err, ErrDomainNotVerified)
}

func TestResendMailerOtherRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	m := &ResendMailer{apiKey: "rk", endpoint: srv.URL, http: srv.Client()}
	err := m.Send(context.Background(), Mail{To: "c@d.test"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDomainNotVerified)
}

func TestResendMailerRequiresKey(t *testing.T) {
	m := &ResendMailer{http: http.DefaultClient}
	assert.Error(t, m.Send(context.Background(), Mail{To: "c@d.test"}))
}
