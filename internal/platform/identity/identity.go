package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"referral-rewards-backend/internal/common/errors"
)

// Provider is the opaque email+password identity service consumed by account
// flows. Failures surface as generic external errors; the provider's internal
// messages are not parsed beyond an error string.
type Provider interface {
	Register(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context, token string) error
	SendPasswordReset(ctx context.Context, email string) error
}

// Session is an authenticated identity session.
type Session struct {
	UID       string    `json:"uid"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type httpProvider struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewHTTPProvider builds a Provider against a REST identity service.
func NewHTTPProvider(baseURL, apiKey string) Provider {
	return &httpProvider{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

func (p *httpProvider) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.NewExternalAPIError("identity", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.NewExternalAPIError("identity", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return errors.NewExternalAPIError("identity", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = resp.Status
		}
		return errors.NewExternalAPIError("identity", fmt.Errorf("%s: %s", path, apiErr.Error))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.NewExternalAPIError("identity", err)
		}
	}
	return nil
}

func (p *httpProvider) Register(ctx context.Context, email, password string) (string, error) {
	var out struct {
		UID string `json:"uid"`
	}
	err := p.post(ctx, "/accounts", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.UID == "" {
		return "", errors.NewExternalAPIError("identity", fmt.Errorf("register: empty uid"))
	}
	return out.UID, nil
}

func (p *httpProvider) Login(ctx context.Context, email, password string) (*Session, error) {
	var out Session
	err := p.post(ctx, "/sessions", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *httpProvider) Logout(ctx context.Context, token string) error {
	return p.post(ctx, "/sessions/revoke", map[string]string{"token": token}, nil)
}

func (p *httpProvider) SendPasswordReset(ctx context.Context, email string) error {
	return p.post(ctx, "/accounts/password-reset", map[string]string{"email": email}, nil)
}
