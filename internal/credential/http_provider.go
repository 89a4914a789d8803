package credential

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/replyhub/identity-api/internal/apperr"
	"github.com/rs/zerolog"
)

// HTTPProvider talks to the credential provider's REST API.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

func NewHTTPProvider(baseURL string, timeout time.Duration, logger zerolog.Logger) *HTTPProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "credential_provider").Logger(),
	}
}

func (p *HTTPProvider) CreateCredential(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", apperr.Upstream("create credential", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/credentials", bytes.NewReader(body))
	if err != nil {
		return "", apperr.Upstream("create credential", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", apperr.Upstream("create credential", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return "", ErrEmailTaken
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		p.logger.Error().Int("status", resp.StatusCode).Msg("credential provider rejected create")
		return "", apperr.Upstream("create credential", fmt.Errorf("provider returned status %d", resp.StatusCode))
	}

	var payload struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", apperr.Upstream("create credential", err)
	}
	if payload.ID == "" {
		return "", apperr.Upstream("create credential", fmt.Errorf("provider returned empty credential id"))
	}
	return payload.ID, nil
}

func (p *HTTPProvider) GetCredential(ctx context.Context, credentialID string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/credentials/"+credentialID, nil)
	if err != nil {
		return Profile{}, apperr.Upstream("get credential", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Profile{}, apperr.Upstream("get credential", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Profile{}, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		p.logger.Error().Int("status", resp.StatusCode).Msg("credential provider rejected lookup")
		return Profile{}, apperr.Upstream("get credential", fmt.Errorf("provider returned status %d", resp.StatusCode))
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return Profile{}, apperr.Upstream("get credential", err)
	}
	return profile, nil
}
