package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	authsvc "homestay/internal/app/services/auth"
)

const userinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// GoogleClient implements the code-exchange flow against Google's OAuth
// endpoints and fetches the userinfo profile with the resulting token.
type GoogleClient struct {
	config oauth2.Config
	http   *http.Client
}

func NewGoogleClient(cfg GoogleConfig) (*GoogleClient, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RedirectURL == "" {
		return nil, errors.New("oauth: google client id, secret and redirect url are required")
	}
	return &GoogleClient{
		config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     googleEndpoint,
		},
		http: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (g *GoogleClient) AuthURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (g *GoogleClient) ExchangeCode(ctx context.Context, code string) (authsvc.GoogleProfile, error) {
	if code == "" {
		return authsvc.GoogleProfile{}, errors.New("oauth: authorization code is required")
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.http)
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return authsvc.GoogleProfile{}, fmt.Errorf("oauth: code exchange failed: %w", err)
	}

	client := g.config.Client(ctx, token)
	resp, err := client.Get(userinfoEndpoint)
	if err != nil {
		return authsvc.GoogleProfile{}, fmt.Errorf("oauth: userinfo request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return authsvc.GoogleProfile{}, fmt.Errorf("oauth: userinfo returned status %d", resp.StatusCode)
	}

	var payload struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return authsvc.GoogleProfile{}, fmt.Errorf("oauth: userinfo decode failed: %w", err)
	}
	return authsvc.GoogleProfile{ID: payload.ID, Email: payload.Email, Name: payload.Name}, nil
}

var _ authsvc.GoogleVerifier = (*GoogleClient)(nil)
