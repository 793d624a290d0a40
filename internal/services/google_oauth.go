package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fredseo/showhub-backend/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	StateLogin   = "login"
	StateConnect = "connect"

	userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

var ErrInvalidState = errors.New("invalid or expired oauth state")

// Scope sets per connectable service, keyed by the service-directory name.
var connectScopes = map[string][]string{
	"email":        {"https://www.googleapis.com/auth/gmail.readonly"},
	"calendar":     {"https://www.googleapis.com/auth/calendar.readonly"},
	"google_drive": {"https://www.googleapis.com/auth/drive.metadata.readonly"},
}

// GoogleProfile is the slice of the userinfo response the identity service needs.
type GoogleProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleOAuth drives the authorization-code flows: identity sign-in and
// per-service connections for the hub app.
type GoogleOAuth struct {
	cfg    *config.Config
	client *http.Client
}

func NewGoogleOAuth(cfg *config.Config) *GoogleOAuth {
	return &GoogleOAuth{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *GoogleOAuth) loginConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     g.cfg.GoogleClientID,
		ClientSecret: g.cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  g.cfg.OAuthRedirectBase + "/api/auth/google/callback",
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
	}
}

// ConnectConfig returns the oauth2 config for connecting one hub service.
func (g *GoogleOAuth) ConnectConfig(serviceName string) (*oauth2.Config, error) {
	scopes, ok := connectScopes[serviceName]
	if !ok {
		return nil, fmt.Errorf("service %q is not connectable via google oauth", serviceName)
	}
	return &oauth2.Config{
		ClientID:     g.cfg.GoogleClientID,
		ClientSecret: g.cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  g.cfg.OAuthRedirectBase + "/api/hub/connect/" + serviceName + "/callback",
		Scopes:       scopes,
	}, nil
}

func (g *GoogleOAuth) LoginURL(state string) string {
	return g.loginConfig().AuthCodeURL(state)
}

func (g *GoogleOAuth) ConnectURL(serviceName, state string) (string, error) {
	conf, err := g.ConnectConfig(serviceName)
	if err != nil {
		return "", err
	}
	// offline access + forced consent so Google returns a refresh token
	return conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

// ExchangeLogin swaps the sign-in code and fetches the Google profile.
func (g *GoogleOAuth) ExchangeLogin(ctx context.Context, code string) (*GoogleProfile, error) {
	token, err := g.loginConfig().Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userinfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	return &profile, nil
}

// ExchangeConnect swaps a per-service connection code for a token pair.
func (g *GoogleOAuth) ExchangeConnect(ctx context.Context, serviceName, code string) (*oauth2.Token, error) {
	conf, err := g.ConnectConfig(serviceName)
	if err != nil {
		return nil, err
	}
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}
	return token, nil
}

// SignState packs purpose, caller and target service into a short-lived JWT
// carried through the OAuth redirect round-trip.
func (g *GoogleOAuth) SignState(purpose string, userID uuid.UUID, serviceName string) (string, error) {
	claims := jwt.MapClaims{
		"purpose": purpose,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(g.cfg.OAuthStateExpiry).Unix(),
	}
	if userID != uuid.Nil {
		claims["sub"] = userID.String()
	}
	if serviceName != "" {
		claims["service"] = serviceName
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(g.cfg.JWTSecret))
}

// VerifyState validates a state token and returns the caller and service it names.
func (g *GoogleOAuth) VerifyState(state, purpose string) (uuid.UUID, string, error) {
	token, err := jwt.Parse(state, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(g.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, "", ErrInvalidState
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", ErrInvalidState
	}
	if p, _ := claims["purpose"].(string); p != purpose {
		return uuid.Nil, "", ErrInvalidState
	}

	var userID uuid.UUID
	if sub, ok := claims["sub"].(string); ok {
		if userID, err = uuid.Parse(sub); err != nil {
			return uuid.Nil, "", ErrInvalidState
		}
	}
	serviceName, _ := claims["service"].(string)
	return userID, serviceName, nil
}
