package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fredseo/showhub-backend/internal/config"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrNotConnected means the user never connected the service (or it holds
	// no usable token).
	ErrNotConnected = errors.New("service not connected for this user")
	// ErrReauthRequired means the stored credentials cannot be refreshed and
	// the user has to run the consent flow again.
	ErrReauthRequired = errors.New("re-authentication required")
)

const defaultTokenTTL = time.Hour

// TokenProvider returns a currently valid bearer token for a (user, service)
// pair, refreshing through the provider token endpoint when the stored one
// has expired. All Google adapters share this one implementation.
type TokenProvider struct {
	db     *gorm.DB
	cfg    *config.Config
	client *http.Client
}

func NewTokenProvider(db *gorm.DB, cfg *config.Config) *TokenProvider {
	return &TokenProvider{
		db:     db,
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// AccessToken looks up the activation record for the named service and
// returns a valid access token, performing at most one refresh exchange.
func (p *TokenProvider) AccessToken(ctx context.Context, userID uuid.UUID, serviceName string) (string, error) {
	var service Service
	if err := p.db.First(&service, "name = ?", serviceName).Error; err != nil {
		return "", fmt.Errorf("service %q not seeded: %w", serviceName, err)
	}

	var activation UserService
	err := p.db.Where("user_id = ? AND service_id = ? AND is_active = ?", userID, service.ID, true).
		First(&activation).Error
	if err != nil {
		return "", ErrNotConnected
	}
	if activation.AccessToken == "" && activation.RefreshToken == "" {
		return "", ErrNotConnected
	}

	if activation.TokenExpiry != nil && activation.TokenExpiry.Before(time.Now()) {
		if activation.RefreshToken == "" {
			return "", ErrReauthRequired
		}
		return p.refresh(ctx, &activation)
	}

	return activation.AccessToken, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (p *TokenProvider) refresh(ctx context.Context, activation *UserService) (string, error) {
	form := url.Values{
		"client_id":     {p.cfg.GoogleClientID},
		"client_secret": {p.cfg.GoogleClientSecret},
		"refresh_token": {activation.RefreshToken},
		"grant_type":    {"refresh_token"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.GoogleTokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", ErrReauthRequired
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ErrReauthRequired
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil || tr.AccessToken == "" {
		return "", ErrReauthRequired
	}

	ttl := defaultTokenTTL
	if tr.ExpiresIn > 0 {
		ttl = time.Duration(tr.ExpiresIn) * time.Second
	}
	expiry := time.Now().Add(ttl)

	err = p.db.Model(activation).Updates(map[string]interface{}{
		"access_token": tr.AccessToken,
		"token_expiry": expiry,
	}).Error
	if err != nil {
		return "", fmt.Errorf("failed to persist refreshed token: %w", err)
	}

	activation.AccessToken = tr.AccessToken
	activation.TokenExpiry = &expiry
	return tr.AccessToken, nil
}
