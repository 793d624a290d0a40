package hub

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fredseo/showhub-backend/internal/config"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmailMessage is the narrow local shape of a Gmail message.
type EmailMessage struct {
	ID       string   `json:"id"`
	ThreadID string   `json:"thread_id"`
	From     string   `json:"from"`
	Subject  string   `json:"subject"`
	Snippet  string   `json:"snippet"`
	Date     string   `json:"date"`
	IsUnread bool     `json:"is_unread"`
	Labels   []string `json:"labels"`
}

// ConnectionStatus summarizes whether a user's Gmail connection is usable.
type ConnectionStatus struct {
	Connected   bool       `json:"connected"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	NeedsReauth bool       `json:"needs_reauth"`
	Message     string     `json:"message,omitempty"`
}

// GmailClient proxies the Gmail REST API through the shared token provider.
type GmailClient struct {
	db     *gorm.DB
	tokens *TokenProvider
	apiURL string
	client *http.Client
}

func NewGmailClient(db *gorm.DB, tokens *TokenProvider, cfg *config.Config) *GmailClient {
	return &GmailClient{
		db:     db,
		tokens: tokens,
		apiURL: cfg.GmailAPIURL,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *GmailClient) UnreadEmails(ctx context.Context, userID uuid.UUID, maxResults int) ([]EmailMessage, error) {
	return g.listMessages(ctx, userID, "is:unread", maxResults)
}

func (g *GmailClient) ImportantEmails(ctx context.Context, userID uuid.UUID, maxResults int) ([]EmailMessage, error) {
	return g.listMessages(ctx, userID, "is:important", maxResults)
}

func (g *GmailClient) RecentEmails(ctx context.Context, userID uuid.UUID, maxResults int) ([]EmailMessage, error) {
	return g.listMessages(ctx, userID, "in:inbox", maxResults)
}

// Status reports the connection state without triggering a refresh.
func (g *GmailClient) Status(userID uuid.UUID) (*ConnectionStatus, error) {
	var service Service
	if err := g.db.First(&service, "name = ?", ServiceEmail).Error; err != nil {
		return nil, err
	}

	var activation UserService
	err := g.db.Where("user_id = ? AND service_id = ?", userID, service.ID).First(&activation).Error
	if err != nil {
		return &ConnectionStatus{Connected: false, Message: "Gmail not connected"}, nil
	}

	expired := activation.TokenExpiry != nil && activation.TokenExpiry.Before(time.Now())
	return &ConnectionStatus{
		Connected:   activation.IsActive && !expired,
		ExpiresAt:   activation.TokenExpiry,
		NeedsReauth: expired,
	}, nil
}

type gmailListResponse struct {
	Messages []struct {
		ID       string `json:"id"`
		ThreadID string `json:"threadId"`
	} `json:"messages"`
}

type gmailMessageResponse struct {
	ID       string   `json:"id"`
	ThreadID string   `json:"threadId"`
	Snippet  string   `json:"snippet"`
	LabelIDs []string `json:"labelIds"`
	Payload  struct {
		Headers []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"headers"`
	} `json:"payload"`
}

func (g *GmailClient) listMessages(ctx context.Context, userID uuid.UUID, query string, maxResults int) ([]EmailMessage, error) {
	if maxResults <= 0 || maxResults > 50 {
		maxResults = 10
	}

	token, err := g.tokens.AccessToken(ctx, userID, ServiceEmail)
	if err != nil {
		return nil, err
	}

	var list gmailListResponse
	params := url.Values{"q": {query}, "maxResults": {strconv.Itoa(maxResults)}}
	if err := googleGet(ctx, g.client, g.apiURL+"/users/me/messages", params, token, &list); err != nil {
		return nil, err
	}
	if len(list.Messages) == 0 {
		return []EmailMessage{}, nil
	}

	// Metadata fetches run in batches of five, mirroring the dashboard's
	// request fan-out without hammering the API.
	const batchSize = 5
	messages := make([]EmailMessage, len(list.Messages))
	for start := 0; start < len(list.Messages); start += batchSize {
		end := start + batchSize
		if end > len(list.Messages) {
			end = len(list.Messages)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				messages[idx] = g.fetchMessage(ctx, token, list.Messages[idx].ID, list.Messages[idx].ThreadID)
			}(i)
		}
		wg.Wait()
	}
	return messages, nil
}

func (g *GmailClient) fetchMessage(ctx context.Context, token, id, threadID string) EmailMessage {
	var msg gmailMessageResponse
	params := url.Values{
		"format":          {"metadata"},
		"metadataHeaders": {"From"},
	}
	params.Add("metadataHeaders", "Subject")
	params.Add("metadataHeaders", "Date")

	if err := googleGet(ctx, g.client, g.apiURL+"/users/me/messages/"+id, params, token, &msg); err != nil {
		return EmailMessage{ID: id, ThreadID: threadID, From: "Error", Subject: "Failed to load"}
	}

	out := EmailMessage{
		ID:       msg.ID,
		ThreadID: msg.ThreadID,
		Snippet:  msg.Snippet,
		Labels:   msg.LabelIDs,
	}
	if out.Labels == nil {
		out.Labels = []string{}
	}
	for _, h := range msg.Payload.Headers {
		switch strings.ToLower(h.Name) {
		case "from":
			out.From = h.Value
		case "subject":
			out.Subject = h.Value
		case "date":
			out.Date = h.Value
		}
	}
	for _, l := range msg.LabelIDs {
		if l == "UNREAD" {
			out.IsUnread = true
			break
		}
	}
	return out
}
