package hub

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fredseo/showhub-backend/internal/config"
	"github.com/google/uuid"
)

// CalendarEvent is the narrow local shape of a Google Calendar event.
type CalendarEvent struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
	HTMLLink    string `json:"html_link,omitempty"`
}

// CalendarClient proxies the primary Google Calendar through the shared
// token provider.
type CalendarClient struct {
	tokens *TokenProvider
	apiURL string
	client *http.Client
}

func NewCalendarClient(tokens *TokenProvider, cfg *config.Config) *CalendarClient {
	return &CalendarClient{
		tokens: tokens,
		apiURL: cfg.CalendarAPIURL,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type calendarListResponse struct {
	Items []struct {
		ID          string `json:"id"`
		Summary     string `json:"summary"`
		Description string `json:"description"`
		Location    string `json:"location"`
		HTMLLink    string `json:"htmlLink"`
		Start       struct {
			DateTime string `json:"dateTime"`
			Date     string `json:"date"`
		} `json:"start"`
		End struct {
			DateTime string `json:"dateTime"`
			Date     string `json:"date"`
		} `json:"end"`
	} `json:"items"`
}

func (c *CalendarClient) UpcomingEvents(ctx context.Context, userID uuid.UUID, maxResults int) ([]CalendarEvent, error) {
	if maxResults <= 0 {
		maxResults = 10
	}
	params := url.Values{
		"timeMin":      {time.Now().UTC().Format(time.RFC3339)},
		"maxResults":   {strconv.Itoa(maxResults)},
		"singleEvents": {"true"},
		"orderBy":      {"startTime"},
	}
	return c.listEvents(ctx, userID, params)
}

func (c *CalendarClient) TodayEvents(ctx context.Context, userID uuid.UUID) ([]CalendarEvent, error) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.Add(24*time.Hour - time.Nanosecond)

	params := url.Values{
		"timeMin":      {startOfDay.Format(time.RFC3339)},
		"timeMax":      {endOfDay.Format(time.RFC3339)},
		"singleEvents": {"true"},
		"orderBy":      {"startTime"},
	}
	return c.listEvents(ctx, userID, params)
}

// Birthdays filters upcoming events whose summary or description looks like a
// birthday, over the next daysRange days.
func (c *CalendarClient) Birthdays(ctx context.Context, userID uuid.UUID, daysRange int) ([]CalendarEvent, error) {
	if daysRange <= 0 {
		daysRange = 7
	}
	now := time.Now()
	params := url.Values{
		"timeMin":      {now.UTC().Format(time.RFC3339)},
		"timeMax":      {now.AddDate(0, 0, daysRange).UTC().Format(time.RFC3339)},
		"singleEvents": {"true"},
		"orderBy":      {"startTime"},
	}

	events, err := c.listEvents(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	birthdays := make([]CalendarEvent, 0)
	for _, ev := range events {
		summary := strings.ToLower(ev.Summary)
		description := strings.ToLower(ev.Description)
		if strings.Contains(summary, "birthday") ||
			strings.Contains(summary, "anniv") ||
			strings.Contains(description, "birthday") {
			birthdays = append(birthdays, ev)
		}
	}
	return birthdays, nil
}

func (c *CalendarClient) listEvents(ctx context.Context, userID uuid.UUID, params url.Values) ([]CalendarEvent, error) {
	token, err := c.tokens.AccessToken(ctx, userID, ServiceCalendar)
	if err != nil {
		return nil, err
	}

	var list calendarListResponse
	endpoint := c.apiURL + "/calendars/primary/events"
	if err := googleGet(ctx, c.client, endpoint, params, token, &list); err != nil {
		return nil, err
	}

	events := make([]CalendarEvent, 0, len(list.Items))
	for _, item := range list.Items {
		start := item.Start.DateTime
		if start == "" {
			start = item.Start.Date
		}
		end := item.End.DateTime
		if end == "" {
			end = item.End.Date
		}
		events = append(events, CalendarEvent{
			ID:          item.ID,
			Summary:     item.Summary,
			Description: item.Description,
			Location:    item.Location,
			Start:       start,
			End:         end,
			HTMLLink:    item.HTMLLink,
		})
	}
	return events, nil
}
