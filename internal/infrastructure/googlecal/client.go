package googlecal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	calendarUC "github.com/progresssync/backend/usecase/calendar"
)

const defaultEventsURL = "https://www.googleapis.com/calendar/v3/calendars/primary/events"

// OAuthConfig builds the Google Calendar OAuth2 configuration.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"https://www.googleapis.com/auth/calendar"},
		Endpoint:     google.Endpoint,
	}
}

// Client creates events through the Calendar REST API. Requests ride the
// oauth2 transport so access tokens refresh transparently.
type Client struct {
	oauth     *oauth2.Config
	eventsURL string
	timeout   time.Duration
}

func NewClient(oauth *oauth2.Config, eventsURL string, timeout time.Duration) *Client {
	if eventsURL == "" {
		eventsURL = defaultEventsURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		oauth:     oauth,
		eventsURL: eventsURL,
		timeout:   timeout,
	}
}

type eventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

type eventBody struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       eventTime `json:"start"`
	End         eventTime `json:"end"`
}

func (c *Client) CreateEvent(ctx context.Context, token *oauth2.Token, event calendarUC.Event) (map[string]interface{}, *oauth2.Token, error) {
	payload, err := json.Marshal(eventBody{
		Summary:     event.Title,
		Description: event.Description,
		Start:       eventTime{DateTime: event.Start.Format(time.RFC3339), TimeZone: event.TimeZone},
		End:         eventTime{DateTime: event.End.Format(time.RFC3339), TimeZone: event.TimeZone},
	})
	if err != nil {
		return nil, nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.eventsURL, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	source := c.oauth.TokenSource(ctx, token)
	resp, err := oauth2.NewClient(ctx, source).Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("calendar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("calendar responded %d", resp.StatusCode)
	}

	var created map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, nil, fmt.Errorf("decode calendar response: %w", err)
	}
	return created, renewedToken(source, token), nil
}

// renewedToken reports the token now held by the source when it differs from
// the one the call started with.
func renewedToken(source oauth2.TokenSource, original *oauth2.Token) *oauth2.Token {
	latest, err := source.Token()
	if err != nil || latest.AccessToken == original.AccessToken {
		return nil
	}
	return latest
}

var _ calendarUC.EventClient = (*Client)(nil)
