package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/progresssync/backend/domain"
)

type fakeTokenRepo struct {
	tokens map[string]*domain.CalendarToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*domain.CalendarToken)}
}

func (r *fakeTokenRepo) Get(_ context.Context, userID string) (*domain.CalendarToken, error) {
	if token, ok := r.tokens[userID]; ok {
		copied := *token
		return &copied, nil
	}
	return nil, domain.ErrTokenNotFound
}

func (r *fakeTokenRepo) Save(_ context.Context, token *domain.CalendarToken) error {
	copied := *token
	r.tokens[token.UserID] = &copied
	return nil
}

func (r *fakeTokenRepo) Delete(_ context.Context, userID string) error {
	delete(r.tokens, userID)
	return nil
}

type fakeEventClient struct {
	created   map[string]interface{}
	refreshed *oauth2.Token
	err       error
	seenToken *oauth2.Token
}

func (c *fakeEventClient) CreateEvent(_ context.Context, token *oauth2.Token, _ Event) (map[string]interface{}, *oauth2.Token, error) {
	c.seenToken = token
	if c.err != nil {
		return nil, nil, c.err
	}
	return c.created, c.refreshed, nil
}

func oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "https://example.com/callback",
		Scopes:       []string{"https://www.googleapis.com/auth/calendar"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://example.com/auth",
			TokenURL: "https://example.com/token",
		},
	}
}

func storedToken(userID string) *domain.CalendarToken {
	return &domain.CalendarToken{
		UserID:       userID,
		AccessToken:  "access-old",
		RefreshToken: "refresh-1",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}
}

func validEvent() Event {
	return Event{
		Title: "standup",
		Start: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestAuthURLCarriesUserState(t *testing.T) {
	uc := New(oauthConfig(), newFakeTokenRepo(), nil, nil)

	raw := uc.AuthURL("u1")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	query := parsed.Query()
	assert.Equal(t, "u1", query.Get("state"))
	assert.Equal(t, "offline", query.Get("access_type"))
	assert.Equal(t, "consent", query.Get("prompt"))
}

func TestExchangeStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "code-123", r.FormValue("code"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"at-1","token_type":"Bearer","refresh_token":"rt-1","expires_in":3600}`)
	}))
	defer srv.Close()

	cfg := oauthConfig()
	cfg.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}

	tokens := newFakeTokenRepo()
	uc := New(cfg, tokens, nil, nil)

	require.NoError(t, uc.Exchange(context.Background(), "u1", "code-123"))

	saved, err := tokens.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "at-1", saved.AccessToken)
	assert.Equal(t, "rt-1", saved.RefreshToken)
}

func TestExchangeRequiresStateAndCode(t *testing.T) {
	uc := New(oauthConfig(), newFakeTokenRepo(), nil, nil)

	err := uc.Exchange(context.Background(), "", "code-123")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	err = uc.Exchange(context.Background(), "u1", "")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestCreateEventValidation(t *testing.T) {
	uc := New(oauthConfig(), newFakeTokenRepo(), &fakeEventClient{}, nil)

	cases := []struct {
		name  string
		event Event
	}{
		{"missing title", Event{Start: time.Now(), End: time.Now().Add(time.Hour)}},
		{"missing start", Event{Title: "standup", End: time.Now()}},
		{"missing end", Event{Title: "standup", Start: time.Now()}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.CreateEvent(context.Background(), "u1", tc.event)
			require.Error(t, err)
			assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
		})
	}
}

func TestCreateEventNotConnected(t *testing.T) {
	uc := New(oauthConfig(), newFakeTokenRepo(), &fakeEventClient{}, nil)

	_, err := uc.CreateEvent(context.Background(), "u1", validEvent())
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestCreateEventUsesStoredToken(t *testing.T) {
	tokens := newFakeTokenRepo()
	require.NoError(t, tokens.Save(context.Background(), storedToken("u1")))

	events := &fakeEventClient{created: map[string]interface{}{"id": "evt-1"}}
	uc := New(oauthConfig(), tokens, events, nil)

	created, err := uc.CreateEvent(context.Background(), "u1", validEvent())
	require.NoError(t, err)
	assert.Equal(t, "evt-1", created["id"])

	require.NotNil(t, events.seenToken)
	assert.Equal(t, "access-old", events.seenToken.AccessToken)
}

func TestCreateEventPersistsRenewedToken(t *testing.T) {
	tokens := newFakeTokenRepo()
	require.NoError(t, tokens.Save(context.Background(), storedToken("u1")))

	renewed := &oauth2.Token{
		AccessToken: "access-new",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}
	events := &fakeEventClient{created: map[string]interface{}{"id": "evt-1"}, refreshed: renewed}
	uc := New(oauthConfig(), tokens, events, nil)

	_, err := uc.CreateEvent(context.Background(), "u1", validEvent())
	require.NoError(t, err)

	saved, err := tokens.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "access-new", saved.AccessToken)
	// Renewal responses omit the refresh token; the stored one must survive.
	assert.Equal(t, "refresh-1", saved.RefreshToken)
}

func TestCreateEventUpstreamFailure(t *testing.T) {
	tokens := newFakeTokenRepo()
	require.NoError(t, tokens.Save(context.Background(), storedToken("u1")))

	events := &fakeEventClient{err: errors.New("503 backend error")}
	uc := New(oauthConfig(), tokens, events, nil)

	_, err := uc.CreateEvent(context.Background(), "u1", validEvent())
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUpstream))
	assert.True(t, strings.Contains(err.Error(), "calendar event creation failed"))

	saved, getErr := tokens.Get(context.Background(), "u1")
	require.NoError(t, getErr)
	assert.Equal(t, "access-old", saved.AccessToken)
}
