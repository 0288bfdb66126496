package calendar

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/progresssync/backend/domain"
	"github.com/progresssync/backend/repository"
)

// Event is a calendar entry to create on the user's primary calendar.
type Event struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
}

// EventClient is the REST boundary to the calendar service. The returned
// token is non-nil only when the credentials were renewed during the call.
type EventClient interface {
	CreateEvent(ctx context.Context, token *oauth2.Token, event Event) (map[string]interface{}, *oauth2.Token, error)
}

// UseCase drives the OAuth2 connect flow and event creation.
type UseCase struct {
	oauth  *oauth2.Config
	tokens repository.TokenRepository
	events EventClient
	logger *zap.Logger
}

func New(oauth *oauth2.Config, tokens repository.TokenRepository, events EventClient, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		oauth:  oauth,
		tokens: tokens,
		events: events,
		logger: logger,
	}
}

// AuthURL builds the consent-screen URL. The state parameter carries the user
// id so the callback can associate the code with an account.
func (uc *UseCase) AuthURL(userID string) string {
	return uc.oauth.AuthCodeURL(userID,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange swaps the authorization code for tokens and stores them.
func (uc *UseCase) Exchange(ctx context.Context, userID, code string) error {
	if userID == "" || code == "" {
		return domain.NewError(domain.ErrCodeInvalid, "state and code are required")
	}

	token, err := uc.oauth.Exchange(ctx, code)
	if err != nil {
		return domain.WrapError(domain.ErrCodeUpstream, "oauth code exchange failed", err)
	}

	if err := uc.tokens.Save(ctx, &domain.CalendarToken{
		UserID:       userID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}); err != nil {
		return err
	}

	uc.logger.Info("calendar connected", zap.String("user_id", userID))
	return nil
}

// CreateEvent inserts the event into the user's primary calendar.
func (uc *UseCase) CreateEvent(ctx context.Context, userID string, event Event) (map[string]interface{}, error) {
	if event.Title == "" || event.Start.IsZero() || event.End.IsZero() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "title, start and end are required")
	}

	stored, err := uc.tokens.Get(ctx, userID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.NewError(domain.ErrCodeInvalid, "calendar is not connected")
		}
		return nil, err
	}

	token := &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		TokenType:    stored.TokenType,
		Expiry:       stored.Expiry,
	}

	created, refreshed, err := uc.events.CreateEvent(ctx, token, event)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUpstream, "calendar event creation failed", err)
	}

	if refreshed != nil {
		uc.persistRefreshed(ctx, userID, stored, refreshed)
	}
	return created, nil
}

// persistRefreshed stores renewed credentials so the next request skips the
// refresh round-trip. Google omits the refresh token on renewal, so the stored
// one is kept.
func (uc *UseCase) persistRefreshed(ctx context.Context, userID string, stored *domain.CalendarToken, refreshed *oauth2.Token) {
	refreshToken := refreshed.RefreshToken
	if refreshToken == "" {
		refreshToken = stored.RefreshToken
	}
	if err := uc.tokens.Save(ctx, &domain.CalendarToken{
		UserID:       userID,
		AccessToken:  refreshed.AccessToken,
		RefreshToken: refreshToken,
		TokenType:    refreshed.TokenType,
		Expiry:       refreshed.Expiry,
		CreatedAt:    stored.CreatedAt,
	}); err != nil {
		uc.logger.Warn("failed to persist refreshed calendar token",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}
