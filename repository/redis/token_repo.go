package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/progresssync/backend/domain"
	"github.com/progresssync/backend/repository"
)

type tokenRepository struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewTokenRepository creates a Redis-backed store for calendar OAuth tokens.
// A zero ttl keeps tokens until they are explicitly deleted.
func NewTokenRepository(client *redislib.Client, ttl time.Duration) repository.TokenRepository {
	return &tokenRepository{
		client: client,
		prefix: "caltoken:",
		ttl:    ttl,
	}
}

func (r *tokenRepository) Get(ctx context.Context, userID string) (*domain.CalendarToken, error) {
	result, err := r.client.Get(ctx, r.key(userID)).Result()
	if err != nil {
		if err == redislib.Nil {
			return nil, domain.ErrTokenNotFound
		}
		return nil, err
	}

	var token domain.CalendarToken
	if err := json.Unmarshal([]byte(result), &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) Save(ctx context.Context, token *domain.CalendarToken) error {
	if token == nil || token.UserID == "" || token.AccessToken == "" {
		return domain.ErrInvalidPayload
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(token.UserID), payload, r.ttl).Err()
}

func (r *tokenRepository) Delete(ctx context.Context, userID string) error {
	return r.client.Del(ctx, r.key(userID)).Err()
}

func (r *tokenRepository) key(userID string) string {
	return fmt.Sprintf("%s%s", r.prefix, userID)
}
