package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/progresssync/backend/domain"
	"github.com/progresssync/backend/repository"
)

const minPasswordLength = 6

// Config carries the token-signing parameters.
type Config struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

type UseCase struct {
	users  repository.UserRepository
	cfg    Config
	logger *zap.Logger
}

func New(users repository.UserRepository, cfg Config, logger *zap.Logger) *UseCase {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		cfg:    cfg,
		logger: logger,
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (uc *UseCase) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || name == "" || len(password) < minPasswordLength {
		return nil, domain.NewError(domain.ErrCodeInvalid, "email, name and a password of at least 6 characters are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	uc.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login verifies the credentials and issues a signed bearer token. Unknown
// email and wrong password are indistinguishable to the caller.
func (uc *UseCase) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", domain.ErrInvalidCredentials
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	return uc.issueToken(user)
}

func (uc *UseCase) issueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"iss":     uc.cfg.Issuer,
		"iat":     now.Unix(),
		"exp":     now.Add(uc.cfg.TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(uc.cfg.Secret))
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInternal, "token signing failed", err)
	}
	return signed, nil
}
