package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

// AuthService checks credentials against stored SHA-256 password hashes.
type AuthService struct {
	users driven.UserStore
}

// NewAuthService creates an auth service.
func NewAuthService(users driven.UserStore) *AuthService {
	return &AuthService{users: users}
}

// HashPassword returns the hex SHA-256 digest of password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Login returns the user when the password matches. Unknown emails and wrong
// passwords both fail with domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, wrapStage(domain.ErrStore, err)
	}

	hash := HashPassword(password)
	if subtle.ConstantTimeCompare([]byte(hash), []byte(strings.ToLower(user.PasswordHash))) != 1 {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// Register stores user with the hash of password, replacing any existing account.
func (s *AuthService) Register(ctx context.Context, user domain.User, password string) error {
	if strings.TrimSpace(user.Email) == "" {
		return fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}

	user.PasswordHash = HashPassword(password)
	if err := s.users.SaveUser(ctx, &user); err != nil {
		return wrapStage(domain.ErrStore, err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
