package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ChatService manages chat transcripts.
type ChatService interface {
	// Create starts a chat with question as its first message and returns its id.
	Create(ctx context.Context, userEmail, question string) (int64, error)

	// Recent returns the chats of userEmail, newest first.
	Recent(ctx context.Context, userEmail string) ([]domain.Chat, error)

	// History returns the messages of a chat, or domain.ErrNotFound.
	History(ctx context.Context, id int64) ([]string, error)

	// Append adds messages to a chat. It reports false when the chat does not exist.
	Append(ctx context.Context, id int64, messages []string) (bool, error)
}

// AuthService checks and registers credentials.
type AuthService interface {
	// Login returns the user when email and password match,
	// or domain.ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*domain.User, error)

	// Register creates or replaces a user with the given password.
	Register(ctx context.Context, user domain.User, password string) error
}

// HealthService reports the health of backing services.
type HealthService interface {
	Check(ctx context.Context) domain.HealthReport
}
