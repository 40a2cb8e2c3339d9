package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// UserStore persists user accounts.
type UserStore interface {
	// SaveUser inserts or replaces the user keyed by email.
	SaveUser(ctx context.Context, user *domain.User) error

	// GetUser returns the user with the given email, or domain.ErrNotFound.
	GetUser(ctx context.Context, email string) (*domain.User, error)
}

// ChatStore persists chat transcripts.
type ChatStore interface {
	// CreateChat inserts chat and returns its assigned id.
	CreateChat(ctx context.Context, chat *domain.Chat) (int64, error)

	// GetChat returns the chat, or domain.ErrNotFound.
	GetChat(ctx context.Context, id int64) (*domain.Chat, error)

	// ListChats returns the chats of userEmail, newest first.
	ListChats(ctx context.Context, userEmail string) ([]domain.Chat, error)

	// AppendMessages appends to the chat's messages. It reports false when
	// no chat has the id.
	AppendMessages(ctx context.Context, id int64, messages []string) (bool, error)

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
}
