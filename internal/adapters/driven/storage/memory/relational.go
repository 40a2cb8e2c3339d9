package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var (
	_ driven.UserStore = (*UserStore)(nil)
	_ driven.ChatStore = (*ChatStore)(nil)
)

// UserStore is an in-memory driven.UserStore.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewUserStore creates an empty user store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

// SaveUser stores or replaces user keyed by email.
func (s *UserStore) SaveUser(_ context.Context, user *domain.User) error {
	u := *user
	if u.Role == "" {
		u.Role = "user"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Email] = u
	return nil
}

// GetUser returns the user with email, or domain.ErrNotFound.
func (s *UserStore) GetUser(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

// ChatStore is an in-memory driven.ChatStore.
type ChatStore struct {
	mu     sync.RWMutex
	chats  map[int64]domain.Chat
	nextID int64
	now    func() time.Time
}

// NewChatStore creates an empty chat store.
func NewChatStore() *ChatStore {
	return &ChatStore{
		chats:  make(map[int64]domain.Chat),
		nextID: 1,
		now:    time.Now,
	}
}

// CreateChat stores chat under the next id.
func (s *ChatStore) CreateChat(_ context.Context, chat *domain.Chat) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat.ID = s.nextID
	s.nextID++
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = s.now().UTC()
	}
	stored := *chat
	stored.Messages = slices.Clone(chat.Messages)
	if stored.Messages == nil {
		stored.Messages = []string{}
	}
	s.chats[chat.ID] = stored
	return chat.ID, nil
}

// GetChat returns a copy of chat id, or domain.ErrNotFound.
func (s *ChatStore) GetChat(_ context.Context, id int64) (*domain.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chats[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c.Messages = slices.Clone(c.Messages)
	return &c, nil
}

// ListChats returns the chats of userEmail, newest first.
func (s *ChatStore) ListChats(_ context.Context, userEmail string) ([]domain.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Chat{}
	for _, c := range s.chats {
		if c.UserEmail != userEmail {
			continue
		}
		c.Messages = slices.Clone(c.Messages)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// AppendMessages appends to chat id and reports whether it exists.
func (s *ChatStore) AppendMessages(_ context.Context, id int64, messages []string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[id]
	if !ok {
		return false, nil
	}
	c.Messages = append(c.Messages, messages...)
	s.chats[id] = c
	return true, nil
}

// Ping always succeeds.
func (s *ChatStore) Ping(context.Context) error { return nil }
