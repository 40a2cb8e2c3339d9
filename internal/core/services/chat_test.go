package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

type failingChats struct{ err error }

func (f failingChats) CreateChat(context.Context, *domain.Chat) (int64, error) { return 0, f.err }
func (f failingChats) GetChat(context.Context, int64) (*domain.Chat, error)    { return nil, f.err }
func (f failingChats) ListChats(context.Context, string) ([]domain.Chat, error) {
	return nil, f.err
}
func (f failingChats) AppendMessages(context.Context, int64, []string) (bool, error) {
	return false, f.err
}
func (f failingChats) Ping(context.Context) error { return f.err }

func TestChatService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewChatService(memory.NewChatStore())

	question := strings.Repeat("q", 60)
	id, err := svc.Create(ctx, "a@b.c", question)
	require.NoError(t, err)

	chats, err := svc.Recent(ctx, "a@b.c")
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, strings.Repeat("q", domain.ChatTitleLength), chats[0].Title)

	ok, err := svc.Append(ctx, id, []string{"answer", "follow-up"})
	require.NoError(t, err)
	assert.True(t, ok)

	history, err := svc.History(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{question, "answer", "follow-up"}, history)
}

func TestChatService_EdgeCases(t *testing.T) {
	ctx := context.Background()
	svc := NewChatService(memory.NewChatStore())

	_, err := svc.Create(ctx, "a@b.c", " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	chats, err := svc.Recent(ctx, "nobody@b.c")
	require.NoError(t, err)
	assert.NotNil(t, chats)
	assert.Empty(t, chats)

	_, err = svc.History(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ok, err := svc.Append(ctx, 42, []string{"x"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChatService_StoreErrors(t *testing.T) {
	ctx := context.Background()
	svc := NewChatService(failingChats{err: errors.New("locked")})

	_, err := svc.Create(ctx, "a@b.c", "q")
	assert.ErrorIs(t, err, domain.ErrStore)
	_, err = svc.Recent(ctx, "a@b.c")
	assert.ErrorIs(t, err, domain.ErrStore)
	_, err = svc.History(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrStore)
	_, err = svc.Append(ctx, 1, nil)
	assert.ErrorIs(t, err, domain.ErrStore)
}
