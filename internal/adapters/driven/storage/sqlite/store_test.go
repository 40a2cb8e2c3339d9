package sqlite

import (
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_RunsMigrationsOnce(t *testing.T) {
	dir := t.TempDir()
	version := func(s *Store) int {
		var v int
		require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&v))
		return v
	}

	store, err := NewStore(dir)
	require.NoError(t, err)
	assert.FileExists(t, store.Path())
	assert.Equal(t, 1, version(store))
	require.NoError(t, store.UserStore().SaveUser(t.Context(), &domain.User{Email: "a@b.c", Username: "a", PasswordHash: "h"}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, 1, version(reopened))

	user, err := reopened.UserStore().GetUser(t.Context(), "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "a", user.Username)
}

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_chats.up.sql":   {Data: []byte("SELECT 1;")},
		"001_users.up.sql":   {Data: []byte("SELECT 1;")},
		"001_users.down.sql": {Data: []byte("SELECT 1;")},
		"README.md":          {Data: []byte("notes")},
		"x_bad.up.sql":       {Data: []byte("SELECT 1;")},
	}

	all, err := pendingMigrations(fsys, 0)
	require.NoError(t, err)
	assert.Equal(t, []migration{{1, "001_users.up.sql"}, {2, "002_chats.up.sql"}}, all)

	rest, err := pendingMigrations(fsys, 1)
	require.NoError(t, err)
	assert.Equal(t, []migration{{2, "002_chats.up.sql"}}, rest)
}

// ==================== User Store Tests ====================

func TestUserStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	users := store.UserStore()
	ctx := t.Context()

	require.NoError(t, users.SaveUser(ctx, &domain.User{
		Email:        "ana@example.com",
		Username:     "Ana",
		Role:         "admin",
		PasswordHash: "abc",
	}))

	got, err := users.GetUser(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Username)
	assert.Equal(t, "admin", got.Role)
	assert.Equal(t, "abc", got.PasswordHash)

	// Upsert replaces fields.
	require.NoError(t, users.SaveUser(ctx, &domain.User{Email: "ana@example.com", Username: "Ana B", PasswordHash: "def"}))
	got, err = users.GetUser(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana B", got.Username)
	assert.Equal(t, "user", got.Role, "empty role defaults to user")
	assert.Equal(t, "def", got.PasswordHash)

	_, err = users.GetUser(ctx, "missing@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== Chat Store Tests ====================

func TestChatStore_CreateAndGet(t *testing.T) {
	store := setupTestStore(t)
	chats := store.ChatStore()
	ctx := t.Context()

	chat := &domain.Chat{Title: "How do I", UserEmail: "ana@example.com", Messages: []string{"How do I reset?"}}
	id, err := chats.CreateChat(ctx, chat)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Equal(t, id, chat.ID)

	got, err := chats.GetChat(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "How do I", got.Title)
	assert.Equal(t, []string{"How do I reset?"}, got.Messages)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = chats.GetChat(ctx, id+100)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChatStore_ListNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	chats := store.ChatStore()
	ctx := t.Context()

	for _, title := range []string{"first", "second", "third"} {
		_, err := chats.CreateChat(ctx, &domain.Chat{Title: title, UserEmail: "ana@example.com", Messages: []string{title}})
		require.NoError(t, err)
	}
	_, err := chats.CreateChat(ctx, &domain.Chat{Title: "other", UserEmail: "bo@example.com"})
	require.NoError(t, err)

	list, err := chats.ListChats(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Title)
	assert.Equal(t, "first", list[2].Title)

	empty, err := chats.ListChats(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestChatStore_AppendMessages(t *testing.T) {
	store := setupTestStore(t)
	chats := store.ChatStore()
	ctx := t.Context()

	id, err := chats.CreateChat(ctx, &domain.Chat{Title: "q", UserEmail: "a@b.c", Messages: []string{"q"}})
	require.NoError(t, err)

	updated, err := chats.AppendMessages(ctx, id, []string{"answer", "follow-up"})
	require.NoError(t, err)
	assert.True(t, updated)

	got, err := chats.GetChat(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"q", "answer", "follow-up"}, got.Messages)

	updated, err = chats.AppendMessages(ctx, id+1, []string{"lost"})
	require.NoError(t, err)
	assert.False(t, updated, "missing chat is a no-op")
}

func TestChatStore_ConcurrentAppends(t *testing.T) {
	store := setupTestStore(t)
	chats := store.ChatStore()
	ctx := t.Context()

	id, err := chats.CreateChat(ctx, &domain.Chat{Title: "q", UserEmail: "a@b.c"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := chats.AppendMessages(ctx, id, []string{"m"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := chats.GetChat(ctx, id)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 8)
}

func TestChatStore_Ping(t *testing.T) {
	store := setupTestStore(t)
	assert.NoError(t, store.ChatStore().Ping(t.Context()))
}
