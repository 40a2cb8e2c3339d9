package sqlite

import (
	"cmp"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// DatabaseFile is the file name of the database inside the data directory.
const DatabaseFile = "docqa.db"

// dsnPragmas put the database in WAL mode so that readers proceed while a
// chat append is in flight.
const dsnPragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

// Store owns the SQLite connection behind UserStore and ChatStore.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore opens <dataDir>/docqa.db, creating the directory when needed, and
// applies pending migrations. An empty dataDir means ~/.docqa/data.
func NewStore(dataDir string) (*Store, error) {
	dir, err := resolveDataDir(dataDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, DatabaseFile)
	db, err := sql.Open("sqlite", path+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	s := &Store{db: db, path: path, now: time.Now}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return s, nil
}

func resolveDataDir(dir string) (string, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".docqa", "data")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dir, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Path is the database file.
func (s *Store) Path() string { return s.path }

func (s *Store) UserStore() driven.UserStore { return &userStore{store: s} }

func (s *Store) ChatStore() driven.ChatStore { return &chatStore{store: s} }

// migration is one NNN_name.up.sql file.
type migration struct {
	version int
	name    string
}

// pendingMigrations lists the up migrations in fsys newer than current,
// oldest first.
func pendingMigrations(fsys fs.FS, current int) ([]migration, error) {
	names, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, err
	}
	var pending []migration
	for _, name := range names {
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		version, err := strconv.Atoi(prefix)
		if err != nil || version <= current {
			continue
		}
		pending = append(pending, migration{version: version, name: name})
	}
	slices.SortFunc(pending, func(a, b migration) int { return cmp.Compare(a.version, b.version) })
	return pending, nil
}

// migrate applies pending migrations, each in its own transaction. The
// schema version lives in PRAGMA user_version.
func (s *Store) migrate(fsys fs.FS) error {
	var current int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	pending, err := pendingMigrations(fsys, current)
	if err != nil {
		return err
	}
	for _, m := range pending {
		if err := s.apply(fsys, m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) apply(fsys fs.FS, m migration) error {
	script, err := fs.ReadFile(fsys, m.name)
	if err != nil {
		return fmt.Errorf("read %s: %w", m.name, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(string(script)); err != nil {
		return fmt.Errorf("apply %s: %w", m.name, err)
	}
	// PRAGMA does not take bound parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
		return fmt.Errorf("record %s: %w", m.name, err)
	}
	return tx.Commit()
}

// ==================== User Store ====================

// userStore implements driven.UserStore.
type userStore struct {
	store *Store
}

var _ driven.UserStore = (*userStore)(nil)

// SaveUser stores or replaces a user keyed by email.
func (s *userStore) SaveUser(ctx context.Context, user *domain.User) error {
	role := user.Role
	if role == "" {
		role = "user"
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO users (email, username, role, password_hash)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			username = excluded.username,
			role = excluded.role,
			password_hash = excluded.password_hash
	`, user.Email, user.Username, role, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by email.
func (s *userStore) GetUser(ctx context.Context, email string) (*domain.User, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT email, username, role, password_hash FROM users WHERE email = ?
	`, email)

	var u domain.User
	if err := row.Scan(&u.Email, &u.Username, &u.Role, &u.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &u, nil
}

// ==================== Chat Store ====================

// chatStore implements driven.ChatStore.
type chatStore struct {
	store *Store
}

var _ driven.ChatStore = (*chatStore)(nil)

// CreateChat inserts a chat and returns the generated id.
func (s *chatStore) CreateChat(ctx context.Context, chat *domain.Chat) (int64, error) {
	messagesJSON, err := marshalMessages(chat.Messages)
	if err != nil {
		return 0, err
	}
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = s.store.now().UTC()
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO chats (title, user_email, messages, created_at)
		VALUES (?, ?, ?, ?)
	`, chat.Title, chat.UserEmail, messagesJSON, chat.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("inserting chat: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading chat id: %w", err)
	}
	chat.ID = id
	return id, nil
}

// GetChat retrieves a chat by id.
func (s *chatStore) GetChat(ctx context.Context, id int64) (*domain.Chat, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT chat_id, title, user_email, messages, created_at FROM chats WHERE chat_id = ?
	`, id)
	chat, err := scanChat(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return chat, nil
}

// ListChats returns the chats of a user, newest first.
func (s *chatStore) ListChats(ctx context.Context, userEmail string) ([]domain.Chat, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT chat_id, title, user_email, messages, created_at
		FROM chats WHERE user_email = ?
		ORDER BY created_at DESC, chat_id DESC
	`, userEmail)
	if err != nil {
		return nil, fmt.Errorf("querying chats: %w", err)
	}
	defer rows.Close()

	var chats []domain.Chat //nolint:prealloc // size unknown from query
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, *chat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chats: %w", err)
	}
	return chats, nil
}

// AppendMessages appends messages to a chat inside one transaction.
// Each message is appended with json_insert so the first statement takes the
// write lock and concurrent appends serialise on it.
func (s *chatStore) AppendMessages(ctx context.Context, id int64, messages []string) (bool, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning append: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	// Touch the row first so a missing chat is detected even with no messages.
	res, err := tx.ExecContext(ctx, "UPDATE chats SET messages = messages WHERE chat_id = ?", id)
	if err != nil {
		return false, fmt.Errorf("locking chat: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("locking chat: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	for _, msg := range messages {
		if _, err := tx.ExecContext(ctx,
			"UPDATE chats SET messages = json_insert(messages, '$[#]', ?) WHERE chat_id = ?", msg, id); err != nil {
			return false, fmt.Errorf("appending chat message: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing append: %w", err)
	}
	return true, nil
}

// Ping runs a trivial query to verify the connection.
func (s *chatStore) Ping(ctx context.Context) error {
	var one int
	if err := s.store.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("sqlite ping: %w", err)
	}
	if one != 1 {
		return fmt.Errorf("sqlite ping: unexpected result %d", one)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanChat(row rowScanner) (*domain.Chat, error) {
	var chat domain.Chat
	var messagesJSON string
	if err := row.Scan(&chat.ID, &chat.Title, &chat.UserEmail, &messagesJSON, &chat.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning chat: %w", err)
	}
	messages, err := unmarshalMessages(messagesJSON)
	if err != nil {
		return nil, err
	}
	chat.Messages = messages
	return &chat, nil
}

func marshalMessages(messages []string) (string, error) {
	if messages == nil {
		messages = []string{}
	}
	data, err := json.Marshal(messages)
	if err != nil {
		return "", fmt.Errorf("marshalling messages: %w", err)
	}
	return string(data), nil
}

func unmarshalMessages(data string) ([]string, error) {
	messages := []string{}
	if data == "" {
		return messages, nil
	}
	if err := json.Unmarshal([]byte(data), &messages); err != nil {
		return nil, fmt.Errorf("unmarshalling messages: %w", err)
	}
	return messages, nil
}
