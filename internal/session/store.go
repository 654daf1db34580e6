package session

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/petresgate/feedcore/domain"
)

const (
	keyToken  = "token"
	keyUserID = "userId"
)

// Store is the Go stand-in for the phone's key-value storage: the auth
// flow writes token and userId, everything else reads them. Reads hit
// the database every time so a logout in another part of the app is
// picked up immediately.
type Store struct {
	db *sql.DB
}

var _ domain.SessionStore = (*Store)(nil)

// Open opens (and if needed creates) the session database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create session schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Token returns the stored auth token, empty when logged out.
func (s *Store) Token() (string, error) {
	return s.get(keyToken)
}

// UserID returns the logged-in user's id, ErrNoUser when none stored.
func (s *Store) UserID() (int64, error) {
	v, err := s.get(keyUserID)
	if err != nil {
		return 0, err
	}
	if v == "" {
		return 0, domain.ErrNoUser
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt userId in session storage: %w", err)
	}
	return id, nil
}

// SetToken stores the auth token. Called by the login flow.
func (s *Store) SetToken(token string) error {
	return s.set(keyToken, token)
}

// SetUserID stores the logged-in user's id. Called by the login flow.
func (s *Store) SetUserID(id int64) error {
	return s.set(keyUserID, strconv.FormatInt(id, 10))
}

// Clear wipes the session, i.e. logout.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM kv`)
	return err
}

func (s *Store) get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}
