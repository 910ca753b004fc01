package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"donationhub/internal/database"
	apperrors "donationhub/internal/errors"
	"donationhub/internal/models"
)

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, apperrors.NotFoundError{Kind: "session", ID: id}
	}
	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// SQLStore keeps sessions in the sessions table created by
// database.Migrate.
type SQLStore struct {
	db     *sql.DB
	dbType string
}

// NewSQLStore creates a store over db. dbType selects the placeholder style.
func NewSQLStore(db *sql.DB, dbType string) (*SQLStore, error) {
	dbType, err := database.Normalize(dbType)
	if err != nil {
		return nil, err
	}
	return &SQLStore{db: db, dbType: dbType}, nil
}

func (s *SQLStore) q(query string) string {
	return database.Rebind(s.dbType, query)
}

func (s *SQLStore) Save(ctx context.Context, sess *Session) error {
	// Delete and insert keeps the statement portable across the three
	// dialects' upsert syntaxes.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM sessions WHERE id = ?`), sess.ID); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err)
	}
	_, err = tx.ExecContext(ctx, s.q(`
		INSERT INTO sessions (id, token, user_id, name, role, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		sess.ID, sess.Token, sess.UserID, sess.Name, string(sess.Role),
		sess.ExpiresAt.Unix(), sess.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*Session, error) {
	var (
		sess             Session
		role             string
		expires, created int64
	)
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, token, user_id, name, role, expires_at, created_at
		FROM sessions WHERE id = ?`), id).
		Scan(&sess.ID, &sess.Token, &sess.UserID, &sess.Name, &role, &expires, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundError{Kind: "session", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err)
	}

	sess.Role = models.Role(role)
	sess.ExpiresAt = time.Unix(expires, 0)
	sess.CreatedAt = time.Unix(created, 0)
	return &sess, nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.q(`DELETE FROM sessions WHERE id = ?`), id); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err)
	}
	return nil
}

func (s *SQLStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM sessions WHERE expires_at <= ?`), now.Unix())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err)
	}
	return res.RowsAffected()
}
