package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Postgres driver
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// dialect captures the few statements that differ between backends.
type dialect struct {
	driver    string
	blobType  string
	setupHook string
}

var (
	postgresDialect = dialect{driver: "postgres", blobType: "BYTEA"}
	sqliteDialect   = dialect{driver: "sqlite", blobType: "BLOB", setupHook: "PRAGMA journal_mode=WAL"}
)

// SQLStore persists checkpoints in a relational database, one row per
// thread. Postgres is the production backend; SQLite serves local
// single-process use and tests.
type SQLStore struct {
	db      *sqlx.DB
	dialect dialect
	mu      sync.RWMutex
	closed  bool
}

// NewPostgresStore connects to Postgres and initializes the schema.
// Connection or setup failures are returned as *UnavailableError.
func NewPostgresStore(ctx context.Context, dsn string) (*SQLStore, error) {
	return openSQLStore(ctx, postgresDialect, dsn)
}

// NewSQLiteStore opens a SQLite database file and initializes the schema.
// The path should be a file path (e.g., "./checkpoints.db") or ":memory:" for testing.
func NewSQLiteStore(ctx context.Context, path string) (*SQLStore, error) {
	return openSQLStore(ctx, sqliteDialect, path)
}

func openSQLStore(ctx context.Context, d dialect, dsn string) (*SQLStore, error) {
	db, err := sqlx.Open(d.driver, dsn)
	if err != nil {
		return nil, &UnavailableError{Backend: d.driver, Op: "open", Err: err}
	}

	if d == sqliteDialect {
		// One connection keeps ":memory:" databases coherent and avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &UnavailableError{Backend: d.driver, Op: "ping", Err: err}
	}

	s := &SQLStore{db: db, dialect: d}
	if err := s.Setup(ctx); err != nil {
		db.Close()
		return nil, &UnavailableError{Backend: d.driver, Op: "setup", Err: err}
	}
	return s, nil
}

// Setup creates the checkpoint table if it does not exist.
// It is safe to call any number of times.
func (s *SQLStore) Setup(ctx context.Context) error {
	if s.dialect.setupHook != "" {
		if _, err := s.db.ExecContext(ctx, s.dialect.setupHook); err != nil {
			return fmt.Errorf("setup hook: %w", err)
		}
	}

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS conversation_checkpoints (
			thread_id TEXT PRIMARY KEY,
			sequence INTEGER NOT NULL,
			node_id TEXT NOT NULL,
			next_node TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			data %s NOT NULL
		)
	`, s.dialect.blobType)); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, threadID string) (*Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var data []byte
	err := s.db.GetContext(ctx, &data, s.db.Rebind(`
		SELECT data FROM conversation_checkpoints
		WHERE thread_id = ?
	`), threadID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	cp, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	return cp, nil
}

// Put implements Store.
func (s *SQLStore) Put(ctx context.Context, threadID string, cp *Checkpoint) (err error) {
	if cp == nil {
		return ErrNilCheckpoint
	}

	stored := cp.Clone()
	stored.ThreadID = threadID
	data, err := stored.Marshal()
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO conversation_checkpoints (thread_id, sequence, node_id, next_node, updated_at, data)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (thread_id) DO UPDATE SET
			sequence = excluded.sequence,
			node_id = excluded.node_id,
			next_node = excluded.next_node,
			updated_at = excluded.updated_at,
			data = excluded.data
	`), threadID, stored.Sequence, stored.NodeID, stored.NextNode,
		time.Now().UTC().Format(time.RFC3339Nano), data); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
