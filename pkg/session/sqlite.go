package session

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/projectforge/aipg/pkg/errors"
)

// SQLiteArtifactStore persists artifacts in a SQLite database so completed
// archives survive a restart.
type SQLiteArtifactStore struct {
	db *sql.DB
}

// NewSQLiteArtifactStore opens (and if needed initializes) the database at
// the given path.
func NewSQLiteArtifactStore(path string) (*SQLiteArtifactStore, error) {
	if path == "" {
		path = "aipg_artifacts.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "failed to open artifact database")
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteArtifactStore{db: db}
	if err := store.initDB(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.StorageFailed, "failed to initialize artifact schema")
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.StorageFailed, "failed to enable WAL mode")
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.StorageFailed, "failed to set synchronous pragma")
	}

	return store, nil
}

func (s *SQLiteArtifactStore) initDB() error {
	query := `
	CREATE TABLE IF NOT EXISTS artifacts (
		session_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		data BLOB NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (session_id, kind)
	);

	CREATE INDEX IF NOT EXISTS idx_artifacts_created_at ON artifacts(created_at);
	`
	_, err := s.db.Exec(query)
	return err
}

func (s *SQLiteArtifactStore) Save(ctx context.Context, sessionID, kind string, data []byte) error {
	query := `
	INSERT INTO artifacts (session_id, kind, data, created_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(session_id, kind) DO UPDATE SET data = excluded.data, created_at = excluded.created_at
	`
	if _, err := s.db.ExecContext(ctx, query, sessionID, kind, data, time.Now().Unix()); err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to save artifact")
	}
	return nil
}

func (s *SQLiteArtifactStore) Load(ctx context.Context, sessionID, kind string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM artifacts WHERE session_id = ? AND kind = ?",
		sessionID, kind).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, artifactNotFound(sessionID, kind)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "failed to load artifact")
	}
	return data, nil
}

func (s *SQLiteArtifactStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM artifacts WHERE session_id = ?", sessionID); err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to delete artifacts")
	}
	return nil
}

func (s *SQLiteArtifactStore) Close() error {
	return s.db.Close()
}
