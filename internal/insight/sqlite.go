package insight

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore keeps insights in a local sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at dbPath. ":memory:"
// gives a private in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating insight db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening insight db: %w", err)
	}
	// sqlite serializes writers; one connection also keeps ":memory:"
	// databases from splitting per connection.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS insights (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			kind       TEXT NOT NULL,
			payload    TEXT NOT NULL,
			metadata   TEXT,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_insights_user ON insights(user_id, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("creating insights table: %w", err)
	}
	return nil
}

// Save inserts rec, assigning a UUID when rec.ID is empty.
func (s *SQLiteStore) Save(ctx context.Context, rec Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	var meta []byte
	if len(rec.Metadata) > 0 {
		var err error
		if meta, err = json.Marshal(rec.Metadata); err != nil {
			return "", fmt.Errorf("encoding metadata: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO insights (id, user_id, kind, payload, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, string(rec.Kind), string(rec.Payload), string(meta),
		rec.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("inserting insight: %w", err)
	}
	return rec.ID, nil
}

// Get returns one insight owned by userID.
func (s *SQLiteStore) Get(ctx context.Context, userID, id string) (Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, kind, payload, metadata, created_at
		FROM insights
		WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return Record{}, fmt.Errorf("querying insight: %w", err)
	}
	defer rows.Close()

	recs, err := scanRecords(rows)
	if err != nil {
		return Record{}, err
	}
	if len(recs) == 0 {
		return Record{}, ErrNotFound
	}
	return recs[0], nil
}

// List returns the newest insights of userID.
func (s *SQLiteStore) List(ctx context.Context, userID string, kind Kind, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, kind, payload, metadata, created_at
		FROM insights
		WHERE user_id = ? AND (? = '' OR kind = ?)
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, userID, string(kind), string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("listing insights: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var (
			r             Record
			kind, payload string
			meta          sql.NullString
			created       string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &kind, &payload, &meta, &created); err != nil {
			return nil, fmt.Errorf("scanning insight row: %w", err)
		}
		r.Kind = Kind(kind)
		r.Payload = json.RawMessage(payload)
		if meta.Valid && meta.String != "" {
			if err := json.Unmarshal([]byte(meta.String), &r.Metadata); err != nil {
				return nil, fmt.Errorf("decoding insight metadata: %w", err)
			}
		}
		r.CreatedAt, _ = time.Parse(timeLayout, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

var _ Store = (*SQLiteStore)(nil)
