// Package store persists transformed classes across launches in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS classes (
	cache_key  TEXT PRIMARY KEY,
	class      TEXT NOT NULL,
	record     BLOB NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS classes_class ON classes(class);
`

// Record is the CBOR payload stored for one transformed class.
type Record struct {
	Class   string    `cbor:"1,keyasint"`
	Session string    `cbor:"2,keyasint,omitempty"`
	Data    []byte    `cbor:"3,keyasint"`
	Created time.Time `cbor:"4,keyasint"`
}

// Store is a pipeline cache backed by one SQLite file.
type Store struct {
	db      *sql.DB
	session string
	now     func() time.Time
}

// Open opens or creates the cache database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store: path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// WithSession tags records written from now on with a weave session ID.
func (s *Store) WithSession(id string) *Store {
	s.session = id
	return s
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the stored bytes for key. Unreadable records count as misses.
func (s *Store) Get(key string) ([]byte, bool) {
	rec, err := s.Lookup(key)
	if err != nil || rec == nil {
		return nil, false
	}
	return rec.Data, true
}

// Lookup returns the full record for key, nil when absent.
func (s *Store) Lookup(key string) (*Record, error) {
	var raw []byte
	err := s.db.QueryRow(`SELECT record FROM classes WHERE cache_key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", key, err)
	}
	var rec Record
	if err := cbor.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return &rec, nil
}

// Put stores data under key, replacing any previous record.
func (s *Store) Put(key string, data []byte) error {
	rec := Record{Class: ClassOf(key), Session: s.session, Data: data, Created: s.now().UTC()}
	raw, err := cbor.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO classes (cache_key, class, record, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET class = excluded.class, record = excluded.record, created_at = excluded.created_at`,
		key, rec.Class, raw, rec.Created.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("store: put %s: %w", key, err)
	}
	return nil
}

// Len returns the number of stored records.
func (s *Store) Len() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM classes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

// Forget removes every record for class.
func (s *Store) Forget(class string) (int, error) {
	res, err := s.db.Exec(`DELETE FROM classes WHERE class = ?`, class)
	if err != nil {
		return 0, fmt.Errorf("store: forget %s: %w", class, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Prune removes records written before cutoff.
func (s *Store) Prune(cutoff time.Time) (int, error) {
	res, err := s.db.Exec(`DELETE FROM classes WHERE created_at < ?`, cutoff.UTC().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("store: prune: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// ClassOf extracts the class name from a pipeline cache key.
func ClassOf(key string) string {
	if i := strings.IndexByte(key, '@'); i >= 0 {
		return key[:i]
	}
	return key
}
