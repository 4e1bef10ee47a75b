// Package store persists scoring results in SQLite or MySQL.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/dotcommander/praxy/internal/scoring"
)

// ErrNotFound is returned by Get for an unknown id
var ErrNotFound = errors.New("store: result not found")

// DefaultLimit caps List when no limit is given
const DefaultLimit = 50

// timeLayout is fixed-width so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Record is one persisted scoring result
type Record struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id,omitempty"`
	Domain    scoring.Domain  `json:"domain"`
	Subject   string          `json:"subject,omitempty"`
	Score     int             `json:"score"`
	Source    scoring.Source  `json:"-"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	UserID string
	Domain scoring.Domain
	Limit  int
}

// Store is the persistence contract used by the service layer
type Store interface {
	Save(ctx context.Context, r Record) error
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, f Filter) ([]Record, error)
	Close() error
}

// SQLStore implements Store on database/sql
type SQLStore struct {
	db     *sql.DB
	driver string
}

var _ Store = (*SQLStore)(nil)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS scoring_results (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		domain     TEXT NOT NULL,
		subject    TEXT NOT NULL,
		score      INTEGER NOT NULL,
		source     TEXT NOT NULL,
		result     TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scoring_results_user ON scoring_results(user_id, created_at)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS scoring_results (
		id         VARCHAR(36) PRIMARY KEY,
		user_id    VARCHAR(255) NOT NULL,
		domain     VARCHAR(16) NOT NULL,
		subject    VARCHAR(255) NOT NULL,
		score      INT NOT NULL,
		source     VARCHAR(16) NOT NULL,
		result     TEXT NOT NULL,
		created_at CHAR(30) NOT NULL,
		INDEX idx_scoring_results_user (user_id, created_at)
	)`,
}

// Open connects to the database and creates the schema. driver is "sqlite"
// (dsn is a file path or ":memory:") or "mysql" (dsn in go-sql-driver format).
func Open(driver, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("store: empty dsn")
	}

	var (
		db     *sql.DB
		schema []string
		err    error
	)
	switch driver {
	case "sqlite":
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("create store dir: %w", err)
			}
		}
		db, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// single writer; also keeps a :memory: database on one connection
		db.SetMaxOpenConns(1)
		schema = sqliteSchema
	case "mysql":
		cfg, perr := mysql.ParseDSN(dsn)
		if perr != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", perr)
		}
		db, err = sql.Open("mysql", cfg.FormatDSN())
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		schema = mysqlSchema
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &SQLStore{db: db, driver: driver}, nil
}

// Save inserts r. CreatedAt defaults to now.
func (s *SQLStore) Save(ctx context.Context, r Record) error {
	if r.ID == "" {
		return fmt.Errorf("store: record id is required")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scoring_results (id, user_id, domain, subject, score, source, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, string(r.Domain), r.Subject, r.Score, string(r.Source), string(r.Result),
		r.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("save result %s: %w", r.ID, err)
	}
	return nil
}

// Get returns the record with the given id or ErrNotFound
func (s *SQLStore) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, domain, subject, score, source, result, created_at
		 FROM scoring_results WHERE id = ?`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get result %s: %w", id, err)
	}
	return r, nil
}

// List returns matching records, newest first
func (s *SQLStore) List(ctx context.Context, f Filter) ([]Record, error) {
	query := `SELECT id, user_id, domain, subject, score, source, result, created_at FROM scoring_results`
	var (
		where []string
		args  []any
	)
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Domain != "" {
		where = append(where, "domain = ?")
		args = append(args, string(f.Domain))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return out, nil
}

// Close closes the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var r Record
	var domain, source, result, created string
	if err := sc.Scan(&r.ID, &r.UserID, &domain, &r.Subject, &r.Score, &source, &result, &created); err != nil {
		return Record{}, err
	}
	r.Domain = scoring.Domain(domain)
	r.Source = scoring.Source(source)
	r.Result = json.RawMessage(result)
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return Record{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	r.CreatedAt = t
	return r, nil
}
