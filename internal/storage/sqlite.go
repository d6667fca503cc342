package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"review-collector/internal/review"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS reviews (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    contact_number TEXT NOT NULL,
    user_name      TEXT NOT NULL,
    product_name   TEXT NOT NULL,
    product_review TEXT NOT NULL,
    created_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reviews_contact ON reviews(contact_number);
CREATE INDEX IF NOT EXISTS idx_reviews_created_at ON reviews(created_at);
`

// SQLiteStore persists reviews in a local sqlite database. Timestamps are
// stored as RFC3339Nano in UTC so lexical order matches chronological order.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "ensure dir")
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return errors.Wrap(err, "init schema")
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Insert(ctx context.Context, r review.Review) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO reviews(contact_number, user_name, product_name, product_review, created_at) VALUES(?,?,?,?,?)",
		r.Contact, r.UserName, r.ProductName, r.Text, r.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return errors.Wrap(err, "insert review")
	}
	return nil
}

func (s *SQLiteStore) FindLatest(ctx context.Context, contact, productName, text string) (time.Time, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT created_at FROM reviews WHERE contact_number=? AND product_name=? AND product_review=? ORDER BY created_at DESC LIMIT 1",
		contact, productName, text).Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, errors.Wrap(err, "query latest review")
	}
	createdAt, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, errors.Wrap(err, "parse created_at")
	}
	return createdAt, true, nil
}

func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]review.Review, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, contact_number, user_name, product_name, product_review, created_at FROM reviews ORDER BY created_at DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "query reviews")
	}
	defer func() { _ = rows.Close() }()

	out := make([]review.Review, 0, limit)
	for rows.Next() {
		var r review.Review
		var raw string
		if err := rows.Scan(&r.ID, &r.Contact, &r.UserName, &r.ProductName, &r.Text, &raw); err != nil {
			return nil, errors.Wrap(err, "scan review")
		}
		createdAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, errors.Wrap(err, "parse created_at")
		}
		r.CreatedAt = createdAt
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "iterate reviews")
}
