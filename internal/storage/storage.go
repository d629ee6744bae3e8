// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists opportunities and item associations for the
// note/opportunity commands. It owns the SQLite database; the command
// engine itself never touches it.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/morganforge/flowdesk/internal/commands"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound      = errors.New("not found")
	ErrDatabaseError = errors.New("database error")
	ErrEmptyTitle    = errors.New("title must not be empty")
)

// =============================================================================
// MODELS
// =============================================================================

// Opportunity is a tracked piece of potential work.
type Opportunity struct {
	ID          string
	Title       string
	Description string
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Association links two items (notes, opportunities, tasks) by id.
type Association struct {
	ID        int64
	SourceID  string
	TargetID  string
	CreatedAt time.Time
}

// =============================================================================
// STORE
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS opportunities (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	tags        TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS associations (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	source_id  TEXT NOT NULL,
	target_id  TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	UNIQUE(source_id, target_id)
);

CREATE INDEX IF NOT EXISTS idx_assoc_source ON associations(source_id);
CREATE INDEX IF NOT EXISTS idx_assoc_target ON associations(target_id);
`

// Store is the opportunity/association database. Safe for concurrent use;
// the connection pool is limited to one writer as SQLite requires.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// OPPORTUNITIES
// =============================================================================

// newOpportunityID mints an opp-prefixed identifier.
func newOpportunityID() string {
	return "opp-" + uuid.NewString()[:8]
}

// CreateOpportunity inserts a new opportunity and returns it.
func (s *Store) CreateOpportunity(ctx context.Context, title, description string) (Opportunity, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Opportunity{}, ErrEmptyTitle
	}

	now := time.Now().UTC()
	opp := Opportunity{
		ID:          newOpportunityID(),
		Title:       title,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO opportunities (id, title, description, tags, created_at, updated_at)
		 VALUES (?, ?, ?, '', ?, ?)`,
		opp.ID, opp.Title, opp.Description, now.Unix(), now.Unix())
	if err != nil {
		return Opportunity{}, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return opp, nil
}

// GetOpportunity fetches one opportunity by id.
func (s *Store) GetOpportunity(ctx context.Context, id string) (Opportunity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, tags, created_at, updated_at
		 FROM opportunities WHERE id = ?`, id)
	return scanOpportunity(row)
}

// ListOpportunities returns opportunities matching the filter set, newest
// first. Tag filters match any of the given tags; an absent limit returns
// everything.
func (s *Store) ListOpportunities(ctx context.Context, filters commands.FilterSet) ([]Opportunity, error) {
	query := `SELECT id, title, description, tags, created_at, updated_at
	          FROM opportunities`
	var args []any
	if len(filters.Tags) > 0 {
		var clauses []string
		for _, tag := range filters.Tags {
			clauses = append(clauses, "' '||tags||' ' LIKE ?")
			args = append(args, "% "+tag+" %")
		}
		query += " WHERE " + strings.Join(clauses, " OR ")
	}
	query += " ORDER BY created_at DESC, id"
	if filters.HasLimit {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()
	return collectOpportunities(rows)
}

// SearchOpportunities finds opportunities whose title or description
// contains the query, case-insensitively.
func (s *Store) SearchOpportunities(ctx context.Context, query string) ([]Opportunity, error) {
	like := "%" + strings.ToLower(query) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, tags, created_at, updated_at
		 FROM opportunities
		 WHERE lower(title) LIKE ? OR lower(description) LIKE ?
		 ORDER BY created_at DESC, id`, like, like)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()
	return collectOpportunities(rows)
}

// TagOpportunity appends tags to an opportunity, deduplicating.
func (s *Store) TagOpportunity(ctx context.Context, id string, tags []string) (Opportunity, error) {
	opp, err := s.GetOpportunity(ctx, id)
	if err != nil {
		return Opportunity{}, err
	}

	seen := make(map[string]bool, len(opp.Tags))
	for _, t := range opp.Tags {
		seen[t] = true
	}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		opp.Tags = append(opp.Tags, t)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`UPDATE opportunities SET tags = ?, updated_at = ? WHERE id = ?`,
		strings.Join(opp.Tags, " "), now.Unix(), id)
	if err != nil {
		return Opportunity{}, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	opp.UpdatedAt = now
	return opp, nil
}

// DeleteOpportunity removes an opportunity and its associations.
func (s *Store) DeleteOpportunity(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM opportunities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	_, err = s.db.ExecContext(ctx,
		`DELETE FROM associations WHERE source_id = ? OR target_id = ?`, id, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// =============================================================================
// ASSOCIATIONS
// =============================================================================

// CreateAssociation links two item ids. Creating the same link twice is a
// no-op returning the existing association.
func (s *Store) CreateAssociation(ctx context.Context, sourceID, targetID string) (Association, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO associations (source_id, target_id, created_at)
		 VALUES (?, ?, ?)`, sourceID, targetID, now.Unix())
	if err != nil {
		return Association{}, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	var a Association
	var created int64
	err = s.db.QueryRowContext(ctx,
		`SELECT id, source_id, target_id, created_at FROM associations
		 WHERE source_id = ? AND target_id = ?`, sourceID, targetID).
		Scan(&a.ID, &a.SourceID, &a.TargetID, &created)
	if err != nil {
		return Association{}, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	a.CreatedAt = time.Unix(created, 0).UTC()
	return a, nil
}

// Associations returns every association touching the given id, oldest
// first.
func (s *Store) Associations(ctx context.Context, id string) ([]Association, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_id, target_id, created_at FROM associations
		 WHERE source_id = ? OR target_id = ? ORDER BY id`, id, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var out []Association
	for rows.Next() {
		var a Association
		var created int64
		if err := rows.Scan(&a.ID, &a.SourceID, &a.TargetID, &created); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		a.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

// =============================================================================
// RAW QUERIES
// =============================================================================

// Query runs a read-only SQL statement from the /sql command and returns
// column names plus stringified rows. Statements other than SELECT are
// refused here; mutation flows through the typed methods.
func (s *Store) Query(ctx context.Context, stmt string) ([]string, [][]string, error) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(stmt)), "select") {
		return nil, nil, fmt.Errorf("%w: only SELECT statements are allowed", ErrDatabaseError)
	}

	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	var out [][]string
	for rows.Next() {
		raw := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		rec := make([]string, len(cols))
		for i, v := range raw {
			rec[i] = v.String
		}
		out = append(out, rec)
	}
	return cols, out, rows.Err()
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOpportunity(row rowScanner) (Opportunity, error) {
	var opp Opportunity
	var tags string
	var created, updated int64
	err := row.Scan(&opp.ID, &opp.Title, &opp.Description, &tags, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Opportunity{}, ErrNotFound
	}
	if err != nil {
		return Opportunity{}, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if tags != "" {
		opp.Tags = strings.Fields(tags)
	}
	opp.CreatedAt = time.Unix(created, 0).UTC()
	opp.UpdatedAt = time.Unix(updated, 0).UTC()
	return opp, nil
}

func collectOpportunities(rows *sql.Rows) ([]Opportunity, error) {
	var out []Opportunity
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, opp)
	}
	return out, rows.Err()
}
