// internal/results/sqlite.go
//
// SQLite-backed Store.
// Responsibilities:
//   - Opening SQLite database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying migrations from the embedded assets/sql/*.sql (idempotent, recorded in _migrations).
//   - Saving/reading per-puzzle summaries and their attempt history.

package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/connections-bot/assets"
)

// SQLite is a Store backed by a SQLite database file.
type SQLite struct {
	db *sql.DB
}

// Open opens (creating if missing) the database at dsn and applies migrations.
func Open(dsn string) (*SQLite, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// Close closes the database handle.
func (s *SQLite) Close() error { return s.db.Close() }

/**
 * openDB opens (and creates if missing) a SQLite database file.
 *
 * - Ensures parent directory exists for relative DSNs (e.g. ./data/results.db).
 * - Configures busy timeout, WAL journaling and foreign keys per connection.
 */
func openDB(dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dsn, err)
	}
	return db, nil
}

/**
 * migrate applies the embedded SQL migrations.
 *
 * - Uses a _migrations table to track applied files.
 * - Executes each script in lexical order inside its own transaction.
 * - Skips if already applied.
 * - Scripts that manage their own transaction (BEGIN TRANSACTION) run as-is.
 */
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}
	migrations, err := assets.Migrations()
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	for _, m := range migrations {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, m.Name).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", m.Name).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		if strings.Contains(strings.ToUpper(m.SQL), "BEGIN TRANSACTION") {
			if _, err := db.Exec(m.SQL); err != nil {
				return fmt.Errorf("apply %s: %w", m.Name, err)
			}
			if _, err := db.Exec(`INSERT INTO _migrations(name) VALUES (?)`, m.Name); err != nil {
				return fmt.Errorf("record %s: %w", m.Name, err)
			}
			log.Info().Str("migration", m.Name).Msg("applied (self-managed)")
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", m.Name, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, m.Name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", m.Name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", m.Name, err)
		}
		log.Info().Str("migration", m.Name).Msg("applied")
	}
	return nil
}

// Has implements Store.
func (s *SQLite) Has(ctx context.Context, gameID int) (bool, error) {
	var cnt int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM results WHERE game_id=?`, gameID,
	).Scan(&cnt); err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// Save implements Store. The summary and its history are replaced atomically.
func (s *SQLite) Save(ctx context.Context, r Summary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM result_attempts WHERE game_id=?`, r.GameID); err != nil {
		return fmt.Errorf("clear attempts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT OR REPLACE INTO results
            (game_id, run_id, status, correct_groups, attempts, mistakes, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.GameID, r.RunID, r.Status, r.CorrectGroups, r.Attempts, r.Mistakes,
		r.FinishedAt.UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	for _, a := range r.History {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO result_attempts (game_id, turn, outcome, words) VALUES (?, ?, ?, ?)`,
			r.GameID, a.Turn, a.Outcome, strings.Join(a.Words, ","),
		); err != nil {
			return fmt.Errorf("insert attempt %d: %w", a.Turn, err)
		}
	}
	return tx.Commit()
}

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, gameID int) (Summary, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT game_id, run_id, status, correct_groups, attempts, mistakes, finished_at
        FROM results WHERE game_id=?`, gameID)
	r, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Summary{}, ErrNotFound
	}
	if err != nil {
		return Summary{}, err
	}
	if r.History, err = s.history(ctx, gameID); err != nil {
		return Summary{}, err
	}
	return r, nil
}

// List implements Store. History is loaded for each row.
func (s *SQLite) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT game_id, run_id, status, correct_groups, attempts, mistakes, finished_at
        FROM results
        ORDER BY game_id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	var out []Summary
	for rows.Next() {
		r, err := scanSummary(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range out {
		if out[i].History, err = s.history(ctx, out[i].GameID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Delete implements Store.
func (s *SQLite) Delete(ctx context.Context, gameID int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM result_attempts WHERE game_id=?`, gameID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM results WHERE game_id=?`, gameID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (s *SQLite) history(ctx context.Context, gameID int) ([]AttemptRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT turn, outcome, words FROM result_attempts WHERE game_id=? ORDER BY turn`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []AttemptRecord{}
	for rows.Next() {
		var a AttemptRecord
		var words string
		if err := rows.Scan(&a.Turn, &a.Outcome, &words); err != nil {
			return nil, err
		}
		if words != "" {
			a.Words = strings.Split(words, ",")
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (Summary, error) {
	var r Summary
	var finished string
	if err := row.Scan(&r.GameID, &r.RunID, &r.Status, &r.CorrectGroups, &r.Attempts, &r.Mistakes, &finished); err != nil {
		return Summary{}, err
	}
	r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
	return r, nil
}
