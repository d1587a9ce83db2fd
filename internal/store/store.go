// Package store handles SQLite persistence of completion history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/runlog/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for completion history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS completions (
			id INTEGER PRIMARY KEY,
			session_id TEXT NOT NULL,
			completed_at TEXT NOT NULL,
			level TEXT NOT NULL,
			completion_time REAL NOT NULL,
			total_enemies REAL NOT NULL,
			enemies_remaining REAL NOT NULL,
			bottles_used REAL NOT NULL,
			guns_used REAL NOT NULL,
			shields_used REAL NOT NULL,
			reach_exit_completions INTEGER NOT NULL,
			kill_all_completions INTEGER NOT NULL,
			heist_completions INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_completions_level ON completions(level);`,
		`CREATE INDEX IF NOT EXISTS idx_completions_completed_at ON completions(completed_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertCompletion stores one completion and returns its id.
func (s *Store) InsertCompletion(ctx context.Context, c model.Completion) (int64, error) {
	row := c.Row
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO completions (session_id, completed_at, level, completion_time, total_enemies, enemies_remaining,
			bottles_used, guns_used, shields_used, reach_exit_completions, kill_all_completions, heist_completions)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.SessionID,
		c.CompletedAt.UTC().Format(timeLayout),
		row.Level,
		row.CompletionTime,
		row.TotalEnemies,
		row.EnemiesRemaining,
		row.BottlesUsed,
		row.GunsUsed,
		row.ShieldsUsed,
		row.Completions.ReachExit,
		row.Completions.KillAll,
		row.Completions.Heist,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func filterClause(cfg model.StatsConfig) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Level != "" {
		clauses = append(clauses, "level = ?")
		args = append(args, cfg.Level)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "completed_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	return strings.Join(clauses, " AND "), args
}

// ListCompletions returns completions matching cfg, oldest first. Last
// keeps only the most recent N.
func (s *Store) ListCompletions(ctx context.Context, cfg model.StatsConfig) ([]model.Completion, error) {
	where, args := filterClause(cfg)
	query := fmt.Sprintf(`SELECT id, session_id, completed_at, level, completion_time, total_enemies, enemies_remaining,
			bottles_used, guns_used, shields_used, reach_exit_completions, kill_all_completions, heist_completions
		FROM completions
		WHERE %s
		ORDER BY completed_at ASC, id ASC`, where)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.Completion
	for rows.Next() {
		var c model.Completion
		var completedAt string
		r := &c.Row
		if err := rows.Scan(&c.ID, &c.SessionID, &completedAt, &r.Level, &r.CompletionTime, &r.TotalEnemies,
			&r.EnemiesRemaining, &r.BottlesUsed, &r.GunsUsed, &r.ShieldsUsed,
			&r.Completions.ReachExit, &r.Completions.KillAll, &r.Completions.Heist); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, completedAt)
		if err != nil {
			return nil, err
		}
		c.CompletedAt = parsed
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(result) > cfg.Last {
		result = result[len(result)-cfg.Last:]
	}
	return result, nil
}

// BestByLevel aggregates the best time and fewest remaining enemies per level.
func (s *Store) BestByLevel(ctx context.Context, cfg model.StatsConfig) ([]model.LevelBest, error) {
	where, args := filterClause(cfg)
	query := fmt.Sprintf(`SELECT level, COUNT(*), MIN(completion_time), MIN(enemies_remaining), MAX(completed_at)
		FROM completions
		WHERE %s
		GROUP BY level
		ORDER BY level ASC`, where)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.LevelBest
	for rows.Next() {
		var b model.LevelBest
		var last string
		if err := rows.Scan(&b.Level, &b.Runs, &b.BestTimeSeconds, &b.BestEnemiesRemaining, &last); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, last)
		if err != nil {
			return nil, err
		}
		b.LastCompletedAt = parsed
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
