// Package checkpoint records run progress so an aborted run can be resumed
// from its last committed beat. The store only ever observes the pipeline;
// it never feeds state back into an in-flight walk.
package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vampirenirmal/storylord/internal/story"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusNarrating = "narrating"
	StatusEditing   = "editing"
	StatusComplete  = "complete"
	StatusFailed    = "failed"
)

// Run is the stored metadata for one pipeline run.
type Run struct {
	ID         string
	OutputName string
	Status     string
	Beats      int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ErrRunNotFound is returned when a run ID has no stored record.
var ErrRunNotFound = errors.New("run not found")

// Store persists runs, architectures, and committed beat narrations in
// SQLite.
type Store struct {
	db *sql.DB
}

// Open opens or creates the checkpoint database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id           TEXT PRIMARY KEY,
		output_name  TEXT NOT NULL,
		status       TEXT NOT NULL,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);

	CREATE TABLE IF NOT EXISTS architectures (
		run_id  TEXT PRIMARY KEY REFERENCES runs(id),
		data    TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS narrations (
		run_id         TEXT NOT NULL REFERENCES runs(id),
		seq            INTEGER NOT NULL,
		beat_reference TEXT NOT NULL,
		narrative_text TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateRun records a new run.
func (s *Store) CreateRun(ctx context.Context, runID, outputName string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, output_name, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		runID, outputName, StatusRunning, now, now)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// SetStatus updates a run's status.
func (s *Store) SetStatus(ctx context.Context, runID, status string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`, status, now, runID)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// SaveArchitecture stores the generated architecture for a run.
func (s *Store) SaveArchitecture(ctx context.Context, runID string, arch story.StoryArchitecture) error {
	data, err := json.Marshal(arch)
	if err != nil {
		return fmt.Errorf("marshal architecture: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO architectures (run_id, data) VALUES (?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET data = excluded.data`,
		runID, string(data))
	if err != nil {
		return fmt.Errorf("save architecture: %w", err)
	}
	return nil
}

// LoadArchitecture loads a run's stored architecture.
func (s *Store) LoadArchitecture(ctx context.Context, runID string) (story.StoryArchitecture, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM architectures WHERE run_id = ?`, runID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return story.StoryArchitecture{}, ErrRunNotFound
	}
	if err != nil {
		return story.StoryArchitecture{}, fmt.Errorf("load architecture: %w", err)
	}

	var arch story.StoryArchitecture
	if err := json.Unmarshal([]byte(data), &arch); err != nil {
		return story.StoryArchitecture{}, fmt.Errorf("unmarshal architecture: %w", err)
	}
	return arch, nil
}

// AppendNarration records one committed beat narration. Sequence numbers are
// assigned in commit order, starting at 0.
func (s *Store) AppendNarration(ctx context.Context, runID string, narration story.BeatNarration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO narrations (run_id, seq, beat_reference, narrative_text)
		 SELECT ?, COALESCE(MAX(seq) + 1, 0), ?, ? FROM narrations WHERE run_id = ?`,
		runID, narration.BeatReference, narration.NarrativeText, runID)
	if err != nil {
		return fmt.Errorf("append narration: %w", err)
	}
	return nil
}

// LoadNarrations returns the committed narrations of a run in commit order:
// the valid prefix of an aborted run, or the full corpus of a finished one.
func (s *Store) LoadNarrations(ctx context.Context, runID string) ([]story.BeatNarration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT beat_reference, narrative_text FROM narrations WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("load narrations: %w", err)
	}
	defer rows.Close()

	var narrations []story.BeatNarration
	for rows.Next() {
		var n story.BeatNarration
		if err := rows.Scan(&n.BeatReference, &n.NarrativeText); err != nil {
			return nil, fmt.Errorf("scan narration: %w", err)
		}
		narrations = append(narrations, n)
	}
	return narrations, rows.Err()
}

// ListRuns returns all runs, most recent first, with committed beat counts.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.output_name, r.status, r.created_at, r.updated_at,
		       (SELECT COUNT(*) FROM narrations n WHERE n.run_id = r.id)
		FROM runs r
		ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created, updated string
		if err := rows.Scan(&r.ID, &r.OutputName, &r.Status, &created, &updated, &r.Beats); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		r.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
