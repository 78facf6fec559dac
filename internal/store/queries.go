package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested run or proposal does not exist.
var ErrNotFound = errors.New("not found")

// Run operations

// InsertRun records the start of a run. An empty ID is replaced by a new
// UUID and a zero StartedAt by the current time.
func (s *Store) InsertRun(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	query := `
		INSERT INTO runs (id, started_at, baseline, unstable, experimental, dest, dry_run)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		run.ID,
		formatTime(run.StartedAt),
		run.Baseline,
		run.Unstable,
		run.Experimental,
		run.Dest,
		run.DryRun,
	)
	if err != nil {
		return wrapQueryErr("failed to insert run", err)
	}

	return nil
}

// FinishRun stamps the end of a run with the number of proposals it made.
func (s *Store) FinishRun(id string, proposed int) error {
	query := `UPDATE runs SET finished_at = ?, proposed_count = ? WHERE id = ?`

	res, err := s.db.Exec(query, formatTime(time.Now()), proposed, id)
	if err != nil {
		return wrapQueryErr("failed to finish run", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}

	return nil
}

const runColumns = `id, started_at, finished_at, baseline, unstable, experimental, dest, dry_run, proposed_count`

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, wrapQueryErr(fmt.Sprintf("failed to get run %s", id), err)
	}

	return run, nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, wrapQueryErr("failed to list runs", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var startedAt string
	var finishedAt, dest sql.NullString
	var dryRun sql.NullBool

	err := row.Scan(
		&run.ID,
		&startedAt,
		&finishedAt,
		&run.Baseline,
		&run.Unstable,
		&run.Experimental,
		&dest,
		&dryRun,
		&run.ProposedCount,
	)
	if err != nil {
		return nil, err
	}

	run.StartedAt, err = time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse started_at for run %s: %w", run.ID, err)
	}
	if finishedAt.Valid {
		run.FinishedAt, err = time.Parse(timeLayout, finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse finished_at for run %s: %w", run.ID, err)
		}
	}
	run.Dest = dest.String
	run.DryRun = dryRun.Bool

	return &run, nil
}

// Proposal operations

// InsertProposal records a transition proposed by a run.
func (s *Store) InsertProposal(p *Proposal) error {
	addedJSON, err := json.Marshal(nonNil(p.Added))
	if err != nil {
		return fmt.Errorf("failed to marshal added binaries: %w", err)
	}
	removedJSON, err := json.Marshal(nonNil(p.Removed))
	if err != nil {
		return fmt.Errorf("failed to marshal removed binaries: %w", err)
	}
	notesJSON, err := json.Marshal(p.Notes)
	if err != nil {
		return fmt.Errorf("failed to marshal notes: %w", err)
	}

	query := `
		INSERT INTO proposals (run_id, name, stage, source, added, removed, notes, written_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query,
		p.RunID,
		p.Name,
		p.Stage,
		p.Source,
		string(addedJSON),
		string(removedJSON),
		string(notesJSON),
		p.WrittenPath,
	)
	if err != nil {
		return wrapQueryErr(fmt.Sprintf("failed to insert proposal %s", p.Name), err)
	}

	return nil
}

const proposalColumns = `run_id, name, stage, source, added, removed, notes, written_path`

// ListProposals returns the proposals of a run in insertion order.
func (s *Store) ListProposals(runID string) ([]*Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE run_id = ? ORDER BY id`

	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, wrapQueryErr("failed to list proposals", err)
	}
	defer rows.Close()

	var proposals []*Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating proposals: %w", err)
	}

	return proposals, nil
}

// LastProposal returns the most recent proposal of the named transition.
func (s *Store) LastProposal(name string) (*Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE name = ? ORDER BY id DESC LIMIT 1`

	p, err := scanProposal(s.db.QueryRow(query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("proposal %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, wrapQueryErr(fmt.Sprintf("failed to get proposal %s", name), err)
	}

	return p, nil
}

func scanProposal(row scanner) (*Proposal, error) {
	var p Proposal
	var addedJSON, removedJSON string
	var notesJSON, writtenPath sql.NullString

	err := row.Scan(
		&p.RunID,
		&p.Name,
		&p.Stage,
		&p.Source,
		&addedJSON,
		&removedJSON,
		&notesJSON,
		&writtenPath,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(addedJSON), &p.Added); err != nil {
		return nil, fmt.Errorf("failed to unmarshal added binaries for %s: %w", p.Name, err)
	}
	if err := json.Unmarshal([]byte(removedJSON), &p.Removed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal removed binaries for %s: %w", p.Name, err)
	}
	if notesJSON.Valid && notesJSON.String != "" {
		if err := json.Unmarshal([]byte(notesJSON.String), &p.Notes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notes for %s: %w", p.Name, err)
		}
	}
	p.WrittenPath = writtenPath.String

	return &p, nil
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nonNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}
