package store

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    finished_at TEXT,
    baseline TEXT NOT NULL,
    unstable TEXT NOT NULL,
    experimental TEXT NOT NULL,
    dest TEXT,
    dry_run BOOLEAN,
    proposed_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS proposals (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    name TEXT NOT NULL,
    stage TEXT NOT NULL,
    source TEXT NOT NULL,
    added TEXT NOT NULL,
    removed TEXT NOT NULL,
    notes TEXT,
    written_path TEXT,
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_proposals_run ON proposals(run_id);
CREATE INDEX IF NOT EXISTS idx_proposals_name ON proposals(name);
`
