package store

// Schema v1 - runs and the placements they made
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- One row per invocation
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  started_at INTEGER NOT NULL,
  finished_at INTEGER,
  input_dir TEXT NOT NULL,
  output_dir TEXT NOT NULL,
  mode TEXT NOT NULL,
  strategy TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'running',
  placed INTEGER DEFAULT 0,
  failed INTEGER DEFAULT 0,
  skipped INTEGER DEFAULT 0
);

-- Every copy or move attempted by a run
CREATE TABLE IF NOT EXISTS placements (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  src_path TEXT NOT NULL,
  dest_path TEXT NOT NULL,
  action TEXT NOT NULL,
  status TEXT NOT NULL,
  bytes_written INTEGER DEFAULT 0,
  error TEXT,
  placed_at INTEGER NOT NULL
);
`

// Schema v2 - lookup indexes
const schemaV2 = `
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_placements_run_id ON placements(run_id, id);
CREATE INDEX IF NOT EXISTS idx_placements_dest_path ON placements(dest_path);
`
