package store

const schema = `
CREATE TABLE IF NOT EXISTS packages (
    name TEXT PRIMARY KEY,
    version TEXT NOT NULL,
    maintainer TEXT,
    deps TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS files (
    owner TEXT NOT NULL,
    hash TEXT NOT NULL DEFAULT '',
    path TEXT NOT NULL UNIQUE,
    kind TEXT NOT NULL,
    mode TEXT,
    FOREIGN KEY (owner) REFERENCES packages(name)
);

CREATE INDEX IF NOT EXISTS idx_files_owner ON files(owner);
`
