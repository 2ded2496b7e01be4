package store

// schema is applied statement by statement inside one transaction by Migrate.
// Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS contacts (
		eid        TEXT PRIMARY KEY,
		fields     JSONB NOT NULL DEFAULT '{}'::jsonb,
		run_id     UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS contact_groups (
		eid  TEXT NOT NULL REFERENCES contacts (eid) ON DELETE CASCADE,
		name TEXT NOT NULL,
		PRIMARY KEY (eid, name)
	)`,
	`CREATE TABLE IF NOT EXISTS contact_addresses (
		eid     TEXT NOT NULL REFERENCES contacts (eid) ON DELETE CASCADE,
		kind    TEXT NOT NULL,
		address TEXT NOT NULL,
		tags    TEXT[] NOT NULL DEFAULT '{}',
		PRIMARY KEY (eid, kind, address)
	)`,
	`CREATE INDEX IF NOT EXISTS contacts_run_id_idx ON contacts (run_id)`,
}

// Later runs merge scalar fields into what is stored; keys already present are overwritten.
const upsertContactSQL = `
INSERT INTO contacts (eid, fields, run_id)
VALUES ($1, $2, $3)
ON CONFLICT (eid) DO UPDATE
SET fields = contacts.fields || EXCLUDED.fields,
    run_id = EXCLUDED.run_id,
    updated_at = now()`

const insertGroupSQL = `
INSERT INTO contact_groups (eid, name)
VALUES ($1, $2)
ON CONFLICT (eid, name) DO NOTHING`

// Stored tags win over later ones, matching the in-memory merge.
const insertAddressSQL = `
INSERT INTO contact_addresses (eid, kind, address, tags)
VALUES ($1, $2, $3, $4)
ON CONFLICT (eid, kind, address) DO NOTHING`
