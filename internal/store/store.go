// Package store persists normalized contact records in PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/contacts/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// Store saves records produced by a normalization run.
type Store struct {
	db     DB
	logger *slog.Logger
}

// New creates a Store over db.
func New(db DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// SaveResult reports how many records one SaveRecords call wrote.
type SaveResult struct {
	RunID     uuid.UUID `json:"run_id"`
	Saved     int       `json:"saved"`
	Skipped   int       `json:"skipped"` // records without an identity key
	Groups    int       `json:"groups"`
	Addresses int       `json:"addresses"`
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SaveRecords upserts records in a single transaction. Records without an
// identity key cannot be addressed later and are skipped. Nothing is written
// when any statement fails.
func (s *Store) SaveRecords(ctx context.Context, runID uuid.UUID, records []*core.Record) (SaveResult, error) {
	result := SaveResult{RunID: runID}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range records {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if rec.IdentityKey == "" {
			result.Skipped++
			continue
		}

		fields, err := json.Marshal(rec.Scalars())
		if err != nil {
			return result, fmt.Errorf("encode fields for %q: %w", rec.IdentityKey, err)
		}

		if _, err := tx.Exec(ctx, upsertContactSQL, rec.IdentityKey, fields, runID.String()); err != nil {
			return result, fmt.Errorf("upsert contact %q: %w", rec.IdentityKey, err)
		}

		for _, g := range rec.Groups {
			tag, err := tx.Exec(ctx, insertGroupSQL, rec.IdentityKey, g)
			if err != nil {
				return result, fmt.Errorf("insert group %q for %q: %w", g, rec.IdentityKey, err)
			}
			result.Groups += int(tag.RowsAffected())
		}

		for _, a := range rec.Addresses {
			tag, err := tx.Exec(ctx, insertAddressSQL, rec.IdentityKey, string(a.Type), a.Address, a.Tags)
			if err != nil {
				return result, fmt.Errorf("insert address for %q: %w", rec.IdentityKey, err)
			}
			result.Addresses += int(tag.RowsAffected())
		}

		result.Saved++
	}

	if err := tx.Commit(ctx); err != nil {
		return SaveResult{RunID: runID}, fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("records saved",
		"run_id", runID,
		"saved", result.Saved,
		"skipped", result.Skipped,
		"groups", result.Groups,
		"addresses", result.Addresses,
	)
	return result, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
