package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/contacts/internal/core"
	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execCall struct {
	sql  string
	args []any
}

// fakeTx records Exec calls. Methods the store does not use panic through the nil embedded Tx.
type fakeTx struct {
	pgx.Tx

	execs      []execCall
	failOn     string // Exec fails when the statement contains this text
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if t.failOn != "" && strings.Contains(sql, t.failOn) {
		return pgconn.CommandTag{}, errors.New("boom")
	}
	t.execs = append(t.execs, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	tx       *fakeTx
	beginErr error
	pingErr  error
}

func (d *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	return d.tx, nil
}

func (d *fakeDB) Ping(context.Context) error { return d.pingErr }

func newTestStore(db DB) *Store {
	return New(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func normalized(t *testing.T, csv string) []*core.Record {
	t.Helper()
	n := core.NewNormalizer(nil, "BR", core.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	res, err := n.Normalize([]byte(csv))
	require.NoError(t, err)
	return res.Records
}

func TestMigrate(t *testing.T) {
	tx := &fakeTx{}
	s := newTestStore(&fakeDB{tx: tx})

	require.NoError(t, s.Migrate(context.Background()))
	assert.Len(t, tx.execs, len(schema))
	assert.True(t, tx.committed)
}

func TestMigrate_ExecError(t *testing.T) {
	tx := &fakeTx{failOn: "contact_groups"}
	s := newTestStore(&fakeDB{tx: tx})

	err := s.Migrate(context.Background())
	require.Error(t, err)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestSaveRecords(t *testing.T) {
	records := normalized(t, "eid,name,group,email\n1,Ana,g1 / g2,a@b.com\n,Nameless,g3,\n")
	tx := &fakeTx{}
	s := newTestStore(&fakeDB{tx: tx})
	runID := uuid.New()

	res, err := s.SaveRecords(context.Background(), runID, records)
	require.NoError(t, err)

	assert.Equal(t, runID, res.RunID)
	assert.Equal(t, 1, res.Saved)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 2, res.Groups)
	assert.Equal(t, 1, res.Addresses)
	assert.True(t, tx.committed)

	// contact, two groups, one address
	require.Len(t, tx.execs, 4)
	assert.Equal(t, upsertContactSQL, tx.execs[0].sql)
	assert.Equal(t, "1", tx.execs[0].args[0])
	assert.JSONEq(t, `{"eid":"1","name":"Ana"}`, string(tx.execs[0].args[1].([]byte)))
	assert.Equal(t, runID.String(), tx.execs[0].args[2])

	assert.Equal(t, []any{"1", "g1"}, tx.execs[1].args)
	assert.Equal(t, []any{"1", "g2"}, tx.execs[2].args)
	assert.Equal(t, []any{"1", "email", "a@b.com", []string{}}, tx.execs[3].args)
}

func TestSaveRecords_ExecErrorRollsBack(t *testing.T) {
	records := normalized(t, "eid,group\n1,g1\n")
	tx := &fakeTx{failOn: "contact_groups"}
	s := newTestStore(&fakeDB{tx: tx})

	_, err := s.SaveRecords(context.Background(), uuid.New(), records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `insert group "g1"`)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestSaveRecords_BeginError(t *testing.T) {
	s := newTestStore(&fakeDB{beginErr: errors.New("connection refused")})

	_, err := s.SaveRecords(context.Background(), uuid.New(), nil)
	require.Error(t, err)
	assert.Equal(t, "DB001", core.MapError(err).Code)
}

func TestSaveRecords_CancelledContext(t *testing.T) {
	records := normalized(t, "eid\n1\n")
	tx := &fakeTx{}
	s := newTestStore(&fakeDB{tx: tx})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SaveRecords(ctx, uuid.New(), records)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, tx.execs)
	assert.False(t, tx.committed)
}

func TestPing(t *testing.T) {
	assert.NoError(t, newTestStore(&fakeDB{}).Ping(context.Background()))
	assert.Error(t, newTestStore(&fakeDB{pingErr: errors.New("down")}).Ping(context.Background()))
}

func TestRetryPing(t *testing.T) {
	prev := newBackOff
	newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	defer func() { newBackOff = prev }()

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		ping := func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("connection refused")
			}
			return nil
		}
		require.NoError(t, retryPing(context.Background(), ping, time.Second))
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up when context ends", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		ping := func(context.Context) error { return errors.New("connection refused") }
		assert.Error(t, retryPing(ctx, ping, time.Minute))
	})
}
