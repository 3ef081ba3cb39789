package progress

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	idx, err := s.Index(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, idx, "unknown hunter starts at 0")

	require.NoError(t, s.SetIndex(ctx, "alice", 3))
	idx, err = s.Index(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, idx)

	idx, err = s.Index(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestMemoryStore_RejectsOutOfRange(t *testing.T) {
	s := NewMemoryStore()
	for _, idx := range []int{-1, 7} {
		err := s.SetIndex(context.Background(), "alice", idx)
		assert.Truef(t, errors.Is(err, ErrInvalidIndex), "SetIndex(%d) error = %v", idx, err)
	}
	assert.NoError(t, s.SetIndex(context.Background(), "alice", 6), "finished hunt is a valid index")
}

func TestMemoryStore_Concurrent(t *testing.T) {
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.SetIndex(context.Background(), "alice", i%6)
			_, _ = s.Index(context.Background(), "alice")
		}(i)
	}
	wg.Wait()
}

// fakeDB records statements and serves QueryRow from a map.
type fakeDB struct {
	tag   pgconn.CommandTag
	execs []string
	args  [][]any
	rows  map[string]int
	err   error
}

type fakeRow struct {
	value int
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int)) = r.value
	return nil
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	f.args = append(f.args, args)
	return f.tag, f.err
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	if f.err != nil {
		return fakeRow{err: f.err}
	}
	v, ok := f.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{value: v}
}

func TestPostgresStore_Index(t *testing.T) {
	db := &fakeDB{rows: map[string]int{"alice": 2}}
	s := NewPostgresStore(db)

	idx, err := s.Index(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	idx, err = s.Index(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestPostgresStore_IndexError(t *testing.T) {
	s := NewPostgresStore(&fakeDB{err: errors.New("connection reset")})

	_, err := s.Index(context.Background(), "alice")
	assert.ErrorContains(t, err, "connection reset")
}

func TestPostgresStore_SetIndex(t *testing.T) {
	db := &fakeDB{}
	s := NewPostgresStore(db)

	require.NoError(t, s.SetIndex(context.Background(), "alice", 4))
	require.Len(t, db.execs, 1)
	assert.True(t, strings.Contains(db.execs[0], "ON CONFLICT"))
	assert.Equal(t, []any{"alice", 4}, db.args[0])

	err := s.SetIndex(context.Background(), "alice", 9)
	assert.ErrorIs(t, err, ErrInvalidIndex)
	assert.Len(t, db.execs, 1, "invalid index must not reach the database")
}

func TestPostgresStore_Migrate(t *testing.T) {
	db := &fakeDB{}
	require.NoError(t, NewPostgresStore(db).Migrate(context.Background()))
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0], "CREATE TABLE IF NOT EXISTS hunt_progress")
}

func TestMemoryStore_Advance(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ok, err := s.Advance(ctx, "alice", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Advance(ctx, "alice", 0)
	require.NoError(t, err)
	assert.False(t, ok, "stale from index must not advance")

	idx, _ := s.Index(ctx, "alice")
	assert.Equal(t, 1, idx)

	_, err = s.Advance(ctx, "alice", 6)
	assert.ErrorIs(t, err, ErrInvalidIndex)
	_, err = s.Advance(ctx, "alice", -1)
	assert.ErrorIs(t, err, ErrInvalidIndex)
}

func TestMemoryStore_AdvanceConcurrent(t *testing.T) {
	s := NewMemoryStore()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.Advance(context.Background(), "alice", 0)
			if err == nil && ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "only one concurrent step from the same index may succeed")
	idx, _ := s.Index(context.Background(), "alice")
	assert.Equal(t, 1, idx)
}

func TestPostgresStore_Advance(t *testing.T) {
	cases := []struct {
		name     string
		from     int
		tag      string
		wantOK   bool
		wantSQL  string
		wantArgs []any
	}{
		{"first step inserts", 0, "INSERT 0 1", true, "WHERE hunt_progress.geofence_index = 0", []any{"alice"}},
		{"first step already taken", 0, "INSERT 0 0", false, "ON CONFLICT", []any{"alice"}},
		{"later step", 3, "UPDATE 1", true, "AND geofence_index = $2", []any{"alice", 3}},
		{"later step lost the race", 3, "UPDATE 0", false, "AND geofence_index = $2", []any{"alice", 3}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := &fakeDB{tag: pgconn.NewCommandTag(tc.tag)}
			ok, err := NewPostgresStore(db).Advance(context.Background(), "alice", tc.from)
			require.NoError(t, err)
			assert.Equal(t, tc.wantOK, ok)
			require.Len(t, db.execs, 1)
			assert.Contains(t, db.execs[0], tc.wantSQL)
			assert.Equal(t, tc.wantArgs, db.args[0])
		})
	}
}

func TestPostgresStore_AdvanceError(t *testing.T) {
	db := &fakeDB{err: errors.New("connection reset")}
	_, err := NewPostgresStore(db).Advance(context.Background(), "alice", 1)
	assert.ErrorContains(t, err, "connection reset")

	_, err = NewPostgresStore(&fakeDB{}).Advance(context.Background(), "alice", 6)
	assert.ErrorIs(t, err, ErrInvalidIndex)
}
