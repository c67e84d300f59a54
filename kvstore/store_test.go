package kvstore

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	t.Run("it returns ErrNotFound for an unknown key", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("it returns the last value written", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "jwks", []byte("first")))
		require.NoError(t, store.Set(ctx, "jwks", []byte("second")))

		value, err := store.Get(ctx, "jwks")
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), value)
	})

	t.Run("it does not alias the caller's slice", func(t *testing.T) {
		in := []byte("value")
		require.NoError(t, store.Set(ctx, "alias", in))
		in[0] = 'X'

		value, err := store.Get(ctx, "alias")
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), value)
	})
}

func TestRedis(t *testing.T) {
	ctx := context.Background()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	store := NewRedis(client)
	t.Cleanup(func() { _ = store.Close() })

	t.Run("it returns ErrNotFound for an unknown key", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("it round-trips values", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "jwks_ttl", []byte("1700000000000")))

		value, err := store.Get(ctx, "jwks_ttl")
		require.NoError(t, err)
		assert.Equal(t, []byte("1700000000000"), value)
		assert.False(t, server.Exists("missing"))
		assert.Zero(t, server.TTL("jwks_ttl"), "values are stored without expiry")
	})

	t.Run("it wraps server errors", func(t *testing.T) {
		server.SetError("LOADING")
		defer server.SetError("")

		_, err := store.Get(ctx, "jwks")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), `redis get "jwks"`)
	})
}

func TestDialRedis(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)

	addr := server.Addr()
	store, err := DialRedis(context.Background(), addr)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	server.Close()
	_, err = DialRedis(context.Background(), addr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

type fakeRow struct {
	value []byte
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.value
	return nil
}

type fakeQuerier struct {
	rows     map[string][]byte
	execErr  error
	execSQL  []string
	queryErr error
}

func (f *fakeQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	if f.queryErr != nil {
		return fakeRow{err: f.queryErr}
	}
	value, ok := f.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{value: value}
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	if len(args) == 2 {
		f.rows[args[0].(string)] = args[1].([]byte)
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestPostgres(t *testing.T) {
	ctx := context.Background()

	t.Run("it maps missing rows to ErrNotFound", func(t *testing.T) {
		store := &Postgres{db: &fakeQuerier{rows: map[string][]byte{}}}

		_, err := store.Get(ctx, "jwks")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("it upserts and reads values", func(t *testing.T) {
		db := &fakeQuerier{rows: map[string][]byte{}}
		store := &Postgres{db: db}

		require.NoError(t, store.Set(ctx, "jwks", []byte(`{"keys":[]}`)))
		value, err := store.Get(ctx, "jwks")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"keys":[]}`), value)
		assert.Equal(t, []string{upsertValueSQL}, db.execSQL)
	})

	t.Run("it wraps query errors", func(t *testing.T) {
		store := &Postgres{db: &fakeQuerier{queryErr: errors.New("connection reset")}}

		_, err := store.Get(ctx, "jwks")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("it wraps exec errors", func(t *testing.T) {
		store := &Postgres{db: &fakeQuerier{execErr: errors.New("read only")}}

		err := store.Set(ctx, "jwks", []byte("x"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `postgres set "jwks": read only`)

		err = store.Migrate(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create kv_store table")
	})
}
