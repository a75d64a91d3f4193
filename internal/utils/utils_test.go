package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPGViolationChecks(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, IsPGUniqueViolation(unique))
	assert.False(t, IsPGUniqueViolation(fk))
	assert.True(t, IsPGForeignKeyViolation(fk))
	assert.False(t, IsPGForeignKeyViolation(unique))

	wrapped := errors.Join(errors.New("insert tasks"), fk)
	assert.True(t, IsPGForeignKeyViolation(wrapped))

	assert.False(t, IsPGUniqueViolation(nil))
	assert.False(t, IsPGUniqueViolation(errors.New("plain")))
}

func TestParseDurationEnv(t *testing.T) {
	cases := map[string]time.Duration{
		"10":  10 * time.Second,
		"10s": 10 * time.Second,
		"5m":  5 * time.Minute,
		"1h":  time.Hour,
	}
	for in, want := range cases {
		got, err := ParseDurationEnv(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "abc", "10x"} {
		_, err := ParseDurationEnv(in)
		assert.Error(t, err, in)
	}
}

func TestParseRedisURL(t *testing.T) {
	addr, password, db, err := ParseRedisURL("redis://default:pw@cache:6379/2")
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", addr)
	assert.Equal(t, "pw", password)
	assert.Equal(t, 2, db)

	addr, password, db, err = ParseRedisURL("redis://cache:6379")
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", addr)
	assert.Empty(t, password)
	assert.Zero(t, db)

	_, _, _, err = ParseRedisURL("http://cache:6379")
	assert.Error(t, err)
	_, _, _, err = ParseRedisURL("redis://cache:6379/two")
	assert.Error(t, err)
}
