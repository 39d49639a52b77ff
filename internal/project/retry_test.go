package project

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBusy(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("database is locked (5) (SQLITE_BUSY)"), true},
		{errors.New("database table is locked"), true},
		{errors.New("UNIQUE constraint failed: projects.id"), false},
		{context.Canceled, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isBusy(tt.err), "%v", tt.err)
	}
}

func TestRunTx_OtherFailuresAreNotRepeated(t *testing.T) {
	db := openMemory(t)
	calls := 0
	boom := errors.New("constraint failed")

	err := runTx(context.Background(), db, func(*sql.Tx) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRunTx_WaitsOutLockContention(t *testing.T) {
	db := openMemory(t)
	calls := 0

	err := runTx(context.Background(), db, func(*sql.Tx) error {
		calls++
		if calls < 2 {
			return errors.New("database is locked")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRunTx_GivesUpAfterMaxRetries(t *testing.T) {
	db := openMemory(t)
	calls := 0

	err := runTx(context.Background(), db, func(*sql.Tx) error {
		calls++
		return errors.New("SQLITE_BUSY")
	})
	assert.True(t, isBusy(err))
	assert.Equal(t, maxRetries, calls)
}

func TestExecRetry_OtherFailuresAreNotRepeated(t *testing.T) {
	db := openMemory(t)
	_, err := execRetry(context.Background(), db, "INSERT INTO no_such_table VALUES (1)")
	require.Error(t, err)
	assert.False(t, isBusy(err))
}
