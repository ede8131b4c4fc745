package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInTransaction_Commits(t *testing.T) {
	db, err := NewDB(Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	err = InTransaction(context.Background(), db, func(ctx context.Context) error {
		tx := GetTransaction(ctx)
		require.NotNil(t, tx)
		_, err := tx.ExecContext(ctx, `INSERT INTO soc_reports (position, "file_name") VALUES (?, ?)`, 0, "A.pdf")
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM soc_reports`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestInTransaction_RollsBackOnError(t *testing.T) {
	db, err := NewDB(Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	failure := errors.New("write failed")
	err = InTransaction(context.Background(), db, func(ctx context.Context) error {
		_, err := GetTransaction(ctx).ExecContext(ctx, `INSERT INTO soc_reports (position, "file_name") VALUES (?, ?)`, 0, "A.pdf")
		require.NoError(t, err)
		return failure
	})
	assert.ErrorIs(t, err, failure)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM soc_reports`).Scan(&count))
	assert.Zero(t, count)
}

func TestInTransaction_CommitFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(sql.ErrConnDone)

	err = InTransaction(context.Background(), db, func(ctx context.Context) error {
		return nil
	})
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTransaction_Empty(t *testing.T) {
	assert.Nil(t, GetTransaction(context.Background()))
}
