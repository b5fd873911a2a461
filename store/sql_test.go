package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*SQL, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS settled_authorizations").
		WillReturnResult(sqlmock.NewResult(0, 0))

	s, err := NewSQL(db)
	require.NoError(t, err)
	return s, mock
}

func TestSQLSeen(t *testing.T) {
	s, mock := setupStore(t)

	mock.ExpectQuery("SELECT 1 FROM settled_authorizations WHERE signature = \\?").
		WithArgs("sig-a").
		WillReturnError(sql.ErrNoRows)

	seen, err := s.Seen(context.Background(), "sig-a")
	require.NoError(t, err)
	require.False(t, seen)

	mock.ExpectQuery("SELECT 1 FROM settled_authorizations WHERE signature = \\?").
		WithArgs("sig-b").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	seen, err = s.Seen(context.Background(), "sig-b")
	require.NoError(t, err)
	require.True(t, seen)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRecord(t *testing.T) {
	s, mock := setupStore(t)

	mock.ExpectExec("INSERT INTO settled_authorizations").
		WithArgs("sig-a", "tx-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Record(context.Background(), "sig-a", "tx-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
