package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqljudge/internal/table"
)

func TestBaseQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT name, age FROM users").WillReturnRows(
		sqlmock.NewRows([]string{"name", "age"}).
			AddRow("amy", int64(30)).
			AddRow("bob", nil))

	b := &Base{DB: db}
	rows, err := b.Query(context.Background(), "SELECT name, age FROM users")
	require.NoError(t, err)

	got, err := table.FromRows(rows)
	require.NoError(t, err)
	require.Equal(t, 2, got.NumRows())
	assert.Equal(t, []string{"name", "age"}, got.Names())
	assert.Equal(t, table.Text("amy"), got.Columns[0].Values[0])
	assert.Equal(t, table.Number(30), got.Columns[1].Values[0])
	assert.True(t, got.Columns[1].Values[1].IsNull())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBaseExec(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("ANALYZE").WillReturnResult(sqlmock.NewResult(0, 0))

	b := &Base{DB: db}
	require.NoError(t, b.Exec(context.Background(), "ANALYZE"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBaseRequiresConnection(t *testing.T) {
	b := &Base{}
	assert.False(t, b.IsConnected())

	err := b.Exec(context.Background(), "SELECT 1")
	require.Error(t, err)

	_, err = b.Query(context.Background(), "SELECT 1")
	require.Error(t, err)
}
