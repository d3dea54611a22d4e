package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorageWithMock(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	return NewWithDB(db), mock
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, want: true},
		{name: "wrapped unique violation", err: fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505"}), want: true},
		{name: "foreign key violation", err: &pgconn.PgError{Code: "23503"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}

func TestExpectAffected(t *testing.T) {
	notFound := errors.New("not found")

	assert.NoError(t, expectAffected(sqlmock.NewResult(0, 1), notFound))
	assert.ErrorIs(t, expectAffected(sqlmock.NewResult(0, 0), notFound), notFound)

	err := expectAffected(sqlmock.NewErrorResult(errors.New("driver")), notFound)
	require.Error(t, err)
	assert.NotErrorIs(t, err, notFound)
}

func TestClose(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	require.NoError(t, NewWithDB(db).Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
