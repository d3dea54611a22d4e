package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/webkit/internal/models"
	"github.com/iudanet/webkit/internal/server/storage"
)

var userRowColumns = []string{"id", "username", "first_name", "last_name", "email", "password_hash", "avatar_service", "created_at", "last_login"}

func TestCreateUser(t *testing.T) {
	user := &models.User{
		ID:           "u-1",
		Username:     "alice",
		Email:        "a@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	}

	t.Run("success", func(t *testing.T) {
		s, mock := newStorageWithMock(t)
		mock.ExpectExec(regexp.QuoteMeta(queryCreateUser)).
			WithArgs("u-1", "alice", "", "", "a@example.com", "hash", "", sqlmock.AnyArg(), nil).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.CreateUser(context.Background(), user))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate username", func(t *testing.T) {
		s, mock := newStorageWithMock(t)
		mock.ExpectExec(regexp.QuoteMeta(queryCreateUser)).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

		err := s.CreateUser(context.Background(), user)
		assert.ErrorIs(t, err, storage.ErrUserAlreadyExists)
	})
}

func TestGetUserByUsername(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		s, mock := newStorageWithMock(t)
		rows := sqlmock.NewRows(userRowColumns).
			AddRow("u-1", "alice", "Alice", "Smith", "a@example.com", "hash", "initials", time.Now(), nil)
		mock.ExpectQuery(regexp.QuoteMeta(querySelectUser + ` WHERE username = $1`)).
			WithArgs("alice").
			WillReturnRows(rows)

		got, err := s.GetUserByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, "u-1", got.ID)
		assert.Equal(t, "Alice Smith", got.DisplayName())
		assert.Equal(t, "initials", got.AvatarServiceID)
		assert.Nil(t, got.LastLogin)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newStorageWithMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(querySelectUser + ` WHERE username = $1`)).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		_, err := s.GetUserByUsername(context.Background(), "ghost")
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
	})
}

func TestGetUserByID(t *testing.T) {
	s, mock := newStorageWithMock(t)
	login := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(userRowColumns).
		AddRow("u-1", "alice", "", "", "", "hash", "", time.Now(), login)
	mock.ExpectQuery(regexp.QuoteMeta(querySelectUser + ` WHERE id = $1`)).
		WithArgs("u-1").
		WillReturnRows(rows)

	got, err := s.GetUserByID(context.Background(), "u-1")
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.Equal(t, login, *got.LastLogin)
}

func TestUpdateUser(t *testing.T) {
	user := &models.User{ID: "u-1", Username: "alice", PasswordHash: "hash", AvatarServiceID: "gravatar"}

	tests := []struct {
		wantErr error
		name    string
		rows    int64
	}{
		{name: "updated", rows: 1},
		{name: "missing", rows: 0, wantErr: storage.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newStorageWithMock(t)
			mock.ExpectExec(regexp.QuoteMeta(queryUpdateUser)).
				WithArgs("alice", "", "", "", "hash", "gravatar", nil, "u-1").
				WillReturnResult(sqlmock.NewResult(0, tt.rows))

			err := s.UpdateUser(context.Background(), user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDeleteUserAndLastLogin(t *testing.T) {
	s, mock := newStorageWithMock(t)

	mock.ExpectExec(regexp.QuoteMeta(queryDeleteUser)).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(queryUpdateLastLogin)).
		WithArgs(sqlmock.AnyArg(), "u-2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.ErrorIs(t, s.DeleteUser(context.Background(), "u-1"), storage.ErrUserNotFound)
	assert.NoError(t, s.UpdateLastLogin(context.Background(), "u-2", time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
