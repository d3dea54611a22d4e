package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	// bcrypt использует случайную соль - два хеша одного пароля различаются
	hash2, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}

func TestHashPassword_Empty(t *testing.T) {
	hash, err := HashPassword("")
	require.Error(t, err)
	assert.Empty(t, hash)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)

	tests := []struct {
		wantErr  error
		name     string
		password string
		hash     string
		errMsg   string
	}{
		{
			name:     "valid password",
			password: "s3cret-password",
			hash:     hash,
		},
		{
			name:     "wrong password",
			password: "other-password",
			hash:     hash,
			wantErr:  ErrInvalidPassword,
		},
		{
			name:     "empty password",
			password: "",
			hash:     hash,
			errMsg:   "password cannot be empty",
		},
		{
			name:     "empty hash",
			password: "s3cret-password",
			hash:     "",
			errMsg:   "password hash cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyPassword(tt.password, tt.hash)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			default:
				assert.NoError(t, err)
			}
		})
	}
}
