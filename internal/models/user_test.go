package models

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Validate(t *testing.T) {
	tests := []struct {
		name string
		user User
		want error
	}{
		{name: "valid", user: User{Email: "priya@example.com", Name: "Priya"}},
		{name: "missing email", user: User{Name: "Priya"}, want: ErrEmailRequired},
		{name: "no domain", user: User{Email: "priya@example", Name: "Priya"}, want: ErrInvalidEmail},
		{name: "whitespace in email", user: User{Email: "pri ya@example.com", Name: "Priya"}, want: ErrInvalidEmail},
		{name: "name padded to one rune", user: User{Email: "priya@example.com", Name: " P "}, want: ErrNameTooShort},
		{name: "two rune name", user: User{Email: "li@example.com", Name: "李明"}},
		{name: "multibyte name at limit", user: User{Email: "priya@example.com", Name: strings.Repeat("é", MaxNameLength)}},
		{name: "name too long", user: User{Email: "priya@example.com", Name: strings.Repeat("n", MaxNameLength+1)}, want: ErrNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "priya@example.com", NormalizeEmail("  Priya@Example.COM "))
}

func TestUser_FailedAttemptsLockAtThreshold(t *testing.T) {
	user := User{}

	user.IncrementFailedAttempts(3)
	user.IncrementFailedAttempts(3)
	assert.False(t, user.IsLocked())

	user.IncrementFailedAttempts(3)
	require.True(t, user.IsLocked())
	lockedAt := *user.LockedAt

	user.IncrementFailedAttempts(3)
	assert.Equal(t, 4, user.FailedLoginAttempts)
	assert.Equal(t, lockedAt, *user.LockedAt, "lock time is kept on further failures")

	user.ResetFailedAttempts()
	assert.Zero(t, user.FailedLoginAttempts)
	assert.False(t, user.IsLocked())
}

func TestUser_LockingDisabled(t *testing.T) {
	user := User{}
	for i := 0; i < 10; i++ {
		user.IncrementFailedAttempts(0)
	}

	assert.Equal(t, 10, user.FailedLoginAttempts)
	assert.False(t, user.IsLocked())
}

func TestUser_BeforeCreateNormalizes(t *testing.T) {
	user := User{Email: "  Test@Example.com", Name: " Priya "}

	require.NoError(t, user.BeforeCreate(nil))

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, "Priya", user.Name)

	invalid := User{Email: "nobody", Name: "Priya"}
	assert.ErrorIs(t, invalid.BeforeCreate(nil), ErrInvalidEmail)
}
