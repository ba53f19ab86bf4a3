package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlacklistedToken_Purgeable(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	assert.False(t, (&BlacklistedToken{ExpiresAt: now.Add(time.Second)}).Purgeable(now))
	assert.True(t, (&BlacklistedToken{ExpiresAt: now}).Purgeable(now))
	assert.True(t, (&BlacklistedToken{ExpiresAt: now.Add(-time.Hour)}).Purgeable(now))
}

func TestBlacklistedToken_BeforeCreateStampsTimes(t *testing.T) {
	token := BlacklistedToken{JTI: "jti-1"}
	require.NoError(t, token.BeforeCreate(nil))

	assert.NotEqual(t, uuid.Nil, token.ID)
	assert.WithinDuration(t, time.Now(), token.BlacklistedAt, time.Minute)

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	preset := BlacklistedToken{BlacklistedAt: at}
	require.NoError(t, preset.BeforeCreate(nil))
	assert.Equal(t, at, preset.BlacklistedAt)
}
