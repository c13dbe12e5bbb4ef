package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "mama-mbogas-shop", Slugify("  Mama Mboga's   Shop! "))
	assert.Equal(t, "", Slugify("!!!"))
	assert.Contains(t, UniqueSlug("Acme Ltd"), "acme-ltd-")
}

func TestDayBounds(t *testing.T) {
	day, err := ParseDate("2024-03-10")
	require.NoError(t, err)

	start, end := DayBounds(day.Add(15 * time.Hour))
	assert.Equal(t, day, start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))

	_, err = ParseDate("10/03/2024")
	assert.Error(t, err)
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, 2*time.Hour)
	userID, tenantID := uuid.New(), uuid.New()

	token, err := m.GenerateAccessToken(userID, tenantID, "a@b.c", []string{"owner"}, []string{"manage-receipts"})
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, tenantID, claims.TenantID)
	assert.Equal(t, []string{"manage-receipts"}, claims.Permissions)

	refresh, err := m.GenerateRefreshToken(userID)
	require.NoError(t, err)
	got, err := m.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = NewJWTManager("other", time.Hour, time.Hour).ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
