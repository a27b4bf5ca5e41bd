package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func freezeClock(t *testing.T, at time.Time) *time.Time {
	t.Helper()
	old := now
	cur := at
	now = func() time.Time { return cur }
	t.Cleanup(func() { now = old })
	return &cur
}

func TestSignAndParse(t *testing.T) {
	clock := freezeClock(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	m, err := NewManager([]byte("secret"), 24*time.Hour)
	require.NoError(t, err)

	token, err := m.Sign("65a1b2c3d4e5f60718293a4b", "jane@example.com")
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "65a1b2c3d4e5f60718293a4b", claims.ID)
	require.Equal(t, "65a1b2c3d4e5f60718293a4b", claims.Subject)
	require.Equal(t, "jane@example.com", claims.Email)
	require.Equal(t, clock.Add(24*time.Hour).Unix(), claims.ExpiresAt.Unix())

	*clock = clock.Add(25 * time.Hour)
	_, err = m.Parse(token)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseRejects(t *testing.T) {
	m, err := NewManager([]byte("secret"), time.Hour)
	require.NoError(t, err)
	other, err := NewManager([]byte("other"), time.Hour)
	require.NoError(t, err)

	foreign, err := other.Sign("id", "a@b.c")
	require.NoError(t, err)
	_, err = m.Parse(foreign)
	require.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	_, err = m.Parse("not-a-token")
	require.Error(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		ID: "id",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Parse(none)
	require.Error(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{ID: "id"}).
		SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.Parse(noExp)
	require.Error(t, err)
}

func TestNewManagerValidates(t *testing.T) {
	_, err := NewManager(nil, time.Hour)
	require.Error(t, err)
	_, err = NewManager([]byte("s"), 0)
	require.Error(t, err)
}
