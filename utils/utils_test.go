package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheck(t *testing.T) {
	h, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", h)
	assert.True(t, CheckPasswordHash("secret123", h))
	assert.False(t, CheckPasswordHash("wrong", h))
}

func TestAdminToken_RoundTrip(t *testing.T) {
	secret := []byte("s3cret")
	tok, err := GenerateAdminToken(secret, time.Hour)
	require.NoError(t, err)
	assert.NoError(t, VerifyAdminToken(secret, tok))
	assert.Error(t, VerifyAdminToken([]byte("other"), tok))
}

func TestAdminToken_Rejects(t *testing.T) {
	secret := []byte("s3cret")

	expired, err := GenerateAdminToken(secret, -time.Minute)
	require.NoError(t, err)

	notAdmin, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "user",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"role": "admin",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"expired":   expired,
		"not admin": notAdmin,
		"alg none":  unsigned,
		"garbage":   "not.a.jwt",
	} {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, VerifyAdminToken(secret, tok))
		})
	}
}

func TestErrAttr(t *testing.T) {
	a := ErrAttr(errors.New("boom"))
	assert.Equal(t, "error", a.Key)
	assert.Equal(t, "boom", a.Value.String())
}

func TestCacheInvalidator(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	require.NoError(t, mr.Set(EventsListKeyPrefix+"a", "1"))
	require.NoError(t, mr.Set(EventsListKeyPrefix+"b", "1"))
	require.NoError(t, mr.Set(EventsItemKeyPrefix+"42", "1"))
	require.NoError(t, mr.Set(EventsItemKeyPrefix+"43", "1"))

	inv := NewCacheInvalidator(rdb)
	inv.PurgeEventsList(ctx)
	assert.False(t, mr.Exists(EventsListKeyPrefix+"a"))
	assert.False(t, mr.Exists(EventsListKeyPrefix+"b"))
	assert.True(t, mr.Exists(EventsItemKeyPrefix+"42"))

	inv.PurgeEventItem(ctx, "42")
	assert.False(t, mr.Exists(EventsItemKeyPrefix+"42"))
	assert.True(t, mr.Exists(EventsItemKeyPrefix+"43"))
}

func TestCacheInvalidator_NilIsNoop(t *testing.T) {
	var inv *CacheInvalidator
	assert.NotPanics(t, func() {
		inv.PurgeEventsList(context.Background())
		inv.PurgeEventItem(context.Background(), "x")
	})
}
