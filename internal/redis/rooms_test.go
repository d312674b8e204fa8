package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/peer-support-platform/internal/booking"
	"github.com/hackgods/peer-support-platform/internal/random"
)

var _ booking.RoomRegistry = (*RoomRegistry)(nil)

func newRegistry(t *testing.T) (*RoomRegistry, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRoomRegistry(client), mr
}

func TestReserveIsExclusive(t *testing.T) {
	reg, mr := newRegistry(t)
	ctx := context.Background()

	_, ok, err := reg.Reserve(ctx, "482913", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = reg.Reserve(ctx, "482913", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, mr.Exists("room:482913"))
	assert.Equal(t, time.Hour, mr.TTL("room:482913"))
}

func TestReservationExpires(t *testing.T) {
	reg, mr := newRegistry(t)
	ctx := context.Background()

	_, ok, err := reg.Reserve(ctx, "Anxiety-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(time.Minute + time.Second)

	_, ok, err = reg.Reserve(ctx, "Anxiety-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReleaseRequiresOwnerToken(t *testing.T) {
	reg, mr := newRegistry(t)
	ctx := context.Background()

	token, ok, err := reg.Reserve(ctx, "room-7", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	released, err := reg.Release(ctx, "room-7", "someone-else")
	require.NoError(t, err)
	assert.False(t, released)
	assert.True(t, mr.Exists("room:room-7"))

	released, err = reg.Release(ctx, "room-7", token)
	require.NoError(t, err)
	assert.True(t, released)
	assert.False(t, mr.Exists("room:room-7"))
}

func TestReserveSurfacesConnectionErrors(t *testing.T) {
	reg, mr := newRegistry(t)
	mr.Close()

	_, _, err := reg.Reserve(context.Background(), "room-8", time.Hour)
	assert.Error(t, err)
	assert.Error(t, reg.Ping(context.Background()))
}

func TestNewRedisClientPings(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	client, err := NewRedisClient(context.Background(), Options{Addr: addr})
	require.NoError(t, err)
	_ = client.Close()

	mr.Close()
	_, err = NewRedisClient(context.Background(), Options{Addr: addr})
	assert.Error(t, err)
}

func TestIssuerReleasesThroughRedis(t *testing.T) {
	reg, mr := newRegistry(t)
	issuer := booking.NewRoomIssuer(reg, random.Seeded(4), "Anxiety", time.Hour)
	ctx := context.Background()

	res, err := issuer.Issue(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists("room:"+res.RoomID))
	assert.Equal(t, res.Token, mustGet(t, mr, "room:"+res.RoomID))

	require.NoError(t, issuer.Release(ctx, res))
	assert.False(t, mr.Exists("room:"+res.RoomID))
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}
