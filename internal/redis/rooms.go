package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const roomKeyPrefix = "room:"

// RoomRegistry reserves generated room ids across api-server replicas.
// Each reservation holds a random token so only its owner can release it.
type RoomRegistry struct {
	client *redis.Client
}

func NewRoomRegistry(client *redis.Client) *RoomRegistry {
	return &RoomRegistry{client: client}
}

// Reserve claims roomID for ttl and returns the token needed to release it.
// ok is false if the id is taken.
func (r *RoomRegistry) Reserve(ctx context.Context, roomID string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, roomKeyPrefix+roomID, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("reserve room %s: %w", roomID, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

var releaseScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

// Release frees roomID if token still owns it.
func (r *RoomRegistry) Release(ctx context.Context, roomID, token string) (bool, error) {
	n, err := releaseScript.Run(ctx, r.client, []string{roomKeyPrefix + roomID}, token).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("release room %s: %w", roomID, err)
	}
	return n == 1, nil
}

// Ping reports whether redis is reachable.
func (r *RoomRegistry) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
