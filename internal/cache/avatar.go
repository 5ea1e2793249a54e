// internal/cache/avatar.go
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// avatarTTL bounds how long an uploaded avatar outlives its room.
const avatarTTL = 24 * time.Hour

// MaxAvatarBytes caps uploads; anything larger is rejected at the boundary.
const MaxAvatarBytes = 256 * 1024

// Avatar is a stored avatar image blob.
type Avatar struct {
	ContentType string
	Data        []byte
}

func avatarKey(id string) string { return "avatar:" + id }

// StoreAvatar saves an avatar blob under a fresh id and returns the id.
func StoreAvatar(ctx context.Context, a Avatar) (string, error) {
	if len(a.Data) == 0 {
		return "", fmt.Errorf("empty avatar payload")
	}
	if len(a.Data) > MaxAvatarBytes {
		return "", fmt.Errorf("avatar exceeds %d bytes", MaxAvatarBytes)
	}
	id, _ := uuid.NewRandom()
	key := avatarKey(id.String())
	if err := Rdb.HSet(ctx, key, "content_type", a.ContentType, "data", a.Data).Err(); err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}
	if err := Rdb.Expire(ctx, key, avatarTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to set avatar TTL: %w", err)
	}
	return id.String(), nil
}

// FetchAvatar loads a stored avatar by id. Returns a nil Avatar on a miss.
func FetchAvatar(ctx context.Context, id string) (*Avatar, error) {
	vals, err := Rdb.HGetAll(ctx, avatarKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch avatar: %w", err)
	}
	if len(vals) == 0 {
		return nil, nil
	}
	return &Avatar{
		ContentType: vals["content_type"],
		Data:        []byte(vals["data"]),
	}, nil
}
