package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const generationLockPrefix = "generation_lock:"

// releaseLockScript deletes the lock only while it still holds the caller's token.
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// GenerationGuard allows one generation per user at a time. The lock expires
// on its own after ttl so a crashed request never blocks the user for good.
type GenerationGuard struct {
	redis    *redis.Client
	ttl      time.Duration
	newToken func() string
}

func NewGenerationGuard(client *redis.Client, ttl time.Duration) *GenerationGuard {
	return &GenerationGuard{redis: client, ttl: ttl, newToken: uuid.NewString}
}

// Acquire takes the user's generation lock. It returns *ConflictError when a
// generation is already running for the user. The returned release leaves a
// lock alone once it has expired and been taken by another request.
func (g *GenerationGuard) Acquire(ctx context.Context, userID uuid.UUID) (func(), error) {
	key := generationLockPrefix + userID.String()
	token := g.newToken()

	locked, err := g.redis.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire generation lock: %w", err)
	}
	if !locked {
		return nil, &ConflictError{Message: "A generation is already in progress. Please wait for it to finish."}
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		releaseLockScript.Run(ctx, g.redis, []string{key}, token)
	}
	return release, nil
}
