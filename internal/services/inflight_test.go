package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationGuard_Acquire(t *testing.T) {
	db, mock := redismock.NewClientMock()
	guard := NewGenerationGuard(db, 2*time.Minute)
	guard.newToken = func() string { return "token-1" }
	ctx := context.Background()
	userID := uuid.New()
	key := "generation_lock:" + userID.String()

	t.Run("FreeLockIsTakenAndReleased", func(t *testing.T) {
		mock.ExpectSetNX(key, "token-1", 2*time.Minute).SetVal(true)
		mock.ExpectEvalSha(releaseLockScript.Hash(), []string{key}, "token-1").SetVal(int64(1))

		release, err := guard.Acquire(ctx, userID)
		require.NoError(t, err)
		release()

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ExpiredLockTakenByAnotherRequestIsKept", func(t *testing.T) {
		mock.ExpectSetNX(key, "token-1", 2*time.Minute).SetVal(true)
		// The lock now holds a different token, so the compare-and-delete is a no-op.
		mock.ExpectEvalSha(releaseLockScript.Hash(), []string{key}, "token-1").SetVal(int64(0))

		release, err := guard.Acquire(ctx, userID)
		require.NoError(t, err)
		release()

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("HeldLockIsConflict", func(t *testing.T) {
		mock.ExpectSetNX(key, "token-1", 2*time.Minute).SetVal(false)

		release, err := guard.Acquire(ctx, userID)

		assert.Nil(t, release)
		var conflict *ConflictError
		assert.ErrorAs(t, err, &conflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RedisError", func(t *testing.T) {
		redisErr := errors.New("connection refused")
		mock.ExpectSetNX(key, "token-1", 2*time.Minute).SetErr(redisErr)

		_, err := guard.Acquire(ctx, userID)

		assert.ErrorIs(t, err, redisErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGenerationGuard_TokensAreUniquePerAcquire(t *testing.T) {
	guard := NewGenerationGuard(nil, time.Minute)

	assert.NotEqual(t, guard.newToken(), guard.newToken())
}
