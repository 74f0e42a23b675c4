package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

const claimedMarker = "-"

// Locker keeps the draft submit lock in redis so every console instance
// sees the same claim. It satisfies session.Locker.
type Locker struct {
	rdb redis.Cmdable
}

func NewLocker(rdb redis.Cmdable) *Locker {
	return &Locker{rdb: rdb}
}

func key(draftID string) string { return fmt.Sprintf(KeyIdemDraftSubmit, draftID) }

func (l *Locker) Claim(ctx context.Context, draftID string, ttl time.Duration) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, key(draftID), claimedMarker, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (l *Locker) Complete(ctx context.Context, draftID, orderID string, ttl time.Duration) error {
	if err := l.rdb.Set(ctx, key(draftID), orderID, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (l *Locker) Lookup(ctx context.Context, draftID string) (string, bool, error) {
	v, err := l.rdb.Get(ctx, key(draftID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	if v == claimedMarker {
		return "", false, nil
	}
	return v, true, nil
}

func (l *Locker) Release(ctx context.Context, draftID string) error {
	if err := l.rdb.Del(ctx, key(draftID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
