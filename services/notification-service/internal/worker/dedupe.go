package worker

import (
	"context"
	"time"
)

// Dedupe remembers which events were already notified.
type Dedupe interface {
	// Claim reports whether eventID is seen for the first time.
	Claim(ctx context.Context, eventID string) (bool, error)
	// Release forgets a claim so a retried delivery can notify again.
	Release(ctx context.Context, eventID string) error
}

type setNXer interface {
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisDedupe claims events with SETNX notify:event:<id>.
type RedisDedupe struct {
	Redis setNXer
	TTL   time.Duration
}

func dedupeKey(eventID string) string { return "notify:event:" + eventID }

func (d *RedisDedupe) Claim(ctx context.Context, eventID string) (bool, error) {
	return d.Redis.SetNX(ctx, dedupeKey(eventID), "1", d.TTL)
}

func (d *RedisDedupe) Release(ctx context.Context, eventID string) error {
	return d.Redis.Del(ctx, dedupeKey(eventID))
}
