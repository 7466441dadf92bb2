package app

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"

	"rideshare/internal/config"
)

func TestKeyNamespace(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name string
		cmd  redis.Cmder
		want string
	}{
		{"ride cache", redis.NewStringCmd(ctx, "get", "cache:ride:42"), "cache:ride"},
		{"idempotency", redis.NewStatusCmd(ctx, "set", "idempotency:abc", "{}"), "idempotency"},
		{"bare key", redis.NewStringCmd(ctx, "get", "plain"), "plain"},
		{"no key", redis.NewStatusCmd(ctx, "ping"), "redis"},
		{"non-string key", redis.NewStringCmd(ctx, "get", 7), "redis"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := keyNamespace(tc.cmd); got != tc.want {
				t.Errorf("keyNamespace(%v) = %q, want %q", tc.cmd.Args(), got, tc.want)
			}
		})
	}
}

func TestNewRedisSegmentHook_SplitsAddr(t *testing.T) {
	h := newRedisSegmentHook(config.RedisConfig{Addr: "cache.internal:6380", DB: 2})
	if h.host != "cache.internal" || h.port != "6380" || h.db != "2" {
		t.Errorf("unexpected hook target %+v", h)
	}

	h = newRedisSegmentHook(config.RedisConfig{Addr: "/tmp/redis.sock"})
	if h.host != "/tmp/redis.sock" || h.port != "" {
		t.Errorf("unexpected hook target for socket addr %+v", h)
	}
}
