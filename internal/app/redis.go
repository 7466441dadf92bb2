package app

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"rideshare/internal/config"
)

// NewRedisClient connects to Redis and verifies the connection. When nrApp is
// set every command is reported as a datastore segment.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, nrApp *newrelic.Application) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if nrApp != nil {
		client.AddHook(newRedisSegmentHook(cfg))
	}

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// redisSegmentHook reports commands on the transaction carried by the
// request context. The segment collection is the key namespace, e.g.
// "cache:ride" or "idempotency", so ride cache and idempotency traffic
// show up separately.
type redisSegmentHook struct {
	host string
	port string
	db   string
}

func newRedisSegmentHook(cfg config.RedisConfig) *redisSegmentHook {
	host, port, err := net.SplitHostPort(cfg.Addr)
	if err != nil {
		host, port = cfg.Addr, ""
	}
	return &redisSegmentHook{host: host, port: port, db: strconv.Itoa(cfg.DB)}
}

func (h *redisSegmentHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h *redisSegmentHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if txn := newrelic.FromContext(ctx); txn != nil {
			defer h.segment(txn, cmd.Name(), keyNamespace(cmd)).End()
		}
		return next(ctx, cmd)
	}
}

func (h *redisSegmentHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		if txn := newrelic.FromContext(ctx); txn != nil && len(cmds) > 0 {
			defer h.segment(txn, "pipeline", keyNamespace(cmds[0])).End()
		}
		return next(ctx, cmds)
	}
}

func (h *redisSegmentHook) segment(txn *newrelic.Transaction, operation, collection string) *newrelic.DatastoreSegment {
	return &newrelic.DatastoreSegment{
		StartTime:    txn.StartSegmentNow(),
		Product:      newrelic.DatastoreRedis,
		Operation:    operation,
		Collection:   collection,
		Host:         h.host,
		PortPathOrID: h.port,
		DatabaseName: h.db,
	}
}

// keyNamespace returns the key of cmd up to its last ':' separator. Commands
// without a string key report "redis".
func keyNamespace(cmd redis.Cmder) string {
	args := cmd.Args()
	if len(args) < 2 {
		return "redis"
	}
	key, ok := args[1].(string)
	if !ok || key == "" {
		return "redis"
	}
	if i := strings.LastIndex(key, ":"); i > 0 {
		return key[:i]
	}
	return key
}
