// Copyright (c) 2026 QVSLV. All rights reserved.
// Author: dev@qvslv.org

package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/qvslv/qvslv-api/internal/platform/constants"
)

// RedisAuditor implements [Auditor] on a capped Redis list.
//
// # Design
//
// Events are LPUSHed to a single list and the list is trimmed to a fixed
// length, so the trail holds the most recent window of activity without
// unbounded growth. Every operation is best-effort: Redis being down must
// never fail a login.
type RedisAuditor struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisAuditor creates a Redis-backed authentication auditor.
func NewRedisAuditor(client *redis.Client, logger *slog.Logger) *RedisAuditor {
	return &RedisAuditor{client: client, logger: logger}
}

// Record appends an event to the audit trail.
func (auditor *RedisAuditor) Record(ctx context.Context, event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		auditor.logger.Error("audit_event_marshal_failed", slog.Any("error", err))
		return
	}

	pipe := auditor.client.TxPipeline()
	pipe.LPush(ctx, constants.RedisKeyAuthEvents, payload)
	pipe.LTrim(ctx, constants.RedisKeyAuthEvents, 0, constants.AuthEventsMaxLen-1)

	if _, err := pipe.Exec(ctx); err != nil {
		// Best-effort: log and move on, the credential operation already succeeded.
		auditor.logger.Warn("audit_event_record_failed",
			slog.String("kind", event.Kind),
			slog.Any("error", err),
		)
	}
}
