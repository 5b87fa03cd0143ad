package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/airops/internal/domain/service"
	"github.com/turtacn/airops/pkg/errors"
	"github.com/turtacn/airops/pkg/logger"
)

var _ service.EvaluationLocker = (*EvaluationLockImpl)(nil)

// releaseLockScript deletes the lock only when the caller still owns it. A
// holder whose TTL expired must not release a lock re-acquired by another run.
const releaseLockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`

// EvaluationLockImpl implements the per-tenant evaluation lock on Redis using
// SET NX with an owner token. The TTL covers the evaluation budget plus a
// margin, so a crashed holder frees the tenant without manual intervention.
type EvaluationLockImpl struct {
	conn *RedisConnection
	log  logger.Logger
}

// NewEvaluationLock creates a Redis-backed evaluation locker.
func NewEvaluationLock(conn *RedisConnection, log logger.Logger) *EvaluationLockImpl {
	return &EvaluationLockImpl{conn: conn, log: log}
}

func lockKey(tenantID string) string {
	return fmt.Sprintf("airops:evaluation:lock:%s", tenantID)
}

// Acquire takes the tenant's evaluation token or fails fast with
// ErrEvaluationBusy when another run holds it.
func (l *EvaluationLockImpl) Acquire(ctx context.Context, tenantID string, ttl time.Duration) (service.Unlocker, *errors.AppError) {
	token := uuid.NewString()
	ok, err := l.conn.Client.SetNX(ctx, lockKey(tenantID), token, ttl).Result()
	if err != nil {
		return nil, errors.ErrCache("acquire evaluation lock", err).WithMetadata("tenant_id", tenantID)
	}
	if !ok {
		return nil, errors.ErrEvaluationBusy(tenantID)
	}

	l.log.Debug(ctx, "evaluation lock acquired",
		logger.String("tenant_id", tenantID),
		logger.Duration("ttl", ttl))
	return &redisUnlocker{lock: l, tenantID: tenantID, token: token}, nil
}

type redisUnlocker struct {
	lock     *EvaluationLockImpl
	tenantID string
	token    string
}

// Unlock releases the token if this holder still owns it.
func (u *redisUnlocker) Unlock(ctx context.Context) error {
	res, err := u.lock.conn.Client.Eval(ctx, releaseLockScript, []string{lockKey(u.tenantID)}, u.token).Result()
	if err != nil {
		return err
	}
	if n, ok := res.(int64); ok && n == 0 {
		u.lock.log.Warn(ctx, "evaluation lock already expired or taken over",
			logger.String("tenant_id", u.tenantID))
	}
	return nil
}
