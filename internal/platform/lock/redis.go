package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lease never removes a successor's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript pushes the expiry out only while the key still holds our token.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Redis takes leases with SET NX PX. A held lease is extended every third of
// its TTL until released, so the TTL only bounds how long a crashed holder can
// block others.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Redis{client: client, ttl: ttl, prefix: "archivist:lock:"}
}

func (r *Redis) TryLock(ctx context.Context, name string) (Lease, error) {
	key := r.prefix + name
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lock %s: %w", name, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}
	keepCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	l := &redisLease{
		client: r.client,
		key:    key,
		token:  token,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go l.keepAlive(keepCtx, r.ttl)
	return l, nil
}

type redisLease struct {
	client redis.UniversalClient
	key    string
	token  string

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// keepAlive extends the lease until cancelled or until the key no longer
// holds our token.
func (l *redisLease) keepAlive(ctx context.Context, ttl time.Duration) {
	defer close(l.done)
	interval := ttl / 3
	if interval <= 0 {
		interval = ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := extendScript.Run(ctx, l.client, []string{l.key}, l.token, ttl.Milliseconds()).Int64()
			if err != nil {
				// Transient; the next tick retries while the TTL still runs.
				continue
			}
			if n == 0 {
				return
			}
		}
	}
}

func (l *redisLease) Release(ctx context.Context) error {
	var err error
	l.once.Do(func() {
		l.cancel()
		<-l.done
		if rerr := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); rerr != nil && rerr != redis.Nil {
			err = fmt.Errorf("redis unlock %s: %w", l.key, rerr)
		}
	})
	return err
}
