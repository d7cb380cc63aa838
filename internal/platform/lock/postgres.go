package lock

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
)

// Postgres uses session-level advisory locks. Each lease pins a dedicated
// connection because the lock belongs to the session that took it.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// AdvisoryKey maps a lock name to the bigint key space of pg_advisory_lock.
func AdvisoryKey(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64())
}

func (p *Postgres) TryLock(ctx context.Context, name string) (Lease, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire lock connection: %w", err)
	}
	key := AdvisoryKey(name)
	var acquired bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&acquired); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("try advisory lock %s: %w", name, err)
	}
	if !acquired {
		_ = conn.Close()
		return nil, ErrNotAcquired
	}
	return &postgresLease{conn: conn, key: key}, nil
}

type postgresLease struct {
	conn *sql.Conn
	key  int64
}

func (l *postgresLease) Release(ctx context.Context) error {
	defer l.conn.Close()
	if _, err := l.conn.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", l.key); err != nil {
		return fmt.Errorf("advisory unlock: %w", err)
	}
	return nil
}
