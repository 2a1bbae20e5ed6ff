package server

import (
	"context"
	"strconv"
	"sync"
	"time"

	"Tcp_postgres_redis_library_system/db"

	"github.com/redis/go-redis/v9"
)

// presence stamps users.last_seen_at on authenticated traffic, at most once
// per throttle window. With Redis the throttle key is shared between server
// instances; without it a local map is close enough.
type presence struct {
	repo     *db.Repo
	rdb      *redis.Client
	throttle time.Duration

	mu   sync.Mutex
	seen map[uint]time.Time
}

func newPresence(repo *db.Repo, rdb *redis.Client, throttle time.Duration) *presence {
	return &presence{
		repo:     repo,
		rdb:      rdb,
		throttle: throttle,
		seen:     make(map[uint]time.Time),
	}
}

func (p *presence) touch(ctx context.Context, userID uint) {
	if p.throttle <= 0 {
		return
	}
	if p.rdb != nil {
		key := "lib:lastseen:" + strconv.FormatUint(uint64(userID), 10)
		if ok, _ := p.rdb.SetNX(ctx, key, "1", p.throttle).Result(); !ok {
			return
		}
	} else {
		p.mu.Lock()
		last, ok := p.seen[userID]
		if ok && time.Since(last) < p.throttle {
			p.mu.Unlock()
			return
		}
		p.seen[userID] = time.Now()
		p.mu.Unlock()
	}
	// Best effort; never blocks the request on failure.
	_ = p.repo.TouchUserSeen(ctx, userID)
}
