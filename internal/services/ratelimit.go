package services

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// IPRateLimiter is the burst protection in front of the public resolve and
// shorten endpoints. The monthly creation quota is separate (QuotaLimiter).
type IPRateLimiter struct {
	ips      map[string]*ipLimiterEntry
	mu       sync.Mutex
	r        rate.Limit
	b        int
	logger   *slog.Logger
}

type ipLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPRateLimiter(r rate.Limit, b int, logger *slog.Logger) *IPRateLimiter {
	return &IPRateLimiter{
		ips:    make(map[string]*ipLimiterEntry),
		r:      r,
		b:      b,
		logger: logger,
	}
}

func (i *IPRateLimiter) StartCleanup(interval time.Duration) {
	go func() {
		for {
			time.Sleep(interval)
			cutoff := time.Now().Add(-interval)

			i.mu.Lock()
			before := len(i.ips)
			for ip, entry := range i.ips {
				if entry.lastSeen.Before(cutoff) {
					delete(i.ips, ip)
				}
			}
			if removed := before - len(i.ips); removed > 0 {
				i.logger.Info("Cleaned up rate limiter map", "removed", removed, "remaining", len(i.ips))
			}
			i.mu.Unlock()
		}
	}()
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	entry, exists := i.ips[ip]
	if !exists {
		entry = &ipLimiterEntry{limiter: rate.NewLimiter(i.r, i.b)}
		i.ips[ip] = entry
	}
	entry.lastSeen = time.Now()

	return entry.limiter
}
