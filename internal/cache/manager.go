package cache

import (
	"context"
	"time"
)

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically cleans registered caches until its context ends.
type Janitor struct {
	caches []Cleaner
	done   chan struct{}
}

func NewJanitor(caches ...Cleaner) *Janitor {
	return &Janitor{
		caches: caches,
		done:   make(chan struct{}),
	}
}

// Start runs the cleanup loop in a goroutine. Cancel ctx to stop it; Wait
// blocks until the loop has exited.
func (j *Janitor) Start(ctx context.Context, interval time.Duration) {
	go func() {
		defer close(j.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, c := range j.caches {
					c.CleanExpired()
				}
			}
		}
	}()
}

func (j *Janitor) Wait() {
	<-j.done
}
