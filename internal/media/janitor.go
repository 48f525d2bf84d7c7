package media

import (
	"context"
	"log"
	"os"
	"time"
)

// Janitor evicts cache entries older than the TTL. It runs one
// background goroutine that sweeps on a fixed interval until Shutdown.
type Janitor struct {
	index    *Index
	ttl      time.Duration
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewJanitor creates a cache janitor
func NewJanitor(index *Index, ttl, interval time.Duration) *Janitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Janitor{
		index:    index,
		ttl:      ttl,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start launches the background sweep loop
func (j *Janitor) Start() {
	go j.run()
	log.Printf("[Janitor] Started ttl=%s interval=%s", j.ttl, j.interval)
}

func (j *Janitor) run() {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.ctx.Done():
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

// sweep removes every entry past its TTL along with its file. A file
// that is already gone still gets its index row dropped.
func (j *Janitor) sweep() {
	entries, err := j.index.Stale(time.Now().Add(-j.ttl))
	if err != nil {
		log.Printf("[Janitor] Sweep failed err=%v", err)
		return
	}
	if len(entries) == 0 {
		return
	}

	evicted := 0
	for _, e := range entries {
		if err := os.Remove(e.Path); err != nil && !os.IsNotExist(err) {
			log.Printf("[Janitor] Failed to remove file path=%s err=%v", e.Path, err)
			continue
		}
		if err := j.index.Delete(e.CacheKey); err != nil {
			log.Printf("[Janitor] Failed to drop index entry key=%s err=%v", e.CacheKey, err)
			continue
		}
		evicted++
	}
	log.Printf("[Janitor] Sweep completed evicted=%d", evicted)
}

// Shutdown stops the sweep loop and waits for it to exit
func (j *Janitor) Shutdown() {
	j.cancel()
	<-j.done
	log.Printf("[Janitor] Stopped")
}
