package logic

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"telegram-dwh/internal/models"
	"telegram-dwh/internal/telegram"
)

// resolveConcurrency bounds the sender-resolution fan-out within one
// listing request; each resolution is an independent upstream round trip.
const resolveConcurrency = 8

// Resolver maps opaque peer ids to display attributes. The cache is
// request-scoped: upstream identity data can change between requests, so
// a Resolver must not outlive the listing it was created for.
type Resolver struct {
	client telegram.Client

	mu    sync.Mutex
	cache map[int64]models.Sender
}

// NewResolver creates a resolver for a single listing request
func NewResolver(client telegram.Client) *Resolver {
	return &Resolver{
		client: client,
		cache:  make(map[int64]models.Sender),
	}
}

// ResolveSender resolves one sender id. Resolution failures degrade to
// an "Unknown" sender rather than propagating: a deleted or inaccessible
// peer must never fail a message-listing request. The fallback is cached
// so repeated senders cost one round trip per request at most.
func (r *Resolver) ResolveSender(ctx context.Context, peerID int64) models.Sender {
	if peerID == 0 {
		return models.Sender{Name: "Unknown"}
	}

	r.mu.Lock()
	if s, ok := r.cache[peerID]; ok {
		r.mu.Unlock()
		return s
	}
	r.mu.Unlock()

	s := r.lookup(ctx, peerID)

	r.mu.Lock()
	r.cache[peerID] = s
	r.mu.Unlock()
	return s
}

// Prefetch resolves a set of sender ids concurrently, bounded by
// resolveConcurrency. Callers then read results through ResolveSender
// in upstream order, so output ordering never depends on completion
// order of the fan-out.
func (r *Resolver) Prefetch(ctx context.Context, peerIDs []int64) {
	seen := make(map[int64]struct{}, len(peerIDs))
	sem := make(chan struct{}, resolveConcurrency)
	var wg sync.WaitGroup

	for _, id := range peerIDs {
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			r.ResolveSender(ctx, id)
		}(id)
	}
	wg.Wait()
}

func (r *Resolver) lookup(ctx context.Context, peerID int64) models.Sender {
	ent, err := r.client.Entity(ctx, peerID)
	if err != nil {
		log.Printf("[Resolver] Entity resolution failed peer_id=%d err=%v", peerID, err)
		return models.Sender{ID: peerID, Name: "Unknown"}
	}

	s := models.Sender{
		ID:       peerID,
		Name:     displayName(ent),
		Username: ent.Username,
	}
	if ent.HasPhoto {
		s.AvatarURL = AvatarURL(peerID)
	}
	return s
}

// displayName derives the display name for an entity: users prefer
// "First Last" then first name alone; groups and channels use their
// title; anything else falls back to "N/A".
func displayName(e *telegram.Entity) string {
	if e.Kind == telegram.PeerUser && e.FirstName != "" {
		name := e.FirstName
		if e.LastName != "" {
			name += " " + e.LastName
		}
		return strings.TrimSpace(name)
	}
	if e.Title != "" {
		return e.Title
	}
	return "N/A"
}

// AvatarURL is the stable avatar fetch path for a peer
func AvatarURL(peerID int64) string {
	return fmt.Sprintf("/chat_avatar/%d", peerID)
}
