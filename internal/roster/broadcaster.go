// ABOUTME: In-memory fan-out broadcaster for per-partition snapshot streams
// ABOUTME: Publishes full student snapshots to all subscribers of an owner's partition

package roster

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rosterhq/roster/internal/store"
)

const (
	// subscriberBufferSize is the channel buffer for each subscriber.
	subscriberBufferSize = 16
)

// SnapshotBroadcaster provides in-memory pub/sub for student snapshots.
// Subscribers register for an owner's partition and receive the complete
// record list every time a mutation lands. Because each event is a full
// snapshot, delivery is latest-wins: when a subscriber falls behind, stale
// snapshots are discarded in favor of the newest one.
type SnapshotBroadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]chan []*store.Student // ownerID -> subID -> ch
	logger      *slog.Logger
}

// NewSnapshotBroadcaster creates a broadcaster. Pass nil logger for default.
func NewSnapshotBroadcaster(logger *slog.Logger) *SnapshotBroadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotBroadcaster{
		subscribers: make(map[string]map[string]chan []*store.Student),
		logger:      logger.With("component", "broadcaster"),
	}
}

// Subscribe registers a subscriber for snapshots of the given owner's
// partition. Returns a channel that receives snapshots and a subscription
// ID for later unsubscription. The subscription is automatically cleaned
// up when ctx is cancelled, so an abandoned stream never keeps listening
// against its partition.
func (b *SnapshotBroadcaster) Subscribe(ctx context.Context, ownerID string) (<-chan []*store.Student, string) {
	subID := uuid.New().String()
	ch := make(chan []*store.Student, subscriberBufferSize)

	b.mu.Lock()
	if _, ok := b.subscribers[ownerID]; !ok {
		b.subscribers[ownerID] = make(map[string]chan []*store.Student)
	}
	b.subscribers[ownerID][subID] = ch
	b.mu.Unlock()

	b.logger.Debug("subscriber added", "owner_id", ownerID, "sub_id", subID)

	// Auto-cleanup on context cancellation
	go func() {
		<-ctx.Done()
		b.Unsubscribe(ownerID, subID)
	}()

	return ch, subID
}

// Publish sends a snapshot to all subscribers of the given owner.
// Non-blocking: a full subscriber channel has one stale snapshot evicted
// so the newest state is what eventually gets rendered.
//
// Sends happen under the read lock. Unsubscribe and Close only close a
// channel while holding the write lock, so a close can never interleave
// with a send. Every send here is non-blocking, so the lock is never
// held across a wait.
func (b *SnapshotBroadcaster) Publish(ownerID string, snapshot []*store.Student) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers[ownerID] {
		select {
		case ch <- snapshot:
			// Sent
		default:
			// Subscriber is behind — evict one stale snapshot and retry
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
				b.logger.Debug("dropped snapshot for slow subscriber", "owner_id", ownerID)
			}
		}
	}
}

// Unsubscribe removes a subscription and closes its channel.
func (b *SnapshotBroadcaster) Unsubscribe(ownerID, subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.subscribers[ownerID]
	if !ok {
		return
	}

	ch, exists := subs[subID]
	if !exists {
		return
	}

	delete(subs, subID)
	close(ch)

	// Clean up empty partition entries
	if len(subs) == 0 {
		delete(b.subscribers, ownerID)
	}

	b.logger.Debug("subscriber removed", "owner_id", ownerID, "sub_id", subID)
}

// Close shuts down the broadcaster and closes all subscriber channels.
func (b *SnapshotBroadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ownerID, subs := range b.subscribers {
		for subID, ch := range subs {
			close(ch)
			delete(subs, subID)
		}
		delete(b.subscribers, ownerID)
	}

	b.logger.Debug("broadcaster closed")
}
