// Package registry implements the per-process connection registry and
// broadcast engine: the in-memory index of live sessions that the fan-out
// consumer queries and the session writers drain.
package registry

import (
	"sync"

	"github.com/google/uuid"

	"github.com/chatgrid/chatgrid/internal/domain/channel"
	"github.com/chatgrid/chatgrid/internal/domain/user"
)

// ConnectionID identifies one live session, minted fresh on upgrade.
type ConnectionID uuid.UUID

func NewConnectionID() ConnectionID { return ConnectionID(uuid.New()) }

func (id ConnectionID) String() string { return uuid.UUID(id).String() }

// connection is the registry's bookkeeping for one live session. Outbound
// is owned by the session's writer goroutine; the registry only ever
// sends on it (non-blocking) and never closes it — removal just
// detaches the registry's reference, per the ownership rule in the design
// notes.
type connection struct {
	userID    user.ID
	channelID channel.ID
	outbound  chan<- []byte
}

// Registry is the two-map, reader-writer-locked structure described by
// the spec: connections keyed by id, and a channel index for the
// consumer's O(1) "does anyone care" filter.
type Registry struct {
	mu          sync.RWMutex
	connections map[ConnectionID]connection
	channelIdx  map[channel.ID]map[ConnectionID]struct{}
}

func New() *Registry {
	return &Registry{
		connections: make(map[ConnectionID]connection),
		channelIdx:  make(map[channel.ID]map[ConnectionID]struct{}),
	}
}

// Add registers a new session. Idempotent on connID: re-adding the same
// id overwrites its entry rather than duplicating it in the channel index.
func (r *Registry) Add(connID ConnectionID, userID user.ID, channelID channel.ID, outbound chan<- []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.connections[connID] = connection{userID: userID, channelID: channelID, outbound: outbound}

	set, ok := r.channelIdx[channelID]
	if !ok {
		set = make(map[ConnectionID]struct{})
		r.channelIdx[channelID] = set
	}
	set[connID] = struct{}{}
}

// Remove detaches a session. If it was the last session in its channel,
// the channel entry is dropped too, keeping the index sparse.
func (r *Registry) Remove(connID ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.connections[connID]
	if !ok {
		return
	}
	delete(r.connections, connID)

	if set, ok := r.channelIdx[conn.channelID]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(r.channelIdx, conn.channelID)
		}
	}
}

// BroadcastResult reports how many local sessions a broadcast reached.
type BroadcastResult struct {
	Sent   int
	Failed int
}

// Broadcast enqueues frame onto every local session subscribed to channel,
// non-blocking per send so one backed-up receiver can't stall the rest. A
// failed send (full buffer) means the receiver is gone or too slow; it is
// not fatal to the others.
func (r *Registry) Broadcast(channelID channel.ID, frame []byte) BroadcastResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result BroadcastResult
	for connID := range r.channelIdx[channelID] {
		conn, ok := r.connections[connID]
		if !ok {
			continue
		}
		select {
		case conn.outbound <- frame:
			result.Sent++
		default:
			result.Failed++
		}
	}
	return result
}

// ConnectionsInChannel is the fast path the fan-out consumer uses to
// decide whether an event is worth broadcasting at all.
func (r *Registry) ConnectionsInChannel(channelID channel.ID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channelIdx[channelID])
}

// TotalConnections returns the number of live sessions across all channels.
func (r *Registry) TotalConnections() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}
