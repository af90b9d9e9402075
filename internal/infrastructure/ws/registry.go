package ws

import (
	"sync"
	"time"

	"github.com/openpair/coderoom/internal/domain"
)

// Registry is the process-wide room -> participants mapping. It is the only
// shared mutable structure in the realtime core; all mutation goes through
// Join and Leave. Rooms hold clients in join order, which doubles as the
// tenure order used to pick a bootstrap source for late joiners.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string][]*Client
	conns map[string]*Client // socket id -> client, at most one entry per connection
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string][]*Client),
		conns: make(map[string]*Client),
	}
}

// Join registers cl under roomID. The identity fields are written here,
// under the registry lock: a rejoining connection is already registered and
// visible to snapshot readers, so mutation anywhere else would race. A
// repeated join from the same connection replaces the prior entry in place,
// keeping its tenure slot and original JoinedAt; it never duplicates.
// Joining a different room first leaves the old one. Returns the room
// membership after admission, in join order, and whether this join opened
// the room.
func (r *Registry) Join(cl *Client, roomID, username string) (members []*Client, opened bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.conns[cl.ID]; ok {
		if prev.RoomID == roomID {
			cl.RoomID = roomID
			cl.Username = username
			cl.JoinedAt = prev.JoinedAt
			list := r.rooms[roomID]
			for i, c := range list {
				if c.ID == cl.ID {
					list[i] = cl
					break
				}
			}
			r.conns[cl.ID] = cl
			return r.snapshotLocked(roomID), false
		}
		r.removeLocked(prev)
	}

	cl.RoomID = roomID
	cl.Username = username
	cl.JoinedAt = time.Now()

	list, ok := r.rooms[roomID]
	if !ok {
		opened = true
	}
	r.rooms[roomID] = append(list, cl)
	r.conns[cl.ID] = cl

	return r.snapshotLocked(roomID), opened
}

// Leave removes the participant for socketID. The second call for the same
// connection is a no-op with ok=false.
func (r *Registry) Leave(socketID string) (cl *Client, remaining []*Client, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cl, ok = r.conns[socketID]
	if !ok {
		return nil, nil, false
	}
	r.removeLocked(cl)
	return cl, r.snapshotLocked(cl.RoomID), true
}

// MembersOf returns the room's participants in join order. Unknown rooms
// yield an empty result, not an error. The returned clients' identity
// fields may only be read on the reactor goroutine; everything else must
// use Participants.
func (r *Registry) MembersOf(roomID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked(roomID)
}

// Participants returns a value snapshot of the room's membership in join
// order, copied under the lock so it is safe to read from any goroutine.
func (r *Registry) Participants(roomID string) []domain.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Participant, 0, len(r.rooms[roomID]))
	for _, cl := range r.rooms[roomID] {
		out = append(out, domain.Participant{
			SocketID: cl.ID,
			Username: cl.Username,
			RoomID:   cl.RoomID,
			JoinedAt: cl.JoinedAt,
		})
	}
	return out
}

// Get resolves a socket id to its participant.
func (r *Registry) Get(socketID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cl, ok := r.conns[socketID]
	return cl, ok
}

// Elder returns the longest-tenured participant of roomID other than
// excludeSocketID, or nil if the room has no such participant. This is the
// documented bootstrap-source policy: stable join order, not event-delivery
// race order.
func (r *Registry) Elder(roomID, excludeSocketID string) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, cl := range r.rooms[roomID] {
		if cl.ID != excludeSocketID {
			return cl
		}
	}
	return nil
}

func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

func (r *Registry) ParticipantCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// removeLocked drops cl from its room and the connection index, deleting the
// room when it empties. Callers hold the write lock.
func (r *Registry) removeLocked(cl *Client) {
	delete(r.conns, cl.ID)

	list, ok := r.rooms[cl.RoomID]
	if !ok {
		return
	}
	for i, c := range list {
		if c.ID == cl.ID {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(r.rooms, cl.RoomID)
		return
	}
	r.rooms[cl.RoomID] = list
}

func (r *Registry) snapshotLocked(roomID string) []*Client {
	list := r.rooms[roomID]
	out := make([]*Client, len(list))
	copy(out, list)
	return out
}

// DedupByName collapses a member list so at most one record per display name
// survives, first occurrence in iteration order winning. Duplicate names are
// an artifact of rapid reconnects, not a modeled feature; the underlying
// connection-identified records are left untouched.
func DedupByName(members []*Client) []*Client {
	seen := make(map[string]struct{}, len(members))
	out := make([]*Client, 0, len(members))

	for _, m := range members {
		if _, ok := seen[m.Username]; ok {
			continue
		}
		seen[m.Username] = struct{}{}
		out = append(out, m)
	}
	return out
}

// DedupParticipants is DedupByName over value snapshots.
func DedupParticipants(members []domain.Participant) []domain.Participant {
	seen := make(map[string]struct{}, len(members))
	out := make([]domain.Participant, 0, len(members))

	for _, m := range members {
		if _, ok := seen[m.Username]; ok {
			continue
		}
		seen[m.Username] = struct{}{}
		out = append(out, m)
	}
	return out
}
