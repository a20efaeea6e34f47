package realtime

import "sync"

// Registry is the process-wide mapping from household id to the set of
// connected clients in that household's room. It is the only shared
// mutable state in the realtime layer and is owned exclusively by this
// type; callers go through Join/Leave/MembersOf.
//
// The registry performs no authorization. The connection handler is
// responsible for checking that a client's verified identity matches the
// household it joins.
type Registry struct {
	mu    sync.RWMutex
	rooms map[int64]map[*Client]struct{}
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[int64]map[*Client]struct{})}
}

// Join adds the client to the household's room, creating the room if
// absent. Joining twice is a no-op.
func (r *Registry) Join(c *Client, householdID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[householdID]
	if !ok {
		room = make(map[*Client]struct{})
		r.rooms[householdID] = room
	}
	room[c] = struct{}{}
}

// Leave removes the client from the household's room. Leaving a room the
// client never joined is a no-op. Empty rooms are dropped from the map.
func (r *Registry) Leave(c *Client, householdID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[householdID]
	if !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(r.rooms, householdID)
	}
}

// MembersOf returns a snapshot of the clients in the household's room.
func (r *Registry) MembersOf(householdID int64) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[householdID]
	if len(room) == 0 {
		return nil
	}
	members := make([]*Client, 0, len(room))
	for c := range room {
		members = append(members, c)
	}
	return members
}

// RoomSize returns the number of clients in the household's room.
func (r *Registry) RoomSize(householdID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[householdID])
}
