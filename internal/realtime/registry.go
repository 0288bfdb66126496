package realtime

import "sync"

// Participant is one connection's membership record within a room.
type Participant struct {
	ConnectionID string `json:"connectionId"`
	Username     string `json:"username"`
}

// Registry is the authoritative mapping of room id to its ordered participant
// list. Rooms exist exactly as long as they have participants: the first join
// creates the entry and removing the last participant deletes it.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string][]Participant
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string][]Participant)}
}

// Add appends p to the room, creating it if absent. A connection already
// present in the room is left untouched and Add reports false.
func (r *Registry) Add(roomID string, p Participant) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.rooms[roomID] {
		if existing.ConnectionID == p.ConnectionID {
			return false
		}
	}
	r.rooms[roomID] = append(r.rooms[roomID], p)
	return true
}

// Remove deletes the connection from every room it belongs to and returns the
// ids of rooms that changed. Rooms left empty are dropped from the map so
// churny room ids do not accumulate.
func (r *Registry) Remove(connectionID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected []string
	for roomID, members := range r.rooms {
		kept := members[:0]
		for _, m := range members {
			if m.ConnectionID != connectionID {
				kept = append(kept, m)
			}
		}
		if len(kept) == len(members) {
			continue
		}
		affected = append(affected, roomID)
		if len(kept) == 0 {
			delete(r.rooms, roomID)
		} else {
			r.rooms[roomID] = kept
		}
	}
	return affected
}

// List returns a copy of the room's participants in join order. An unknown
// room yields an empty slice, never an error.
func (r *Registry) List(roomID string) []Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[roomID]
	out := make([]Participant, len(members))
	copy(out, members)
	return out
}

// Contains reports whether the connection is a member of the room.
func (r *Registry) Contains(roomID, connectionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.rooms[roomID] {
		if m.ConnectionID == connectionID {
			return true
		}
	}
	return false
}

// RoomCount returns the number of live rooms.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
