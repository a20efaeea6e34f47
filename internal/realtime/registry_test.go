package realtime

import (
	"sync"
	"testing"

	"github.com/forttask/forttask/internal/auth"
)

// testClient creates a Client with a send channel but no real connection.
func testClient(householdID int64) *Client {
	return &Client{
		identity: auth.Identity{UserID: 1, HouseholdID: householdID},
		send:     make(chan []byte, sendBufferSize),
		joined:   make(map[int64]struct{}),
	}
}

func TestJoinAndMembersOf(t *testing.T) {
	r := NewRegistry()

	c1 := testClient(1)
	c2 := testClient(1)
	c3 := testClient(2)

	r.Join(c1, 1)
	r.Join(c2, 1)
	r.Join(c3, 2)

	if got := r.RoomSize(1); got != 2 {
		t.Fatalf("room 1 size = %d, want 2", got)
	}
	if got := r.RoomSize(2); got != 1 {
		t.Fatalf("room 2 size = %d, want 1", got)
	}

	members := r.MembersOf(1)
	seen := make(map[*Client]bool, len(members))
	for _, c := range members {
		seen[c] = true
	}
	if !seen[c1] || !seen[c2] || seen[c3] {
		t.Errorf("room 1 members wrong: %v", seen)
	}
}

func TestJoinIdempotent(t *testing.T) {
	r := NewRegistry()
	c := testClient(1)

	r.Join(c, 1)
	r.Join(c, 1)

	if got := r.RoomSize(1); got != 1 {
		t.Errorf("room size after double join = %d, want 1", got)
	}
}

func TestLeaveIdempotent(t *testing.T) {
	r := NewRegistry()
	c1 := testClient(1)
	c2 := testClient(1)

	r.Join(c1, 1)
	r.Join(c2, 1)

	r.Leave(c1, 1)
	r.Leave(c1, 1)            // double leave
	r.Leave(c1, 99)           // household never joined
	r.Leave(testClient(1), 1) // client never joined

	if got := r.RoomSize(1); got != 1 {
		t.Errorf("room size = %d, want 1", got)
	}
}

func TestLeaveDoesNotAffectOtherRooms(t *testing.T) {
	r := NewRegistry()
	c1 := testClient(1)
	c2 := testClient(2)

	r.Join(c1, 1)
	r.Join(c2, 2)

	r.Leave(c1, 1)

	if got := r.RoomSize(2); got != 1 {
		t.Errorf("room 2 size = %d, want 1", got)
	}
}

func TestEmptyRoomDropped(t *testing.T) {
	r := NewRegistry()
	c := testClient(1)

	r.Join(c, 1)
	r.Leave(c, 1)

	if got := r.MembersOf(1); got != nil {
		t.Errorf("expected nil members for empty room, got %v", got)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(householdID int64) {
			defer wg.Done()
			c := testClient(householdID)
			r.Join(c, householdID)
			r.MembersOf(householdID)
			r.Leave(c, householdID)
		}(int64(i % 3))
	}

	wg.Wait()

	for h := int64(0); h < 3; h++ {
		if got := r.RoomSize(h); got != 0 {
			t.Errorf("room %d size = %d, want 0", h, got)
		}
	}
}
