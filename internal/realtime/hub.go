package realtime

import (
	"encoding/json"
	"log/slog"
)

// Kind identifies which resource collection changed.
type Kind string

const (
	KindEvents   Kind = "events"
	KindChores   Kind = "chores"
	KindBills    Kind = "bills"
	KindShopping Kind = "shopping"
)

// Message types carried over the socket, in both directions.
const (
	MsgJoinHousehold  = "join-household"
	MsgLeaveHousehold = "leave-household"
)

// Message is the wire envelope for every realtime message. Update messages
// carry no payload beyond the household id: they are hints to re-fetch,
// not state transfers.
type Message struct {
	Type        string `json:"type"`
	HouseholdID int64  `json:"household_id"`
}

// updateType returns the wire message type for a changed resource kind.
func updateType(kind Kind) string {
	return "update-" + string(kind)
}

// kindForType maps an inbound update-* message type back to its kind.
// Returns "" for anything that is not an update message.
func kindForType(msgType string) Kind {
	switch msgType {
	case updateType(KindEvents):
		return KindEvents
	case updateType(KindChores):
		return KindChores
	case updateType(KindBills):
		return KindBills
	case updateType(KindShopping):
		return KindShopping
	}
	return ""
}

// Hub routes realtime messages between connected clients and the room
// registry. Fan-out is synchronous and in-memory: a full client buffer
// drops the message, a room with no members is a no-op, and nothing is
// retried or persisted.
type Hub struct {
	registry *Registry
	logger   *slog.Logger
}

func NewHub(registry *Registry, logger *slog.Logger) *Hub {
	return &Hub{registry: registry, logger: logger}
}

// Notify broadcasts an update message for the given household and resource
// kind. Domain handlers call this after every successful mutation.
func (h *Hub) Notify(householdID int64, kind Kind) {
	h.broadcast(householdID, Message{Type: updateType(kind), HouseholdID: householdID})
}

func (h *Hub) broadcast(householdID int64, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	for _, c := range h.registry.MembersOf(householdID) {
		select {
		case c.send <- data:
		default:
			// Client buffer full — drop message to avoid blocking
		}
	}
}

// handleInbound processes one client message. Malformed messages and
// messages naming a household other than the client's own are silently
// dropped; there is no error channel back to the sender.
func (h *Hub) handleInbound(c *Client, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.logger.Debug("drop malformed message", "error", err)
		return
	}

	// A connection may only act on its own session's household.
	if msg.HouseholdID != c.identity.HouseholdID {
		h.logger.Debug("drop cross-household message",
			"type", msg.Type,
			"requested", msg.HouseholdID,
			"session", c.identity.HouseholdID)
		return
	}

	switch {
	case msg.Type == MsgJoinHousehold:
		h.registry.Join(c, msg.HouseholdID)
		c.joined[msg.HouseholdID] = struct{}{}
	case msg.Type == MsgLeaveHousehold:
		h.registry.Leave(c, msg.HouseholdID)
		delete(c.joined, msg.HouseholdID)
	case kindForType(msg.Type) != "":
		// Re-emit to the whole room, sender included; receivers treat it
		// as a re-fetch hint, so self-delivery is harmless.
		h.broadcast(msg.HouseholdID, msg)
	default:
		h.logger.Debug("drop unknown message type", "type", msg.Type)
	}
}

// disconnect removes the client from every room it joined. Called exactly
// once when the connection closes; a reconnecting client must rejoin.
func (h *Hub) disconnect(c *Client) {
	for householdID := range c.joined {
		h.registry.Leave(c, householdID)
	}
	c.joined = nil
}
