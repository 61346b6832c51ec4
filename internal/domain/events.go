package domain

import (
	"strconv"
	"time"
)

// ChangeKind identifies what a ProductChangeEvent changed.
type ChangeKind string

const (
	KindPriceChange        ChangeKind = "price_change"
	KindAvailabilityChange ChangeKind = "availability_change"
)

// Valid reports whether k is one of the known change kinds.
func (k ChangeKind) Valid() bool {
	return k == KindPriceChange || k == KindAvailabilityChange
}

// ProductChangeEvent is published on the product bus after a product has
// been mutated. It is never persisted.
type ProductChangeEvent struct {
	ProductID int64             `json:"productId"`
	Kind      ChangeKind        `json:"type"`
	Data      ProductChangeData `json:"data"`
}

// ProductChangeData carries the new value. Exactly one of NewPrice and
// IsAvailable is set, matching Kind.
type ProductChangeData struct {
	ProductName string    `json:"productName"`
	NewPrice    *float64  `json:"newPrice,omitempty"`
	IsAvailable *bool     `json:"isAvailable,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// TrackedProductChange is a ProductChangeEvent paired with the resumption
// token a reconnecting client sends back as its last-seen event id.
//
// The bus keeps no backlog, so the token only lets clients drop duplicates;
// events published while a client was disconnected are not replayed.
type TrackedProductChange struct {
	ID    string             `json:"id"`
	Event ProductChangeEvent `json:"data"`
}

// Track wraps e with its resumption token, the product id in decimal.
func Track(e ProductChangeEvent) TrackedProductChange {
	return TrackedProductChange{ID: strconv.FormatInt(e.ProductID, 10), Event: e}
}

// ChatChunkEvent is one streamed snapshot of an assistant reply.
//
// Chunk is cumulative: it holds the whole reply so far, so the latest event
// for a MessageID supersedes every earlier one. The sequence for a MessageID
// ends with the single event whose IsComplete is true.
type ChatChunkEvent struct {
	SessionID  string `json:"sessionId"`
	MessageID  string `json:"messageId"`
	Chunk      string `json:"chunk"`
	IsComplete bool   `json:"isComplete"`
}
