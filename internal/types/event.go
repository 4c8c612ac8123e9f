package types

import "time"

// TradeEvent is one immutable snapshot in a trade's history. Versions start
// at 0 for the creation event and increase by one per subsequent event.
type TradeEvent struct {
	UserID    string       `json:"user_id"`
	Timestamp time.Time    `json:"timestamp"`
	FromState TradeState   `json:"from_state"`
	ToState   TradeState   `json:"to_state"`
	Details   TradeDetails `json:"details"`
	Version   int          `json:"version"`
}

// FieldChange is a single before/after pair inside a TradeDiff.
type FieldChange struct {
	Before any `json:"before"`
	After  any `json:"after"`
}

// TradeDiff reports the field-level differences between two versions of a
// trade's details, keyed by the canonical boundary field names. Transition
// metadata (user, timestamp, state) is deliberately not part of the map.
type TradeDiff struct {
	TradeID     TradeID                `json:"trade_id"`
	FromVersion int                    `json:"from_version"`
	ToVersion   int                    `json:"to_version"`
	Differences map[string]FieldChange `json:"differences"`
}
