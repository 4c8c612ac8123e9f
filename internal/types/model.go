package types

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// TradeID uniquely identifies a trade for the lifetime of the engine.
// IDs are 64-bit snowflake values and cross the API boundary as decimal strings.
type TradeID uint64

func (id TradeID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseTradeID parses the decimal string form used at the API boundary.
func ParseTradeID(s string) (TradeID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid trade id %q: %w", s, err)
	}
	return TradeID(v), nil
}

func (id TradeID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *TradeID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTradeID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Direction is the side of a trade.
type Direction int

const (
	Buy Direction = iota
	Sell
)

var directionNames = map[Direction]string{
	Buy:  "Buy",
	Sell: "Sell",
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

func (d Direction) MarshalJSON() ([]byte, error) {
	name, ok := directionNames[d]
	if !ok {
		return nil, fmt.Errorf("unknown direction %d", int(d))
	}
	return json.Marshal(name)
}

func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for dir, name := range directionNames {
		if name == s {
			*d = dir
			return nil
		}
	}
	return fmt.Errorf("unknown direction %q", s)
}

// TradeState is the lifecycle state of a trade. Executed and Cancelled are
// terminal: no further actions are legal once either is reached.
type TradeState int

const (
	Draft TradeState = iota
	PendingApproval
	NeedsReapproval
	Approved
	SentToCounterparty
	Executed
	Cancelled
)

var stateNames = map[TradeState]string{
	Draft:              "Draft",
	PendingApproval:    "PendingApproval",
	NeedsReapproval:    "NeedsReapproval",
	Approved:           "Approved",
	SentToCounterparty: "SentToCounterparty",
	Executed:           "Executed",
	Cancelled:          "Cancelled",
}

func (s TradeState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("TradeState(%d)", int(s))
}

// Terminal reports whether no further events may be appended from this state.
func (s TradeState) Terminal() bool {
	return s == Executed || s == Cancelled
}

// ParseTradeState resolves a canonical state name back to its value.
func ParseTradeState(name string) (TradeState, error) {
	for state, n := range stateNames {
		if n == name {
			return state, nil
		}
	}
	return Draft, fmt.Errorf("unknown trade state %q", name)
}

func (s TradeState) MarshalJSON() ([]byte, error) {
	name, ok := stateNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown trade state %d", int(s))
	}
	return json.Marshal(name)
}

func (s *TradeState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for state, n := range stateNames {
		if n == name {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown trade state %q", name)
}

// TradeAction is a request to move a trade through its lifecycle. The values
// carry no payload; the replacement details for an Update travel separately,
// as the details argument of Engine.Update.
type TradeAction int

const (
	ActionSubmit TradeAction = iota
	ActionApprove
	ActionUpdate
	ActionCancel
	ActionSendToExecute
	ActionBook
)

var actionNames = map[TradeAction]string{
	ActionSubmit:        "Submit",
	ActionApprove:       "Approve",
	ActionUpdate:        "Update",
	ActionCancel:        "Cancel",
	ActionSendToExecute: "SendToExecute",
	ActionBook:          "Book",
}

func (a TradeAction) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("TradeAction(%d)", int(a))
}
