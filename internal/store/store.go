package store

import (
	"errors"

	"github.com/fxdesk/tradeflow-api/internal/types"
)

var (
	// ErrAlreadyExists is returned by Create when the trade id is taken.
	ErrAlreadyExists = errors.New("trade already exists")

	// ErrNotFound is returned when the trade id is unknown to the store.
	ErrNotFound = errors.New("trade not found")

	// ErrVersionConflict is returned by Append when the supplied event's
	// version does not equal the current history length. With Mutate no
	// racing writer can cause it (only an apply returning the wrong version
	// does); a bare Append that raced another writer sees it.
	ErrVersionConflict = errors.New("event version conflict")
)

// Store is the append-only versioned snapshot store backing the engine.
// Implementations must be safe for concurrent use; operations on distinct
// trade ids proceed independently. The store owns each trade's lock.
type Store interface {
	// Create inserts a brand-new history whose only element is the initial
	// event (version 0). Fails with ErrAlreadyExists on a known id.
	Create(id types.TradeID, initial types.TradeEvent) error

	// Append atomically adds the next event. The event's version must equal
	// the current history length or ErrVersionConflict is returned.
	Append(id types.TradeID, event types.TradeEvent) error

	// Mutate runs apply under the per-trade lock, passing the latest event,
	// and appends the returned event. An error from apply aborts the append
	// and is returned unchanged; the history is left untouched.
	Mutate(id types.TradeID, apply func(latest types.TradeEvent) (types.TradeEvent, error)) error

	// History returns a stable snapshot of all events, ordered by version.
	History(id types.TradeID) ([]types.TradeEvent, error)

	// Latest returns the most recent event.
	Latest(id types.TradeID) (types.TradeEvent, error)

	// ListIDs returns every known trade id. When sorted, ids are in numeric
	// ascending order; otherwise the order is unspecified but stable for
	// the call.
	ListIDs(sorted bool) []types.TradeID

	// Delete removes the trade entirely. Unused by the engine under the
	// current soft-cancel policy; kept for hard-delete deployments.
	Delete(id types.TradeID) error
}
