package trading

import (
	"errors"
	"time"

	"github.com/fxdesk/tradeflow-api/internal/store"
	"github.com/fxdesk/tradeflow-api/internal/types"
)

// Engine is the workflow façade clients hold. It orchestrates the validator,
// the state machine and the snapshot store; every operation is atomic with
// respect to a single trade id. Beyond the store handle the engine keeps only
// the mutex-guarded id generator, so it can be shared freely across goroutines.
type Engine struct {
	store store.Store
	idGen *SnowflakeGenerator
	now   func() time.Time
}

// NewEngine creates an engine over the given store. The machine id feeds the
// snowflake identifier generator.
func NewEngine(s store.Store, machineID uint16) (*Engine, error) {
	idGen, err := NewSnowflakeGenerator(machineID)
	if err != nil {
		return nil, err
	}
	return &Engine{
		store: s,
		idGen: idGen,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// CreateTrade validates the details, reserves a fresh id and stores the
// version-0 event in Draft state.
func (e *Engine) CreateTrade(userID string, details types.TradeDetails) (types.TradeID, error) {
	if err := ValidateDetails(details); err != nil {
		return 0, err
	}

	id := e.idGen.Generate()
	initial := types.TradeEvent{
		UserID:    userID,
		Timestamp: e.now(),
		FromState: types.Draft,
		ToState:   types.Draft,
		Details:   details.Clone(),
		Version:   0,
	}

	if err := e.store.Create(id, initial); err != nil {
		// A snowflake collision would be a generator bug, not caller error.
		return 0, &InternalError{Cause: err}
	}
	return id, nil
}

// Submit moves a draft trade to pending approval.
func (e *Engine) Submit(userID string, id types.TradeID) error {
	return e.apply(userID, id, types.ActionSubmit, nil)
}

// Approve approves a trade awaiting first approval or re-approval.
func (e *Engine) Approve(userID string, id types.TradeID) error {
	return e.apply(userID, id, types.ActionApprove, nil)
}

// Update replaces the trade's details, forcing re-approval.
func (e *Engine) Update(userID string, id types.TradeID, details types.TradeDetails) error {
	return e.apply(userID, id, types.ActionUpdate, &details)
}

// Cancel terminally cancels a trade from any non-terminal state. The trade
// remains queryable afterwards (soft cancel).
func (e *Engine) Cancel(userID string, id types.TradeID) error {
	return e.apply(userID, id, types.ActionCancel, nil)
}

// SendToCounterparty moves an approved trade out for execution.
func (e *Engine) SendToCounterparty(userID string, id types.TradeID) error {
	return e.apply(userID, id, types.ActionSendToExecute, nil)
}

// Book records counterparty confirmation; the trade becomes Executed.
func (e *Engine) Book(userID string, id types.TradeID) error {
	return e.apply(userID, id, types.ActionBook, nil)
}

// apply runs the shared mutation algorithm under the store's per-trade lock:
// read latest, guard the transition, determine the event details, append
// exactly one event. A failure at any step leaves the history untouched.
func (e *Engine) apply(userID string, id types.TradeID, action types.TradeAction, newDetails *types.TradeDetails) error {
	err := e.store.Mutate(id, func(latest types.TradeEvent) (types.TradeEvent, error) {
		next, err := Transition(latest.ToState, action)
		if err != nil {
			return types.TradeEvent{}, err
		}

		details := latest.Details
		if action == types.ActionUpdate {
			if err := ValidateDetails(*newDetails); err != nil {
				return types.TradeEvent{}, err
			}
			details = newDetails.Clone()
		}

		return types.TradeEvent{
			UserID:    userID,
			Timestamp: e.now(),
			FromState: latest.ToState,
			ToState:   next,
			Details:   details,
			Version:   latest.Version + 1,
		}, nil
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return &NotFoundError{ID: id}
	case errors.Is(err, store.ErrVersionConflict):
		// Impossible while the store holds the per-trade lock across the
		// read-append pair; seeing it means the store is broken.
		return &InternalError{Cause: err}
	default:
		return err
	}
}

// GetStatus returns the trade's current lifecycle state.
func (e *Engine) GetStatus(id types.TradeID) (types.TradeState, error) {
	latest, err := e.store.Latest(id)
	if err != nil {
		return types.Draft, e.readErr(id, err)
	}
	return latest.ToState, nil
}

// GetDetails returns the trade's current details.
func (e *Engine) GetDetails(id types.TradeID) (types.TradeDetails, error) {
	latest, err := e.store.Latest(id)
	if err != nil {
		return types.TradeDetails{}, e.readErr(id, err)
	}
	return latest.Details, nil
}

// GetHistory returns every event of the trade, ordered by version.
func (e *Engine) GetHistory(id types.TradeID) ([]types.TradeEvent, error) {
	history, err := e.store.History(id)
	if err != nil {
		return nil, e.readErr(id, err)
	}
	return history, nil
}

// ListTrades returns all known trade ids, numerically ascending when sorted.
func (e *Engine) ListTrades(sorted bool) []types.TradeID {
	return e.store.ListIDs(sorted)
}

func (e *Engine) readErr(id types.TradeID, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{ID: id}
	}
	return err
}
