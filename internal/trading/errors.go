package trading

import (
	"fmt"

	"github.com/fxdesk/tradeflow-api/internal/types"
)

// ValidationKind classifies why trade details were rejected.
type ValidationKind string

const (
	MissingField              ValidationKind = "MissingField"
	BadOrdering               ValidationKind = "BadOrdering"
	UnderlyingMissingNotional ValidationKind = "UnderlyingMissingNotional"
	NonPositiveAmount         ValidationKind = "NonPositiveAmount"
	PrematureStrike           ValidationKind = "PrematureStrike"
)

// ValidationError rejects input before any state is mutated.
type ValidationError struct {
	Kind  ValidationKind
	Field string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s (%s)", e.Kind, e.Field)
	}
	return fmt.Sprintf("validation failed: %s", e.Kind)
}

// InvalidTransitionError is the state machine refusing an action.
type InvalidTransitionError struct {
	From   types.TradeState
	Action types.TradeAction
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s not allowed from %s", e.Action, e.From)
}

// NotFoundError reports an unknown trade identifier.
type NotFoundError struct {
	ID types.TradeID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("trade %s not found", e.ID)
}

// BadVersionError reports a diff request against a non-existent version.
type BadVersionError struct {
	Version int
	Max     int
}

func (e *BadVersionError) Error() string {
	return fmt.Sprintf("version %d out of range (max %d)", e.Version, e.Max)
}

// InternalError signals an invariant violation; it should never occur in a
// correct deployment and indicates a bug.
type InternalError struct {
	Cause error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %v", e.Cause)
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}
