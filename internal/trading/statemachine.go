package trading

import (
	"github.com/fxdesk/tradeflow-api/internal/types"
)

// Transition computes the state an action leads to from the current state.
// It is a pure total function of its two inputs; it never touches the store
// or the clock. Illegal pairs fail with InvalidTransitionError.
//
// TODO: consider loading the transition table from config if the approval
// flow ever becomes product-specific.
func Transition(from types.TradeState, action types.TradeAction) (types.TradeState, error) {
	switch action {
	case types.ActionSubmit:
		// Only a fresh draft can be submitted for approval.
		if from == types.Draft {
			return types.PendingApproval, nil
		}

	case types.ActionApprove:
		// First approval or re-approval after an update.
		if from == types.PendingApproval || from == types.NeedsReapproval {
			return types.Approved, nil
		}

	case types.ActionUpdate:
		// Any edit invalidates prior approval; the trade must be approved
		// again before it can go out.
		switch from {
		case types.Draft, types.PendingApproval, types.NeedsReapproval, types.Approved:
			return types.NeedsReapproval, nil
		}

	case types.ActionCancel:
		// Cancel is allowed from every non-terminal state, including
		// SentToCounterparty on a best-effort basis.
		if !from.Terminal() {
			return types.Cancelled, nil
		}

	case types.ActionSendToExecute:
		if from == types.Approved {
			return types.SentToCounterparty, nil
		}

	case types.ActionBook:
		if from == types.SentToCounterparty {
			return types.Executed, nil
		}
	}

	return from, &InvalidTransitionError{From: from, Action: action}
}
