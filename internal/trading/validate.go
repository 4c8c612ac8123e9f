package trading

import (
	"github.com/shopspring/decimal"

	"github.com/fxdesk/tradeflow-api/internal/types"
)

// ValidateDetails applies the structural and ordering checks on trade
// details. It is pure and deterministic: no I/O, no clock. When several
// checks fail, whichever is detected first is returned; callers must not
// depend on the order.
func ValidateDetails(d types.TradeDetails) error {
	if d.TradingEntity == "" {
		return &ValidationError{Kind: MissingField, Field: "trading_entity"}
	}
	if d.Counterparty == "" {
		return &ValidationError{Kind: MissingField, Field: "counterparty"}
	}
	if d.NotionalCurrency == "" {
		return &ValidationError{Kind: MissingField, Field: "notional_currency"}
	}
	if len(d.Underlying) == 0 {
		return &ValidationError{Kind: MissingField, Field: "underlying"}
	}

	if d.NotionalAmount.Cmp(decimal.Zero) <= 0 {
		return &ValidationError{Kind: NonPositiveAmount, Field: "notional_amount"}
	}

	found := false
	for _, c := range d.Underlying {
		if c == d.NotionalCurrency {
			found = true
			break
		}
	}
	if !found {
		return &ValidationError{Kind: UnderlyingMissingNotional, Field: "underlying"}
	}

	if d.TradeDate.After(d.ValueDate) || d.ValueDate.After(d.DeliveryDate) {
		return &ValidationError{Kind: BadOrdering, Field: "trade_date"}
	}

	// Details only enter the engine through create and update, both of which
	// run strictly before a trade can reach Executed, so a present strike is
	// always premature here.
	if d.Strike != nil {
		return &ValidationError{Kind: PrematureStrike, Field: "strike"}
	}

	return nil
}
