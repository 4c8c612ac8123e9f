package trading

import (
	"github.com/shopspring/decimal"

	"github.com/fxdesk/tradeflow-api/internal/types"
)

// Diff reports the field-level changes between two versions of a trade's
// details. The field enumeration is spelled out once here, keyed by the
// canonical boundary names, instead of relying on reflection.
func (e *Engine) Diff(id types.TradeID, v1, v2 int) (types.TradeDiff, error) {
	history, err := e.store.History(id)
	if err != nil {
		return types.TradeDiff{}, e.readErr(id, err)
	}

	max := len(history) - 1
	if v1 < 0 || v1 > max {
		return types.TradeDiff{}, &BadVersionError{Version: v1, Max: max}
	}
	if v2 < 0 || v2 > max {
		return types.TradeDiff{}, &BadVersionError{Version: v2, Max: max}
	}

	return types.TradeDiff{
		TradeID:     id,
		FromVersion: v1,
		ToVersion:   v2,
		Differences: diffDetails(history[v1].Details, history[v2].Details),
	}, nil
}

func diffDetails(from, to types.TradeDetails) map[string]types.FieldChange {
	diffs := make(map[string]types.FieldChange)

	if from.TradingEntity != to.TradingEntity {
		diffs["trading_entity"] = types.FieldChange{Before: from.TradingEntity, After: to.TradingEntity}
	}
	if from.Counterparty != to.Counterparty {
		diffs["counterparty"] = types.FieldChange{Before: from.Counterparty, After: to.Counterparty}
	}
	if from.Direction != to.Direction {
		diffs["direction"] = types.FieldChange{Before: from.Direction, After: to.Direction}
	}
	if from.NotionalCurrency != to.NotionalCurrency {
		diffs["notional_currency"] = types.FieldChange{Before: from.NotionalCurrency, After: to.NotionalCurrency}
	}
	if !from.NotionalAmount.Equal(to.NotionalAmount) {
		diffs["notional_amount"] = types.FieldChange{Before: from.NotionalAmount, After: to.NotionalAmount}
	}
	if !currenciesEqual(from.Underlying, to.Underlying) {
		diffs["underlying"] = types.FieldChange{Before: from.Underlying, After: to.Underlying}
	}
	if !from.TradeDate.Equal(to.TradeDate) {
		diffs["trade_date"] = types.FieldChange{Before: from.TradeDate, After: to.TradeDate}
	}
	if !from.ValueDate.Equal(to.ValueDate) {
		diffs["value_date"] = types.FieldChange{Before: from.ValueDate, After: to.ValueDate}
	}
	if !from.DeliveryDate.Equal(to.DeliveryDate) {
		diffs["delivery_date"] = types.FieldChange{Before: from.DeliveryDate, After: to.DeliveryDate}
	}
	if !strikesEqual(from.Strike, to.Strike) {
		diffs["strike"] = types.FieldChange{Before: from.Strike, After: to.Strike}
	}

	return diffs
}

func currenciesEqual(a, b []types.Currency) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func strikesEqual(a, b *decimal.Decimal) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || a.Equal(*b)
}
