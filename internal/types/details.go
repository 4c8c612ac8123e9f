package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Decimals cross the API boundary as JSON numbers with preserved precision.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// TradeDetails is the economic content of a trade. A copy is carried on every
// event snapshot; only the Update action replaces it.
type TradeDetails struct {
	TradingEntity    string           `json:"trading_entity"`
	Counterparty     string           `json:"counterparty"`
	Direction        Direction        `json:"direction"`
	NotionalCurrency Currency         `json:"notional_currency"`
	NotionalAmount   decimal.Decimal  `json:"notional_amount"`
	Underlying       []Currency       `json:"underlying"`
	TradeDate        time.Time        `json:"trade_date"`
	ValueDate        time.Time        `json:"value_date"`
	DeliveryDate     time.Time        `json:"delivery_date"`
	Strike           *decimal.Decimal `json:"strike,omitempty"`
}

// Equal reports deep structural equality of two details records, compared
// field by field rather than by reflection.
func (d TradeDetails) Equal(other TradeDetails) bool {
	if d.TradingEntity != other.TradingEntity ||
		d.Counterparty != other.Counterparty ||
		d.Direction != other.Direction ||
		d.NotionalCurrency != other.NotionalCurrency {
		return false
	}
	if !d.NotionalAmount.Equal(other.NotionalAmount) {
		return false
	}
	if len(d.Underlying) != len(other.Underlying) {
		return false
	}
	for i, c := range d.Underlying {
		if c != other.Underlying[i] {
			return false
		}
	}
	if !d.TradeDate.Equal(other.TradeDate) ||
		!d.ValueDate.Equal(other.ValueDate) ||
		!d.DeliveryDate.Equal(other.DeliveryDate) {
		return false
	}
	if (d.Strike == nil) != (other.Strike == nil) {
		return false
	}
	if d.Strike != nil && !d.Strike.Equal(*other.Strike) {
		return false
	}
	return true
}

// Clone returns an independent copy. The underlying slice and strike pointer
// are duplicated so snapshots never share mutable state.
func (d TradeDetails) Clone() TradeDetails {
	out := d
	out.Underlying = append([]Currency(nil), d.Underlying...)
	if d.Strike != nil {
		strike := *d.Strike
		out.Strike = &strike
	}
	return out
}
