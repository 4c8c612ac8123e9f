package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradeIDBoundaryForm(t *testing.T) {
	id := TradeID(18446744073709551615) // max uint64 must survive the string form

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"18446744073709551615"`, string(data))

	var back TradeID
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, id, back)

	_, err = ParseTradeID("not-a-number")
	assert.Error(t, err)
}

func TestStateStringsAndTerminality(t *testing.T) {
	assert.Equal(t, "Draft", Draft.String())
	assert.Equal(t, "SentToCounterparty", SentToCounterparty.String())

	for state, wantTerminal := range map[TradeState]bool{
		Draft:              false,
		PendingApproval:    false,
		NeedsReapproval:    false,
		Approved:           false,
		SentToCounterparty: false,
		Executed:           true,
		Cancelled:          true,
	} {
		assert.Equal(t, wantTerminal, state.Terminal(), state.String())
	}

	parsed, err := ParseTradeState("NeedsReapproval")
	require.NoError(t, err)
	assert.Equal(t, NeedsReapproval, parsed)

	_, err = ParseTradeState("Limbo")
	assert.Error(t, err)
}

func TestDirectionJSON(t *testing.T) {
	data, err := json.Marshal(Sell)
	require.NoError(t, err)
	assert.Equal(t, `"Sell"`, string(data))

	var d Direction
	require.NoError(t, json.Unmarshal([]byte(`"Buy"`), &d))
	assert.Equal(t, Buy, d)

	assert.Error(t, json.Unmarshal([]byte(`"Short"`), &d))
}

func TestDetailsCloneIsIndependent(t *testing.T) {
	strike := decimal.RequireFromString("1.25")
	original := TradeDetails{
		TradingEntity:    "BigBank",
		Counterparty:     "ClientCo",
		Direction:        Buy,
		NotionalCurrency: GBP,
		NotionalAmount:   decimal.RequireFromString("100"),
		Underlying:       []Currency{GBP, USD},
		TradeDate:        time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		ValueDate:        time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC),
		DeliveryDate:     time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC),
		Strike:           &strike,
	}

	clone := original.Clone()
	require.True(t, original.Equal(clone))

	clone.Underlying[0] = JPY
	*clone.Strike = decimal.RequireFromString("9.99")

	assert.Equal(t, GBP, original.Underlying[0])
	assert.True(t, original.Strike.Equal(strike))
	assert.False(t, original.Equal(clone))
}

func TestDetailsEqualityIsStructural(t *testing.T) {
	a := TradeDetails{
		TradingEntity:    "BigBank",
		Counterparty:     "ClientCo",
		Direction:        Buy,
		NotionalCurrency: USD,
		NotionalAmount:   decimal.RequireFromString("100.00"),
		Underlying:       []Currency{USD},
		TradeDate:        time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		ValueDate:        time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		DeliveryDate:     time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
	}

	b := a.Clone()
	b.NotionalAmount = decimal.RequireFromString("100") // same value, different exponent
	assert.True(t, a.Equal(b))

	b.Underlying = []Currency{USD, EUR}
	assert.False(t, a.Equal(b))
}
