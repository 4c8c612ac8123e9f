package demo

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/fxdesk/tradeflow-api/internal/trading"
	"github.com/fxdesk/tradeflow-api/internal/types"
)

const (
	userTrader = "userTrader1"
	userAdmin  = "userAdmin1"
)

// Run drives the built-in demo scenarios against the engine. Enabled with
// the dev_mode feature flag; failures are logged and do not stop startup.
func Run(engine *trading.Engine) {
	logger := log.With().Str("component", "demo").Logger()
	logger.Info().Msg("running demo scenarios")

	scenarios := []struct {
		name string
		run  func(*trading.Engine) error
	}{
		{"hello world", helloWorld},
		{"submit and approve", submitAndApprove},
		{"update forces reapproval", updateForcesReapproval},
		{"full execution", fullExecution},
	}

	for _, s := range scenarios {
		if err := s.run(engine); err != nil {
			logger.Error().Err(err).Str("scenario", s.name).Msg("demo scenario failed")
			continue
		}
		logger.Info().Str("scenario", s.name).Msg("demo scenario completed")
	}
}

func sampleDetails(amount string) types.TradeDetails {
	tradeDate := time.Now().UTC().Truncate(24 * time.Hour)
	return types.TradeDetails{
		TradingEntity:    "foo",
		Counterparty:     "bar",
		Direction:        types.Buy,
		NotionalCurrency: types.GBP,
		NotionalAmount:   decimal.RequireFromString(amount),
		Underlying:       []types.Currency{types.GBP, types.USD},
		TradeDate:        tradeDate,
		ValueDate:        tradeDate.AddDate(0, 0, 2),
		DeliveryDate:     tradeDate.AddDate(0, 0, 5),
	}
}

// helloWorld creates a single draft trade and reads it back.
func helloWorld(engine *trading.Engine) error {
	id, err := engine.CreateTrade(userTrader, sampleDetails("100.1"))
	if err != nil {
		return err
	}

	state, err := engine.GetStatus(id)
	if err != nil {
		return err
	}
	history, err := engine.GetHistory(id)
	if err != nil {
		return err
	}

	log.Info().
		Str("trade_id", id.String()).
		Stringer("state", state).
		Int("history_len", len(history)).
		Msg("created first trade")
	return nil
}

// submitAndApprove walks a trade from draft to approved.
func submitAndApprove(engine *trading.Engine) error {
	id, err := engine.CreateTrade(userTrader, sampleDetails("55.6"))
	if err != nil {
		return err
	}

	if err := engine.Submit(userTrader, id); err != nil {
		return err
	}
	if err := engine.Approve(userAdmin, id); err != nil {
		return err
	}

	state, err := engine.GetStatus(id)
	if err != nil {
		return err
	}
	log.Info().
		Str("trade_id", id.String()).
		Stringer("state", state).
		Msg("trade approved")
	return nil
}

// updateForcesReapproval shows an amendment knocking a trade back to
// re-approval, and the resulting diff.
func updateForcesReapproval(engine *trading.Engine) error {
	id, err := engine.CreateTrade(userTrader, sampleDetails("468.22"))
	if err != nil {
		return err
	}

	if err := engine.Submit(userTrader, id); err != nil {
		return err
	}

	details, err := engine.GetDetails(id)
	if err != nil {
		return err
	}
	details.NotionalAmount = decimal.RequireFromString("368.02")
	if err := engine.Update(userAdmin, id, details); err != nil {
		return err
	}

	if err := engine.Approve(userTrader, id); err != nil {
		return err
	}

	diff, err := engine.Diff(id, 0, 3)
	if err != nil {
		return err
	}
	log.Info().
		Str("trade_id", id.String()).
		Int("changed_fields", len(diff.Differences)).
		Msg("trade re-approved after amendment")
	return nil
}

// fullExecution walks a trade through the complete happy path to Executed.
func fullExecution(engine *trading.Engine) error {
	id, err := engine.CreateTrade(userTrader, sampleDetails("112.62"))
	if err != nil {
		return err
	}

	steps := []func() error{
		func() error { return engine.Submit(userTrader, id) },
		func() error { return engine.Approve(userAdmin, id) },
		func() error { return engine.SendToCounterparty(userAdmin, id) },
		func() error { return engine.Book(userTrader, id) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	state, err := engine.GetStatus(id)
	if err != nil {
		return err
	}
	history, err := engine.GetHistory(id)
	if err != nil {
		return err
	}
	log.Info().
		Str("trade_id", id.String()).
		Stringer("state", state).
		Int("history_len", len(history)).
		Msg("trade executed")
	return nil
}
