package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/fxdesk/tradeflow-api/internal/types"
)

const (
	minTrades     = 15
	maxTrades     = 150
	numWorkers    = 5
	serverAddress = "http://localhost:8080"
)

var (
	entities       = []string{"BigBank", "MegaCorp", "FastFunds", "AlphaDesk"}
	counterparties = []string{"ClientCo", "AnotherCo", "HedgeOne", "StreetSide"}
	currencies     = []types.Currency{types.GBP, types.USD, types.EUR, types.JPY, types.AUD}
)

// init configures the logger for the simulation with pretty printing and timestamp
func init() {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// routeStats tracks performance statistics for an API endpoint
type routeStats struct {
	name       string
	durations  []time.Duration
	totalCalls int
	failures   int
}

// addDuration records a new duration measurement for the route
func (rs *routeStats) addDuration(d time.Duration) {
	rs.durations = append(rs.durations, d)
	rs.totalCalls++
}

// calculate computes min, max, mean, median, 95th and 99th percentile durations
func (rs *routeStats) calculate() (min, max, mean, median, p95, p99 time.Duration) {
	if len(rs.durations) == 0 {
		return 0, 0, 0, 0, 0, 0
	}

	sort.Slice(rs.durations, func(i, j int) bool {
		return rs.durations[i] < rs.durations[j]
	})

	min = rs.durations[0]
	max = rs.durations[len(rs.durations)-1]

	var sum time.Duration
	for _, d := range rs.durations {
		sum += d
	}
	mean = sum / time.Duration(len(rs.durations))
	median = rs.durations[len(rs.durations)/2]

	p95idx := int(math.Ceil(float64(len(rs.durations))*0.95)) - 1
	p99idx := int(math.Ceil(float64(len(rs.durations))*0.99)) - 1
	p95 = rs.durations[p95idx]
	p99 = rs.durations[p99idx]

	return
}

// simulationClient drives the trade lifecycle API and records latencies
type simulationClient struct {
	baseURL string
	client  *http.Client

	mu    sync.Mutex
	stats map[string]*routeStats
}

func newSimulationClient() *simulationClient {
	return &simulationClient{
		baseURL: serverAddress,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		stats: map[string]*routeStats{
			"create":  {name: "Create Trade"},
			"submit":  {name: "Submit Trade"},
			"approve": {name: "Approve Trade"},
			"update":  {name: "Update Details"},
			"send":    {name: "Send To Counterparty"},
			"book":    {name: "Book Trade"},
			"cancel":  {name: "Cancel Trade"},
			"status":  {name: "Get Status"},
			"history": {name: "Get History"},
		},
	}
}

func (sc *simulationClient) record(route string, d time.Duration, failed bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	rs := sc.stats[route]
	rs.addDuration(d)
	if failed {
		rs.failures++
	}
}

// do issues a request with the simulated user identity and records latency.
func (sc *simulationClient) do(route, method, path, user string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, sc.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", user)

	start := time.Now()
	resp, err := sc.client.Do(req)
	elapsed := time.Since(start)

	failed := err != nil || resp.StatusCode >= 500
	sc.record(route, elapsed, failed)

	return resp, err
}

func randomDetails() types.TradeDetails {
	notional := currencies[rand.Intn(len(currencies))]
	underlying := []types.Currency{notional}
	if extra := currencies[rand.Intn(len(currencies))]; extra != notional {
		underlying = append(underlying, extra)
	}

	tradeDate := time.Now().UTC().Truncate(24 * time.Hour)
	direction := types.Buy
	if rand.Intn(2) == 1 {
		direction = types.Sell
	}

	return types.TradeDetails{
		TradingEntity:    entities[rand.Intn(len(entities))],
		Counterparty:     counterparties[rand.Intn(len(counterparties))],
		Direction:        direction,
		NotionalCurrency: notional,
		NotionalAmount:   decimal.NewFromFloat(10 + rand.Float64()*990).Round(2),
		Underlying:       underlying,
		TradeDate:        tradeDate,
		ValueDate:        tradeDate.AddDate(0, 0, 2),
		DeliveryDate:     tradeDate.AddDate(0, 0, 5),
	}
}

// createTrade posts a new trade and returns its id.
func (sc *simulationClient) createTrade(user string) (string, error) {
	resp, err := sc.do("create", http.MethodPost, "/trade", user, map[string]any{
		"userId":  user,
		"details": randomDetails(),
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("create returned status %d", resp.StatusCode)
	}

	var out struct {
		TradeID string `json:"tradeId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.TradeID, nil
}

func (sc *simulationClient) action(route, tradeID, user string) error {
	resp, err := sc.do(route, http.MethodPost, "/trade/"+tradeID+"/"+route, user, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%s returned status %d", route, resp.StatusCode)
	}
	return nil
}

func (sc *simulationClient) cancel(tradeID, user string) error {
	resp, err := sc.do("cancel", http.MethodDelete, "/trade/"+tradeID, user, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("cancel returned status %d", resp.StatusCode)
	}
	return nil
}

func (sc *simulationClient) read(route, path, user string) error {
	resp, err := sc.do(route, http.MethodGet, path, user, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", route, resp.StatusCode)
	}
	return nil
}

// driveLifecycle walks one trade through a randomly chosen path.
func (sc *simulationClient) driveLifecycle(workerID int) error {
	trader := fmt.Sprintf("trader-%s", uuid.NewString()[:8])
	approver := fmt.Sprintf("approver-%s", uuid.NewString()[:8])

	tradeID, err := sc.createTrade(trader)
	if err != nil {
		return fmt.Errorf("worker %d: %w", workerID, err)
	}

	if err := sc.action("submit", tradeID, trader); err != nil {
		return err
	}

	// A minority of trades get cancelled mid-flight
	if rand.Float64() < 0.15 {
		return sc.cancel(tradeID, approver)
	}

	if err := sc.action("approve", tradeID, approver); err != nil {
		return err
	}
	if err := sc.action("send", tradeID, approver); err != nil {
		return err
	}
	if err := sc.action("book", tradeID, trader); err != nil {
		return err
	}

	if err := sc.read("status", "/trade/"+tradeID, trader); err != nil {
		return err
	}
	return sc.read("history", "/trade/"+tradeID+"/history", trader)
}

// printStats renders per-route latency statistics.
func (sc *simulationClient) printStats() {
	fmt.Println("\n=== Simulation Results ===")
	for _, key := range []string{"create", "submit", "approve", "update", "send", "book", "cancel", "status", "history"} {
		rs := sc.stats[key]
		if rs.totalCalls == 0 {
			continue
		}
		min, max, mean, median, p95, p99 := rs.calculate()
		fmt.Printf("%-22s calls=%-5d failures=%-3d min=%-10s max=%-10s mean=%-10s median=%-10s p95=%-10s p99=%s\n",
			rs.name, rs.totalCalls, rs.failures, min, max, mean, median, p95, p99)
	}
}

func main() {
	sc := newSimulationClient()

	total := minTrades + rand.Intn(maxTrades-minTrades)
	log.Info().Int("trades", total).Int("workers", numWorkers).Msg("starting simulation")

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for range jobs {
				if err := sc.driveLifecycle(workerID); err != nil {
					log.Warn().Err(err).Int("worker", workerID).Msg("lifecycle failed")
				}
			}
		}(w)
	}

	for i := 0; i < total; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	log.Info().Msg("simulation complete")
	sc.printStats()
}
