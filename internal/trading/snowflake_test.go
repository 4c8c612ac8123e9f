package trading

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxdesk/tradeflow-api/internal/types"
)

func TestSnowflakeMachineIDBounds(t *testing.T) {
	_, err := NewSnowflakeGenerator(maxMachineID)
	assert.NoError(t, err)

	_, err = NewSnowflakeGenerator(maxMachineID + 1)
	assert.Error(t, err)
}

func TestSnowflakeMonotonic(t *testing.T) {
	gen, err := NewSnowflakeGenerator(2)
	require.NoError(t, err)

	prev := gen.Generate()
	for i := 0; i < 1000; i++ {
		current := gen.Generate()
		assert.Greater(t, current, prev, "ids should be monotonic")
		prev = current
	}
}

func TestSnowflakeUniqueUnderConcurrency(t *testing.T) {
	gen, err := NewSnowflakeGenerator(3)
	require.NoError(t, err)

	const (
		goroutines = 4
		perWorker  = 10_000
	)

	var (
		mu  sync.Mutex
		ids = make([]types.TradeID, 0, goroutines*perWorker)
		wg  sync.WaitGroup
	)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]types.TradeID, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, gen.Generate())
			}
			mu.Lock()
			ids = append(ids, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	unique := make(map[types.TradeID]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	assert.Len(t, unique, len(ids), "duplicate ids found")
}

func TestSnowflakeEmbedsMachineID(t *testing.T) {
	gen, err := NewSnowflakeGenerator(7)
	require.NoError(t, err)

	id := gen.Generate()
	machineID := (uint64(id) >> sequenceBits) & maxMachineID
	assert.Equal(t, uint64(7), machineID)
}
