package trading

import (
	"fmt"
	"sync"
	"time"

	"github.com/fxdesk/tradeflow-api/internal/types"
)

// Custom epoch to reduce the timestamp part of the ID.
const snowflakeEpoch = int64(1_700_000_000_000)

const (
	machineIDBits = 10
	sequenceBits  = 12

	maxMachineID = (1 << machineIDBits) - 1
	maxSequence  = (1 << sequenceBits) - 1
)

// SnowflakeGenerator produces unique 64-bit trade identifiers by combining
// a millisecond timestamp, a machine id and a per-millisecond sequence.
// Safe for concurrent use.
type SnowflakeGenerator struct {
	machineID uint16

	mu            sync.Mutex
	lastTimestamp int64
	sequence      uint16
}

// NewSnowflakeGenerator creates a generator for the given machine id.
func NewSnowflakeGenerator(machineID uint16) (*SnowflakeGenerator, error) {
	if machineID > maxMachineID {
		return nil, fmt.Errorf("machine id %d out of range (max %d)", machineID, maxMachineID)
	}
	return &SnowflakeGenerator{machineID: machineID}, nil
}

// Generate returns the next unique identifier from this generator.
func (g *SnowflakeGenerator) Generate() types.TradeID {
	g.mu.Lock()
	defer g.mu.Unlock()

	timestamp := currentTimestampMillis()

	// Tolerate clock rollback by sticking to the last known timestamp.
	if timestamp < g.lastTimestamp {
		timestamp = g.lastTimestamp
	}

	if timestamp == g.lastTimestamp {
		g.sequence = (g.sequence + 1) & maxSequence

		// Sequence exhausted within this millisecond: wait for the next one.
		if g.sequence == 0 {
			for timestamp <= g.lastTimestamp {
				timestamp = currentTimestampMillis()
			}
			g.lastTimestamp = timestamp
		}
	} else {
		g.sequence = 0
		g.lastTimestamp = timestamp
	}

	timePart := uint64(timestamp-snowflakeEpoch) << (machineIDBits + sequenceBits)
	machinePart := uint64(g.machineID) << sequenceBits
	seqPart := uint64(g.sequence)

	return types.TradeID(timePart | machinePart | seqPart)
}

func currentTimestampMillis() int64 {
	return time.Now().UnixMilli()
}
