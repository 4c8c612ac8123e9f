package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fxdesk/tradeflow-api/internal/types"
)

// tradeEventRow is the persisted form of a TradeEvent. One row per event;
// the unique (trade_id, version) index rejects duplicate versions at the
// database level, while density comes from append's row-count check.
type tradeEventRow struct {
	ID        uint   `gorm:"primarykey"`
	TradeID   uint64 `gorm:"uniqueIndex:idx_trade_version"`
	Version   int    `gorm:"uniqueIndex:idx_trade_version"`
	UserID    string
	Timestamp time.Time
	FromState string
	ToState   string
	Details   string
}

func (tradeEventRow) TableName() string {
	return "trade_events"
}

// GormStore is a Store backed by a GORM connection. It carries the same
// per-trade locking discipline as the in-memory store on top of database
// transactions, so a single process gets serialized mutation per trade and
// Append still rejects stale versions coming from elsewhere.
type GormStore struct {
	db    *gorm.DB
	locks sync.Map // types.TradeID -> *sync.Mutex
}

// OpenSQLite opens (or creates) the SQLite database at dsn and migrates the
// event table.
func OpenSQLite(dsn string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	return NewGormStore(db)
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&tradeEventRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate trade events: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) lock(id types.TradeID) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *GormStore) Create(id types.TradeID, initial types.TradeEvent) error {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	var count int64
	if err := s.db.Model(&tradeEventRow{}).Where("trade_id = ?", uint64(id)).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyExists
	}

	row, err := toRow(id, initial)
	if err != nil {
		return err
	}
	return s.db.Create(row).Error
}

func (s *GormStore) Append(id types.TradeID, event types.TradeEvent) error {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	return s.append(s.db, id, event)
}

func (s *GormStore) append(tx *gorm.DB, id types.TradeID, event types.TradeEvent) error {
	var count int64
	if err := tx.Model(&tradeEventRow{}).Where("trade_id = ?", uint64(id)).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	if event.Version != int(count) {
		return ErrVersionConflict
	}

	row, err := toRow(id, event)
	if err != nil {
		return err
	}
	return tx.Create(row).Error
}

func (s *GormStore) Mutate(id types.TradeID, apply func(latest types.TradeEvent) (types.TradeEvent, error)) error {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var row tradeEventRow
		err := tx.Where("trade_id = ?", uint64(id)).Order("version desc").First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		latest, err := fromRow(row)
		if err != nil {
			return err
		}
		next, err := apply(latest)
		if err != nil {
			return err
		}
		return s.append(tx, id, next)
	})
}

func (s *GormStore) History(id types.TradeID) ([]types.TradeEvent, error) {
	var rows []tradeEventRow
	if err := s.db.Where("trade_id = ?", uint64(id)).Order("version asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	events := make([]types.TradeEvent, len(rows))
	for i, row := range rows {
		ev, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		events[i] = ev
	}
	return events, nil
}

func (s *GormStore) Latest(id types.TradeID) (types.TradeEvent, error) {
	var row tradeEventRow
	err := s.db.Where("trade_id = ?", uint64(id)).Order("version desc").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.TradeEvent{}, ErrNotFound
	}
	if err != nil {
		return types.TradeEvent{}, err
	}
	return fromRow(row)
}

func (s *GormStore) ListIDs(sorted bool) []types.TradeID {
	var raw []uint64
	if err := s.db.Model(&tradeEventRow{}).Distinct("trade_id").Pluck("trade_id", &raw).Error; err != nil {
		return nil
	}

	ids := make([]types.TradeID, len(raw))
	for i, v := range raw {
		ids[i] = types.TradeID(v)
	}
	if sorted {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return ids
}

func (s *GormStore) Delete(id types.TradeID) error {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	res := s.db.Where("trade_id = ?", uint64(id)).Delete(&tradeEventRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func toRow(id types.TradeID, ev types.TradeEvent) (*tradeEventRow, error) {
	details, err := json.Marshal(ev.Details)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize trade details: %w", err)
	}
	return &tradeEventRow{
		TradeID:   uint64(id),
		Version:   ev.Version,
		UserID:    ev.UserID,
		Timestamp: ev.Timestamp,
		FromState: ev.FromState.String(),
		ToState:   ev.ToState.String(),
		Details:   string(details),
	}, nil
}

func fromRow(row tradeEventRow) (types.TradeEvent, error) {
	fromState, err := types.ParseTradeState(row.FromState)
	if err != nil {
		return types.TradeEvent{}, err
	}
	toState, err := types.ParseTradeState(row.ToState)
	if err != nil {
		return types.TradeEvent{}, err
	}

	var details types.TradeDetails
	if err := json.Unmarshal([]byte(row.Details), &details); err != nil {
		return types.TradeEvent{}, fmt.Errorf("failed to deserialize trade details: %w", err)
	}

	return types.TradeEvent{
		UserID:    row.UserID,
		Timestamp: row.Timestamp,
		FromState: fromState,
		ToState:   toState,
		Details:   details,
		Version:   row.Version,
	}, nil
}
