package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog/log"

	"github.com/copytrade-hub/pkg/db"
	"github.com/copytrade-hub/pkg/metrics"
)

const (
	cursorName = "trade_executed"

	// DefaultMaxRange keeps each eth_getLogs under common provider caps.
	DefaultMaxRange = 5000

	// DefaultConfirmations is how far behind head a block must be before its
	// logs are merged. Merged totals are never rolled back.
	DefaultConfirmations = 12
)

var ErrNotConfigured = errors.New("leaderboard: trade contract not configured")

// LogReader is the subset of ethclient.Client the service needs.
type LogReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
}

type Service struct {
	client     LogReader
	store      *db.Store
	contract   common.Address
	startBlock uint64
	maxRange   uint64
	confirms   uint64

	mu sync.Mutex // one scan at a time
}

func NewService(client LogReader, store *db.Store, contract common.Address, startBlock uint64) *Service {
	return &Service{
		client:     client,
		store:      store,
		contract:   contract,
		startBlock: startBlock,
		maxRange:   DefaultMaxRange,
		confirms:   DefaultConfirmations,
	}
}

// SetConfirmations sets the reorg safety depth. Zero scans up to head.
func (s *Service) SetConfirmations(n uint64) {
	s.confirms = n
}

// SetMaxRange overrides the block span of a single log query.
func (s *Service) SetMaxRange(n uint64) {
	if n > 0 {
		s.maxRange = n
	}
}

func (s *Service) ready() bool {
	return s != nil && s.client != nil && s.store != nil && s.contract != (common.Address{})
}

// Refresh scans TradeExecuted logs from the stored cursor up to the last
// confirmed block and merges them into the running totals. It returns the number of
// trades merged.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	if !s.ready() {
		return 0, ErrNotConfigured
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.refresh(ctx)
	if err != nil {
		metrics.LeaderboardRefresh("error", n)
		return n, err
	}
	metrics.LeaderboardRefresh("ok", n)
	return n, nil
}

func (s *Service) refresh(ctx context.Context) (int, error) {
	head, err := s.client.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("block number: %w", err)
	}
	if head < s.confirms {
		return 0, nil
	}
	safe := head - s.confirms
	from, ok, err := s.store.Cursor(cursorName)
	if err != nil {
		return 0, fmt.Errorf("read cursor: %w", err)
	}
	if !ok || from < s.startBlock {
		from = s.startBlock
	}

	merged := 0
	for from <= safe {
		if err := ctx.Err(); err != nil {
			return merged, err
		}
		to := min(from+s.maxRange-1, safe)
		logs, err := s.client.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(from),
			ToBlock:   new(big.Int).SetUint64(to),
			Addresses: []common.Address{s.contract},
			Topics:    [][]common.Hash{{TradeExecutedTopic}},
		})
		if err != nil {
			return merged, fmt.Errorf("filter logs %d-%d: %w", from, to, err)
		}

		deltas := map[string]db.PnLDelta{}
		for _, l := range logs {
			if l.Removed {
				continue
			}
			tr, err := DecodeTrade(l)
			if err != nil {
				log.Warn().Err(err).Str("tx", l.TxHash.Hex()).Msg("skipping undecodable log")
				continue
			}
			key := tr.Trader.Hex()
			d := deltas[key]
			if d.PnLWei == nil {
				d.PnLWei = new(big.Int)
			}
			d.PnLWei.Add(d.PnLWei, tr.PnL)
			d.Trades++
			deltas[key] = d
			merged++
		}

		if err := s.store.ApplyScan(cursorName, to+1, deltas); err != nil {
			return merged, fmt.Errorf("apply scan %d-%d: %w", from, to, err)
		}
		if len(logs) > 0 {
			log.Debug().Uint64("from", from).Uint64("to", to).Int("logs", len(logs)).Msg("📦 trade logs merged")
		}
		from = to + 1
	}
	return merged, nil
}

// Top returns the best limit traders from the merged totals.
func (s *Service) Top(limit int) ([]Trader, error) {
	if !s.ready() {
		return nil, ErrNotConfigured
	}
	rows, err := s.store.GetTraderPnLs()
	if err != nil {
		return nil, fmt.Errorf("load totals: %w", err)
	}
	return Rank(rows, limit), nil
}
