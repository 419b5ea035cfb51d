package leaderboard

import (
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copytrade-hub/pkg/db"
)

var (
	contract = common.HexToAddress("0x00000000000000000000000000000000000c0de1")
	alice    = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob      = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol    = common.HexToAddress("0x00000000000000000000000000000000000ca201")
)

func ether(v float64) *big.Int {
	f := new(big.Float).Mul(big.NewFloat(v), big.NewFloat(1e18))
	out, _ := f.Int(nil)
	return out
}

func tradeLog(t *testing.T, block uint64, trader common.Address, pnl *big.Int) types.Log {
	t.Helper()
	data, err := EncodeTradeData(pnl)
	require.NoError(t, err)
	return types.Log{
		Address:     contract,
		Topics:      []common.Hash{TradeExecutedTopic, common.BytesToHash(trader.Bytes())},
		Data:        data,
		BlockNumber: block,
	}
}

type fakeChain struct {
	head    uint64
	logs    []types.Log
	queries []ethereum.FilterQuery
	failAt  int
}

func (f *fakeChain) BlockNumber(context.Context) (uint64, error) { return f.head, nil }

func (f *fakeChain) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	f.queries = append(f.queries, q)
	if f.failAt > 0 && len(f.queries) == f.failAt {
		return nil, errors.New("rpc down")
	}
	var out []types.Log
	for _, l := range f.logs {
		if l.BlockNumber >= q.FromBlock.Uint64() && l.BlockNumber <= q.ToBlock.Uint64() {
			out = append(out, l)
		}
	}
	return out, nil
}

func TestDecodeTrade(t *testing.T) {
	l := tradeLog(t, 7, alice, ether(-1.5))
	tr, err := DecodeTrade(l)
	require.NoError(t, err)
	assert.Equal(t, alice, tr.Trader)
	assert.Equal(t, ether(-1.5).String(), tr.PnL.String())
	assert.Equal(t, uint64(7), tr.BlockNumber)

	other := l
	other.Topics = []common.Hash{common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"), l.Topics[1]}
	_, err = DecodeTrade(other)
	assert.ErrorIs(t, err, ErrNotTradeLog)

	short := l
	short.Data = []byte{1, 2, 3}
	_, err = DecodeTrade(short)
	assert.Error(t, err)
}

func TestTradeExecutedTopic(t *testing.T) {
	assert.Equal(t, "TradeExecuted(address,int256)", tradeExecuted.Sig)
}

func TestAggregate(t *testing.T) {
	removed := tradeLog(t, 4, carol, ether(100))
	removed.Removed = true

	got := Aggregate([]types.Log{
		tradeLog(t, 1, alice, ether(2)),
		tradeLog(t, 2, bob, ether(5)),
		tradeLog(t, 3, alice, ether(1.5)),
		tradeLog(t, 3, carol, ether(-0.25)),
		removed,
	})
	require.Len(t, got, 3)
	assert.Equal(t, Trader{Rank: 1, Username: bob.Hex(), PnL: 5, PnLExact: "5.0", Trades: 1}, got[0])
	assert.Equal(t, Trader{Rank: 2, Username: alice.Hex(), PnL: 3.5, PnLExact: "3.5", Trades: 2}, got[1])
	assert.Equal(t, Trader{Rank: 3, Username: carol.Hex(), PnL: -0.25, PnLExact: "-0.25", Trades: 1}, got[2])

	assert.Empty(t, Aggregate(nil))
}

func TestRankTiesAndLimit(t *testing.T) {
	rows := []db.TraderPnL{
		{Address: "0xBB", PnLWei: big.NewInt(10)},
		{Address: "0xaa", PnLWei: big.NewInt(10)},
		{Address: "0xcc", PnLWei: big.NewInt(30)},
		{Address: "0xdd", PnLWei: big.NewInt(-1)},
	}
	got := Rank(rows, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "0xcc", got[0].Username)
	assert.Equal(t, "0xaa", got[1].Username)
	assert.Equal(t, "0xBB", got[2].Username)
	assert.Equal(t, 3, got[2].Rank)

	assert.Len(t, Rank(rows, 0), 4)
}

func newTestService(t *testing.T, chain *fakeChain, start uint64) (*Service, *db.Store) {
	t.Helper()
	store, err := db.NewStore(filepath.Join(t.TempDir(), "lb.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	svc := NewService(chain, store, contract, start)
	svc.SetConfirmations(0)
	return svc, store
}

func TestServiceRefreshIncremental(t *testing.T) {
	chain := &fakeChain{head: 25, logs: []types.Log{
		tradeLog(t, 5, alice, ether(1)),
		tradeLog(t, 12, bob, ether(4)),
		tradeLog(t, 25, alice, ether(2)),
	}}
	svc, store := newTestService(t, chain, 0)
	svc.SetMaxRange(10)

	n, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, chain.queries, 3)
	assert.Equal(t, uint64(0), chain.queries[0].FromBlock.Uint64())
	assert.Equal(t, uint64(9), chain.queries[0].ToBlock.Uint64())
	assert.Equal(t, uint64(25), chain.queries[2].ToBlock.Uint64())
	assert.Equal(t, []common.Address{contract}, chain.queries[0].Addresses)
	assert.Equal(t, [][]common.Hash{{TradeExecutedTopic}}, chain.queries[0].Topics)

	next, ok, err := store.Cursor(cursorName)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(26), next)

	// nothing new: no queries, nothing merged
	n, err = svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, chain.queries, 3)

	chain.logs = append(chain.logs, tradeLog(t, 30, bob, ether(-10)))
	chain.head = 30
	n, err = svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	top, err := svc.Top(10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, alice.Hex(), top[0].Username)
	assert.Equal(t, 3.0, top[0].PnL)
	assert.Equal(t, 2, top[0].Trades)
	assert.Equal(t, -6.0, top[1].PnL)
}

func TestServiceRefreshStartBlock(t *testing.T) {
	chain := &fakeChain{head: 100, logs: []types.Log{
		tradeLog(t, 10, alice, ether(1)),
		tradeLog(t, 60, bob, ether(1)),
	}}
	svc, _ := newTestService(t, chain, 50)

	n, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, uint64(50), chain.queries[0].FromBlock.Uint64())
}

func TestServiceRefreshErrorKeepsProgress(t *testing.T) {
	chain := &fakeChain{head: 29, failAt: 2, logs: []types.Log{
		tradeLog(t, 3, alice, ether(1)),
		tradeLog(t, 15, alice, ether(1)),
	}}
	svc, store := newTestService(t, chain, 0)
	svc.SetMaxRange(10)

	n, err := svc.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, n)

	next, _, err := store.Cursor(cursorName)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), next)

	chain.failAt = 0
	n, err = svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	top, err := svc.Top(10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 2.0, top[0].PnL)
}

func TestServiceRefreshWaitsForConfirmations(t *testing.T) {
	chain := &fakeChain{head: 20, logs: []types.Log{
		tradeLog(t, 8, alice, ether(1)),
		tradeLog(t, 9, bob, ether(5)),
		tradeLog(t, 20, alice, ether(3)),
	}}
	svc, store := newTestService(t, chain, 0)
	svc.SetConfirmations(12)

	n, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, chain.queries, 1)
	assert.Equal(t, uint64(8), chain.queries[0].ToBlock.Uint64())

	next, _, err := store.Cursor(cursorName)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), next)

	// block 9 is reorged away before it is confirmed
	chain.logs = []types.Log{tradeLog(t, 8, alice, ether(1)), tradeLog(t, 20, alice, ether(3))}
	chain.head = 32
	n, err = svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	top, err := svc.Top(10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, alice.Hex(), top[0].Username)
	assert.Equal(t, 4.0, top[0].PnL)
}

func TestServiceRefreshHeadBelowConfirmations(t *testing.T) {
	chain := &fakeChain{head: 5, logs: []types.Log{tradeLog(t, 1, alice, ether(1))}}
	svc, _ := newTestService(t, chain, 0)
	svc.SetConfirmations(12)

	n, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, chain.queries)
}

func TestServiceNotConfigured(t *testing.T) {
	var svc *Service
	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)

	svc = NewService(&fakeChain{}, nil, common.Address{}, 0)
	_, err = svc.Top(10)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
