package leaderboard

import (
	"math/big"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/copytrade-hub/pkg/db"
	"github.com/copytrade-hub/pkg/units"
)

// Trader is one leaderboard row. Username is the trader's checksummed
// address; PnL is in ether units.
type Trader struct {
	Rank     int     `json:"rank"`
	Username string  `json:"username"`
	PnL      float64 `json:"pnl"`
	PnLExact string  `json:"pnl_exact"`
	Trades   int     `json:"trades"`
}

type total struct {
	addr   string
	wei    *big.Int
	trades int
}

// Aggregate sums PnL per trader over logs and ranks the result. Logs that
// are not TradeExecuted events or were removed by a reorg are skipped.
func Aggregate(logs []types.Log) []Trader {
	sums := map[common.Address]*total{}
	for _, l := range logs {
		if l.Removed {
			continue
		}
		tr, err := DecodeTrade(l)
		if err != nil {
			continue
		}
		t, ok := sums[tr.Trader]
		if !ok {
			t = &total{addr: tr.Trader.Hex(), wei: new(big.Int)}
			sums[tr.Trader] = t
		}
		t.wei.Add(t.wei, tr.PnL)
		t.trades++
	}

	totals := make([]total, 0, len(sums))
	for _, t := range sums {
		totals = append(totals, *t)
	}
	return rank(totals, 0)
}

// Rank orders stored totals and keeps the first limit rows (all if limit <= 0).
func Rank(rows []db.TraderPnL, limit int) []Trader {
	totals := make([]total, 0, len(rows))
	for _, r := range rows {
		totals = append(totals, total{addr: r.Address, wei: r.PnLWei, trades: r.Trades})
	}
	return rank(totals, limit)
}

// rank sorts by PnL descending, ties by address ascending, comparing the
// exact wei amounts rather than their float views.
func rank(totals []total, limit int) []Trader {
	slices.SortFunc(totals, func(a, b total) int {
		if c := b.wei.Cmp(a.wei); c != 0 {
			return c
		}
		return strings.Compare(strings.ToLower(a.addr), strings.ToLower(b.addr))
	})
	if limit > 0 && len(totals) > limit {
		totals = totals[:limit]
	}

	out := make([]Trader, len(totals))
	for i, t := range totals {
		out[i] = Trader{
			Rank:     i + 1,
			Username: t.addr,
			PnL:      units.EtherToFloat(t.wei),
			PnLExact: units.FormatEther(t.wei),
			Trades:   t.trades,
		}
	}
	return out
}
