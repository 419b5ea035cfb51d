package db

import (
	"math/big"
	"time"
)

// TraderPnL is the running realised PnL of one trader, summed from
// TradeExecuted logs. PnLWei can be negative.
type TraderPnL struct {
	Address   string    `json:"address"`
	PnLWei    *big.Int  `json:"pnl_wei"`
	Trades    int       `json:"trades"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PnLDelta is what one scan adds to a trader.
type PnLDelta struct {
	PnLWei *big.Int
	Trades int
}
