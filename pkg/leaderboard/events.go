// Package leaderboard ranks copy-trading strategy providers by the realised
// PnL their trade contract reports on-chain.
package leaderboard

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TradeContractABI is the slice of the trade contract ABI the leaderboard reads.
const TradeContractABI = `[{"anonymous":false,"inputs":[{"indexed":true,"internalType":"address","name":"trader","type":"address"},{"indexed":false,"internalType":"int256","name":"pnl","type":"int256"}],"name":"TradeExecuted","type":"event"}]`

var (
	tradeABI      = mustABI(TradeContractABI)
	tradeExecuted = tradeABI.Events["TradeExecuted"]

	// TradeExecutedTopic is keccak256("TradeExecuted(address,int256)").
	TradeExecutedTopic = tradeExecuted.ID

	ErrNotTradeLog = errors.New("not a TradeExecuted log")
)

func mustABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Sprintf("trade abi: %v", err))
	}
	return parsed
}

// Trade is one decoded TradeExecuted event. PnL is in wei and may be negative.
type Trade struct {
	Trader      common.Address
	PnL         *big.Int
	BlockNumber uint64
	TxHash      common.Hash
}

// DecodeTrade decodes a TradeExecuted log.
func DecodeTrade(l types.Log) (Trade, error) {
	if len(l.Topics) < 2 || l.Topics[0] != TradeExecutedTopic {
		return Trade{}, ErrNotTradeLog
	}
	values, err := tradeExecuted.Inputs.NonIndexed().Unpack(l.Data)
	if err != nil {
		return Trade{}, fmt.Errorf("unpack TradeExecuted in %s: %w", l.TxHash.Hex(), err)
	}
	if len(values) != 1 {
		return Trade{}, fmt.Errorf("TradeExecuted in %s: want 1 value, got %d", l.TxHash.Hex(), len(values))
	}
	pnl, ok := values[0].(*big.Int)
	if !ok {
		return Trade{}, fmt.Errorf("TradeExecuted in %s: pnl is %T", l.TxHash.Hex(), values[0])
	}
	return Trade{
		Trader:      common.BytesToAddress(l.Topics[1].Bytes()),
		PnL:         pnl,
		BlockNumber: l.BlockNumber,
		TxHash:      l.TxHash,
	}, nil
}

// EncodeTradeData packs the non-indexed TradeExecuted payload. Used to build
// fixtures and by local devnets that replay trades.
func EncodeTradeData(pnl *big.Int) ([]byte, error) {
	return tradeExecuted.Inputs.NonIndexed().Pack(pnl)
}
