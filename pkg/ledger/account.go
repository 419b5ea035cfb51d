// Package ledger reads a depositor's position from the copy-trading vault
// contract.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/copytrade-hub/pkg/units"
)

const VaultABI = `[
{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"getUserBalance","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"getWithdrawnBalance","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"getClaimableProfit","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

var (
	vaultABI = func() abi.ABI {
		parsed, err := abi.JSON(strings.NewReader(VaultABI))
		if err != nil {
			panic(fmt.Sprintf("vault abi: %v", err))
		}
		return parsed
	}()

	ErrInvalidAddress = errors.New("invalid address")
	ErrNotConfigured  = errors.New("ledger: vault contract not configured")
)

// ContractCaller is the subset of ethclient.Client used for view calls.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Account holds vault amounts as 18-decimal strings, the same shape wallet
// providers hand to the UI.
type Account struct {
	Address          string `json:"address"`
	Balance          string `json:"balance"`
	WithdrawnBalance string `json:"withdrawn_balance"`
	ClaimableProfit  string `json:"claimable_profit"`
}

type Reader struct {
	client ContractCaller
	vault  common.Address
}

func NewReader(client ContractCaller, vault common.Address) *Reader {
	return &Reader{client: client, vault: vault}
}

// ParseAddress validates a user-supplied hex address.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

// Account reads all three vault views for user concurrently.
func (r *Reader) Account(ctx context.Context, user string) (Account, error) {
	if r == nil || r.client == nil || r.vault == (common.Address{}) {
		return Account{}, ErrNotConfigured
	}
	addr, err := ParseAddress(user)
	if err != nil {
		return Account{}, err
	}

	var balance, withdrawn, claimable *big.Int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { balance, err = r.view(gctx, "getUserBalance", addr); return })
	g.Go(func() (err error) { withdrawn, err = r.view(gctx, "getWithdrawnBalance", addr); return })
	g.Go(func() (err error) { claimable, err = r.view(gctx, "getClaimableProfit", addr); return })
	if err := g.Wait(); err != nil {
		return Account{}, err
	}

	return Account{
		Address:          addr.Hex(),
		Balance:          units.FormatEther(balance),
		WithdrawnBalance: units.FormatEther(withdrawn),
		ClaimableProfit:  units.FormatEther(claimable),
	}, nil
}

func (r *Reader) view(ctx context.Context, method string, user common.Address) (*big.Int, error) {
	input, err := vaultABI.Pack(method, user)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	vault := r.vault
	out, err := r.client.CallContract(ctx, ethereum.CallMsg{To: &vault, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := vaultABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%s: want 1 output, got %d", method, len(values))
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: output is %T", method, values[0])
	}
	return v, nil
}
