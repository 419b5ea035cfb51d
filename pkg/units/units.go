// Package units converts fixed-point token amounts (wei and friends).
package units

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/params"
)

// EtherDecimals is the scale of ether and of the vault's USDT accounting.
const EtherDecimals = 18

var ether = big.NewInt(params.Ether)

func pow10(decimals int) *big.Int {
	if decimals == EtherDecimals {
		return ether
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}

// Format renders v / 10^decimals exactly, trimming trailing zeros but
// keeping one fractional digit ("1.5", "0.0", "-2.25").
func Format(v *big.Int, decimals int) string {
	if v == nil {
		v = new(big.Int)
	}
	if decimals <= 0 {
		return v.String() + ".0"
	}
	abs := new(big.Int).Abs(v)
	intPart, frac := new(big.Int).QuoRem(abs, pow10(decimals), new(big.Int))

	fs := frac.String()
	fs = strings.Repeat("0", decimals-len(fs)) + fs
	fs = strings.TrimRight(fs, "0")
	if fs == "" {
		fs = "0"
	}

	sign := ""
	if v.Sign() < 0 {
		sign = "-"
	}
	return sign + intPart.String() + "." + fs
}

// ToFloat is the lossy float view of v / 10^decimals.
func ToFloat(v *big.Int, decimals int) float64 {
	if v == nil {
		return 0
	}
	f := new(big.Float).SetInt(v)
	if decimals > 0 {
		f.Quo(f, new(big.Float).SetInt(pow10(decimals)))
	}
	out, _ := f.Float64()
	return out
}

func FormatEther(wei *big.Int) string { return Format(wei, EtherDecimals) }

func EtherToFloat(wei *big.Int) float64 { return ToFloat(wei, EtherDecimals) }
