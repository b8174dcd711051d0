package settlement

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/swap-contract/contracts/swap/swapconst"
)

var maxAmount = func() uint256.Int {
	v, ok := new(big.Int).SetString(swapconst.MaxAmount, 10)
	if !ok {
		panic("invalid max amount constant")
	}
	m, _ := uint256.FromBig(v)
	return *m
}()

// MaxAmount returns the largest amount of any token the swap operates with.
func MaxAmount() uint256.Int {
	return maxAmount
}

// NewAmount returns amount of the given value.
func NewAmount(v uint64) uint256.Int {
	return *uint256.NewInt(v)
}

// AmountFromBig converts non-negative b not exceeding MaxAmount.
func AmountFromBig(b *big.Int) (uint256.Int, error) {
	if b == nil {
		return uint256.Int{}, fmt.Errorf("%w: nil amount", ErrInvalidParams)
	}
	if b.Sign() < 0 {
		return uint256.Int{}, fmt.Errorf("%w: negative amount %s", ErrInvalidParams, b)
	}
	v, overflow := uint256.FromBig(b)
	if overflow || v.Gt(&maxAmount) {
		return uint256.Int{}, fmt.Errorf("%w: %s exceeds max amount", ErrArithmeticOverflow, b)
	}
	return *v, nil
}

// mulAmount returns x*y or ErrArithmeticOverflow if the product exceeds
// MaxAmount.
func mulAmount(x, y *uint256.Int) (uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow || z.Gt(&maxAmount) {
		return uint256.Int{}, fmt.Errorf("%w: %s * %s", ErrArithmeticOverflow, x.ToBig(), y.ToBig())
	}
	return *z, nil
}

// addAmount returns x+y or ErrArithmeticOverflow if the sum exceeds
// MaxAmount.
func addAmount(x, y *uint256.Int) (uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow || z.Gt(&maxAmount) {
		return uint256.Int{}, fmt.Errorf("%w: %s + %s", ErrArithmeticOverflow, x.ToBig(), y.ToBig())
	}
	return *z, nil
}

func amountString(v *uint256.Int) string {
	return v.ToBig().String()
}
