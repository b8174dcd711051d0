package settlement

import (
	"math/big"
	"testing"

	"github.com/nspcc-dev/swap-contract/contracts/swap/swapconst"
	"github.com/stretchr/testify/require"
)

func TestMaxAmount(t *testing.T) {
	limit, ok := new(big.Int).SetString(swapconst.MaxAmount, 10)
	require.True(t, ok)

	v := MaxAmount()
	require.Zero(t, limit.Cmp(v.ToBig()))

	v.SetUint64(1)
	cur := MaxAmount()
	require.Zero(t, limit.Cmp(cur.ToBig()))

	_, err := AmountFromBig(limit)
	require.NoError(t, err)

	_, err = AmountFromBig(new(big.Int).Add(limit, big.NewInt(1)))
	require.ErrorIs(t, err, ErrArithmeticOverflow)
}
