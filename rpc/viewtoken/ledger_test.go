package viewtoken

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/swap-contract/settlement"
	"github.com/stretchr/testify/require"
)

type testInv struct {
	err error
	res *result.Invoke

	contract  util.Uint160
	operation string
	params    []any
}

func (t *testInv) Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error) {
	t.contract, t.operation, t.params = contract, operation, params
	return t.res, t.err
}

type testActor struct {
	testInv

	sent    int
	sendErr error
	exec    state.Execution
}

func (a *testActor) MakeCall(util.Uint160, string, ...any) (*transaction.Transaction, error) {
	return nil, errors.New("not implemented")
}

func (a *testActor) MakeRun([]byte) (*transaction.Transaction, error) {
	return nil, errors.New("not implemented")
}

func (a *testActor) MakeUnsignedCall(util.Uint160, string, []transaction.Attribute, ...any) (*transaction.Transaction, error) {
	return nil, errors.New("not implemented")
}

func (a *testActor) MakeUnsignedRun([]byte, []transaction.Attribute) (*transaction.Transaction, error) {
	return nil, errors.New("not implemented")
}

func (a *testActor) SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error) {
	a.contract, a.operation, a.params = contract, method, params
	a.sent++
	return util.Uint256{byte(a.sent)}, 100, a.sendErr
}

func (a *testActor) SendRun([]byte) (util.Uint256, uint32, error) {
	a.sent++
	return util.Uint256{byte(a.sent)}, 100, a.sendErr
}

func (a *testActor) Wait(h util.Uint256, _ uint32, err error) (*state.AppExecResult, error) {
	if err != nil {
		return nil, err
	}
	return &state.AppExecResult{Container: h, Execution: a.exec}, nil
}

var (
	tokenRef = settlement.AssetRef{Hash: util.Uint160{0xac}}
	holder   = util.Uint160{0x5e}
)

func TestLedger(t *testing.T) {
	ctx := context.Background()
	ti := new(testInv)
	l := NewLedger(ti)

	ti.res = &result.Invoke{State: vmstate.Halt.String(), Stack: []stackitem.Item{stackitem.Make(1000)}}

	v, err := l.BalanceOf(ctx, tokenRef, holder, "key")
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(1000), v)
	require.Equal(t, tokenRef.Hash, ti.contract)
	require.Equal(t, "balanceOfWithKey", ti.operation)
	require.Equal(t, []any{holder, "key"}, ti.params)

	ti.res = &result.Invoke{State: vmstate.Halt.String(), Stack: []stackitem.Item{stackitem.Make(-1)}}
	_, err = l.BalanceOf(ctx, tokenRef, holder, "key")
	require.ErrorIs(t, err, settlement.ErrInvalidParams)

	ti.res = &result.Invoke{State: vmstate.Fault.String(), FaultException: "invalid view key"}
	_, err = l.BalanceOf(ctx, tokenRef, holder, "wrong")
	require.ErrorContains(t, err, "invalid view key")

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = l.BalanceOf(cctx, tokenRef, holder, "key")
	require.ErrorIs(t, err, context.Canceled)
}

func TestCustody(t *testing.T) {
	ctx := context.Background()
	ta := new(testActor)
	c := NewCustody(ta, holder)

	tr := settlement.Transfer{Asset: tokenRef, To: util.Uint160{0x05}, Amount: settlement.NewAmount(40959)}

	t.Run("transfer", func(t *testing.T) {
		ta.exec = state.Execution{VMState: vmstate.Halt, Stack: []stackitem.Item{stackitem.Make(true)}}
		require.NoError(t, c.Transfer(ctx, tr))

		ta.exec = state.Execution{VMState: vmstate.Halt, Stack: []stackitem.Item{stackitem.Make(false)}}
		require.Error(t, c.Transfer(ctx, tr))

		ta.exec = state.Execution{VMState: vmstate.Fault, FaultException: "boom"}
		require.ErrorContains(t, c.Transfer(ctx, tr), "boom")

		ta.sendErr = errors.New("network")
		require.ErrorIs(t, c.Transfer(ctx, tr), ta.sendErr)
		ta.sendErr = nil
	})

	t.Run("dispatch", func(t *testing.T) {
		ta.exec = state.Execution{VMState: vmstate.Halt, Stack: []stackitem.Item{stackitem.Make(true)}}
		sent := ta.sent

		require.NoError(t, settlement.Dispatch(ctx, c, []settlement.Transfer{tr, tr}))
		require.Equal(t, sent+2, ta.sent)
	})

	t.Run("registration", func(t *testing.T) {
		ta.exec = state.Execution{VMState: vmstate.Halt, Stack: []stackitem.Item{stackitem.Null{}}}

		require.NoError(t, settlement.Register(ctx, c, []settlement.Registration{
			{Kind: settlement.Subscribe, Asset: tokenRef, Subscriber: holder},
			{Kind: settlement.RegisterViewCredential, Asset: tokenRef, Credential: "key"},
		}))
		require.Equal(t, tokenRef.Hash, ta.contract)
		require.Equal(t, "registerViewKey", ta.operation)
		require.Equal(t, []any{"key"}, ta.params)
	})
}
