package settlement

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testCredential = "api_key_view"

var (
	adminAcc    = util.Uint160{0xad}
	userAcc     = util.Uint160{0x05, 0xe5}
	selfAcc     = util.Uint160{0x5e, 0x1f}
	acceptedRef = AssetRef{Hash: util.Uint160{0xac}, CodeHash: util.Uint256{0x01}}
	offeredRef  = AssetRef{Hash: util.Uint160{0x0f}, CodeHash: util.Uint256{0x02}}
)

type balanceQuery struct {
	asset      AssetRef
	holder     util.Uint160
	credential string
}

type testLedger struct {
	balances map[util.Uint160]uint64
	queries  []balanceQuery
	err      error
}

func (l *testLedger) BalanceOf(_ context.Context, asset AssetRef, holder util.Uint160, credential string) (*uint256.Int, error) {
	l.queries = append(l.queries, balanceQuery{asset, holder, credential})
	if l.err != nil {
		return nil, l.err
	}
	return uint256.NewInt(l.balances[asset.Hash]), nil
}

// countingStore wraps Store and counts saves.
type countingStore struct {
	Store
	saves int
}

func (s *countingStore) Save(ctx context.Context, cfg Config) error {
	s.saves++
	return s.Store.Save(ctx, cfg)
}

func testParams(rate uint64, forward ForwardPolicy) Params {
	return Params{
		Admin:          adminAcc,
		Accepted:       acceptedRef,
		Offered:        offeredRef,
		ExchangeRate:   NewAmount(rate),
		ViewCredential: testCredential,
		Forward:        forward,
	}
}

func newTestEngine(t *testing.T, p Params) (*Engine, *countingStore, *testLedger) {
	st := &countingStore{Store: NewKVStore(storage.NewMemoryStore())}
	l := &testLedger{balances: make(map[util.Uint160]uint64)}

	e := New(Prm{
		Logger: zaptest.NewLogger(t),
		Store:  st,
		Ledger: l,
		Self:   selfAcc,
	})

	_, err := e.Init(context.Background(), p)
	require.NoError(t, err)
	st.saves = 0

	return e, st, l
}

func deposit(from util.Uint160, amount uint64) Receive {
	return Receive{Sender: from, From: from, Amount: NewAmount(amount)}
}

func TestEngine_Deposit(t *testing.T) {
	ctx := context.Background()

	t.Run("settled", func(t *testing.T) {
		e, st, _ := newTestEngine(t, testParams(123, ForwardAccrue))

		out, err := e.Handle(ctx, Invocation{Caller: acceptedRef.Hash}, deposit(userAcc, 333))
		require.NoError(t, err)
		require.Equal(t, []Transfer{{Asset: offeredRef, To: userAcc, Amount: NewAmount(40959)}}, out.Transfers)
		require.NotEqual(t, uuid.Nil, out.ID)
		require.Equal(t, 1, st.saves)

		v, err := e.Config(ctx)
		require.NoError(t, err)
		require.Equal(t, NewAmount(333), v.TotalRaised)
	})

	t.Run("forged", func(t *testing.T) {
		e, st, _ := newTestEngine(t, testParams(123, ForwardAccrue))

		_, err := e.Handle(ctx, Invocation{Caller: userAcc}, deposit(userAcc, 333))
		require.ErrorIs(t, err, ErrAuthentication)

		var authErr *AuthenticationError
		require.True(t, errors.As(err, &authErr))
		require.Equal(t, acceptedRef.Hash, authErr.Expected)
		require.Equal(t, userAcc, authErr.Actual)
		require.Contains(t, err.Error(), acceptedRef.String())
		require.Contains(t, err.Error(), addr(userAcc).String())
		require.Zero(t, st.saves)

		v, err := e.Config(ctx)
		require.NoError(t, err)
		require.True(t, v.TotalRaised.IsZero())
	})

	t.Run("offered token is not accepted", func(t *testing.T) {
		e, _, _ := newTestEngine(t, testParams(1, ForwardAccrue))

		_, err := e.Handle(ctx, Invocation{Caller: offeredRef.Hash}, deposit(userAcc, 1))
		require.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("immediate forward", func(t *testing.T) {
		e, _, _ := newTestEngine(t, testParams(2, ForwardImmediate))

		out, err := e.Handle(ctx, Invocation{Caller: acceptedRef.Hash}, deposit(userAcc, 50))
		require.NoError(t, err)
		require.Equal(t, []Transfer{
			{Asset: offeredRef, To: userAcc, Amount: NewAmount(100)},
			{Asset: acceptedRef, To: adminAcc, Amount: NewAmount(50)},
		}, out.Transfers)
	})

	t.Run("dedicated callback", func(t *testing.T) {
		e, _, _ := newTestEngine(t, testParams(3, ForwardAccrue))

		out, err := e.Handle(ctx, Invocation{Caller: acceptedRef.Hash},
			DepositCallback{From: userAcc, Amount: NewAmount(7)})
		require.NoError(t, err)
		require.Equal(t, []Transfer{{Asset: offeredRef, To: userAcc, Amount: NewAmount(21)}}, out.Transfers)

		_, err = e.Handle(ctx, Invocation{Caller: userAcc},
			DepositCallback{From: userAcc, Amount: NewAmount(7)})
		require.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("sender differs from depositor", func(t *testing.T) {
		e, _, _ := newTestEngine(t, testParams(1, ForwardAccrue))

		operator := util.Uint160{0x0e}
		out, err := e.Handle(ctx, Invocation{Caller: acceptedRef.Hash},
			Receive{Sender: operator, From: userAcc, Amount: NewAmount(5), Payload: []byte("memo")})
		require.NoError(t, err)
		require.Equal(t, userAcc, out.Transfers[0].To)
	})

	t.Run("missing depositor", func(t *testing.T) {
		e, st, _ := newTestEngine(t, testParams(1, ForwardAccrue))

		_, err := e.Handle(ctx, Invocation{Caller: acceptedRef.Hash}, deposit(util.Uint160{}, 5))
		require.ErrorIs(t, err, ErrInvalidDeposit)
		require.Zero(t, st.saves)
	})

	t.Run("zero rate", func(t *testing.T) {
		e, _, _ := newTestEngine(t, testParams(0, ForwardAccrue))

		out, err := e.Handle(ctx, Invocation{Caller: acceptedRef.Hash}, deposit(userAcc, 10))
		require.NoError(t, err)
		require.True(t, out.Transfers[0].Amount.IsZero())

		v, err := e.Config(ctx)
		require.NoError(t, err)
		require.Equal(t, NewAmount(10), v.TotalRaised)
	})
}

func TestEngine_Overflow(t *testing.T) {
	ctx := context.Background()
	limit := MaxAmount()
	half := new(uint256.Int).Rsh(&limit, 1)

	t.Run("offered amount", func(t *testing.T) {
		p := testParams(0, ForwardAccrue)
		p.ExchangeRate = *half

		e, st, _ := newTestEngine(t, p)

		_, err := e.Handle(ctx, Invocation{Caller: acceptedRef.Hash}, deposit(userAcc, 3))
		require.ErrorIs(t, err, ErrArithmeticOverflow)
		require.Zero(t, st.saves)

		out, err := e.Handle(ctx, Invocation{Caller: acceptedRef.Hash}, deposit(userAcc, 2))
		require.NoError(t, err)
		require.Equal(t, *new(uint256.Int).SubUint64(&limit, 1), out.Transfers[0].Amount)
	})

	t.Run("total raised", func(t *testing.T) {
		e, st, _ := newTestEngine(t, testParams(1, ForwardAccrue))

		_, err := e.Handle(ctx, Invocation{Caller: acceptedRef.Hash}, Receive{From: userAcc, Amount: limit})
		require.NoError(t, err)

		_, err = e.Handle(ctx, Invocation{Caller: acceptedRef.Hash}, deposit(userAcc, 1))
		require.ErrorIs(t, err, ErrArithmeticOverflow)
		require.Equal(t, 1, st.saves)

		v, err := e.Config(ctx)
		require.NoError(t, err)
		require.Equal(t, limit, v.TotalRaised)
	})
}

func TestEngine_Withdraw(t *testing.T) {
	ctx := context.Background()
	e, st, _ := newTestEngine(t, testParams(123, ForwardAccrue))

	_, err := e.Handle(ctx, Invocation{Caller: userAcc}, WithdrawFunding{Amount: NewAmount(123)})
	require.ErrorIs(t, err, ErrAuthorization)

	// the accepted token ledger is the only judge of available funds
	for _, amount := range []uint64{123, 1_000_000_000} {
		out, err := e.Handle(ctx, Invocation{Caller: adminAcc}, WithdrawFunding{Amount: NewAmount(amount)})
		require.NoError(t, err)
		require.Equal(t, []Transfer{{Asset: acceptedRef, To: adminAcc, Amount: NewAmount(amount)}}, out.Transfers)
	}

	// withdrawal never changes the record
	require.Zero(t, st.saves)
}

func TestEngine_Invariants(t *testing.T) {
	ctx := context.Background()
	p := testParams(7, ForwardAccrue)
	e, _, _ := newTestEngine(t, p)

	initial, err := e.Config(ctx)
	require.NoError(t, err)

	var total uint64
	for i := 0; i < 100; i++ {
		amount := uint64(rand.Intn(1_000_000))

		switch rand.Intn(3) {
		case 0:
			out, err := e.Handle(ctx, Invocation{Caller: acceptedRef.Hash}, deposit(userAcc, amount))
			require.NoError(t, err)
			require.Len(t, out.Transfers, 1)
			require.Equal(t, NewAmount(amount*7), out.Transfers[0].Amount)
			total += amount
		case 1:
			_, err := e.Handle(ctx, Invocation{Caller: userAcc}, deposit(userAcc, amount))
			require.ErrorIs(t, err, ErrAuthentication)
		case 2:
			_, err := e.Handle(ctx, Invocation{Caller: adminAcc}, WithdrawFunding{Amount: NewAmount(amount)})
			require.NoError(t, err)
		}
	}

	v, err := e.Config(ctx)
	require.NoError(t, err)
	require.Equal(t, NewAmount(total), v.TotalRaised)

	v.TotalRaised = initial.TotalRaised
	require.Equal(t, initial, v)
}

func TestEngine_Config(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t, testParams(123, ForwardAccrue))

	v, err := e.Config(ctx)
	require.NoError(t, err)
	require.Equal(t, ConfigView{
		Accepted:     acceptedRef,
		Offered:      offeredRef,
		Admin:        adminAcc,
		ExchangeRate: NewAmount(123),
	}, v)
	require.NotContains(t, fmt.Sprintf("%+v", v), testCredential)
}

func TestEngine_Init(t *testing.T) {
	ctx := context.Background()
	l := &testLedger{}

	e := New(Prm{Store: NewKVStore(storage.NewMemoryStore()), Ledger: l, Self: selfAcc})

	_, err := e.Config(ctx)
	require.ErrorIs(t, err, ErrConfigNotFound)

	_, err = e.Handle(ctx, Invocation{Caller: acceptedRef.Hash}, deposit(userAcc, 1))
	require.ErrorIs(t, err, ErrConfigNotFound)

	p := testParams(1, ForwardAccrue)
	p.ViewCredential = ""
	_, err = e.Init(ctx, p)
	require.ErrorIs(t, err, ErrInvalidParams)

	regs, err := e.Init(ctx, testParams(1, ForwardAccrue))
	require.NoError(t, err)
	require.Equal(t, []Registration{
		{Kind: Subscribe, Asset: acceptedRef, Subscriber: selfAcc},
		{Kind: RegisterViewCredential, Asset: acceptedRef, Credential: testCredential},
		{Kind: Subscribe, Asset: offeredRef, Subscriber: selfAcc},
		{Kind: RegisterViewCredential, Asset: offeredRef, Credential: testCredential},
	}, regs)

	_, err = e.Init(ctx, testParams(2, ForwardAccrue))
	require.ErrorIs(t, err, ErrAlreadyInitialized)

	v, err := e.Config(ctx)
	require.NoError(t, err)
	require.Equal(t, NewAmount(1), v.ExchangeRate)
}

func TestEngine_Available(t *testing.T) {
	ctx := context.Background()
	e, _, l := newTestEngine(t, testParams(1, ForwardAccrue))

	l.balances[acceptedRef.Hash] = 10
	l.balances[offeredRef.Hash] = 20

	v, err := e.AcceptedTokenAvailable(ctx)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(10), v)

	v, err = e.OfferedTokenAvailable(ctx)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(20), v)

	require.Equal(t, []balanceQuery{
		{acceptedRef, selfAcc, testCredential},
		{offeredRef, selfAcc, testCredential},
	}, l.queries)

	// no caching
	l.balances[acceptedRef.Hash] = 11
	v, err = e.AcceptedTokenAvailable(ctx)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(11), v)

	l.err = errors.New("unreachable")
	_, err = e.OfferedTokenAvailable(ctx)
	require.ErrorIs(t, err, l.err)
}

func TestParams_Validate(t *testing.T) {
	for name, mod := range map[string]func(*Params){
		"missing admin":    func(p *Params) { p.Admin = util.Uint160{} },
		"missing accepted": func(p *Params) { p.Accepted = AssetRef{} },
		"missing offered":  func(p *Params) { p.Offered = AssetRef{} },
		"same tokens":      func(p *Params) { p.Offered = p.Accepted },
		"huge rate":        func(p *Params) { p.ExchangeRate.AddUint64(&maxAmount, 1) },
		"no credential":    func(p *Params) { p.ViewCredential = "" },
		"unknown policy":   func(p *Params) { p.Forward = 2 },
	} {
		t.Run(name, func(t *testing.T) {
			p := testParams(1, ForwardAccrue)
			mod(&p)
			require.ErrorIs(t, p.Validate(), ErrInvalidParams)
		})
	}

	require.NoError(t, testParams(0, ForwardImmediate).Validate())
}
