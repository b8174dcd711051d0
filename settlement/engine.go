package settlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

// Prm groups Engine dependencies.
type Prm struct {
	// Writes settlement progress into the log. Optional.
	Logger *zap.Logger

	// Config storage.
	Store Store

	// Token ledgers queried by the balance oracle.
	Ledger Ledger

	// Identity of the contract itself, holder of all reserves.
	Self util.Uint160
}

// Engine processes invocations of a single swap contract instance. It does
// not synchronize invocations, the host must serialize them.
type Engine struct {
	log    *zap.Logger
	store  Store
	ledger Ledger
	self   util.Uint160
}

// Outcome is a result of a successful state-changing invocation.
type Outcome struct {
	// Unique identifier of the invocation, used for log correlation.
	ID uuid.UUID
	// Transfers to be executed by the host in order after commit.
	Transfers []Transfer
}

// New constructs Engine from prm. Store and Ledger are required.
func New(prm Prm) *Engine {
	switch {
	case prm.Store == nil:
		panic("missing config store")
	case prm.Ledger == nil:
		panic("missing ledger")
	}

	l := prm.Logger
	if l == nil {
		l = zap.NewNop()
	}

	return &Engine{
		log:    l,
		store:  prm.Store,
		ledger: prm.Ledger,
		self:   prm.Self,
	}
}

// Init stores the initial Config built from p and returns the registration
// handshake for both token ledgers. Init fails with ErrAlreadyInitialized if
// the Store already has a record.
func (e *Engine) Init(ctx context.Context, p Params) ([]Registration, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	_, err := e.store.Load(ctx)
	switch {
	case err == nil:
		return nil, ErrAlreadyInitialized
	case !errors.Is(err, ErrConfigNotFound):
		return nil, fmt.Errorf("check existing config: %w", err)
	}

	cfg := p.config()

	if err := e.store.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}

	e.log.Info("swap initialized",
		zap.Stringer("admin", addr(cfg.Admin)),
		zap.Stringer("accepted", cfg.Accepted),
		zap.Stringer("offered", cfg.Offered),
		zap.String("rate", amountString(&cfg.ExchangeRate)),
		zap.Stringer("forward", cfg.Forward))

	var regs []Registration
	for _, a := range []AssetRef{cfg.Accepted, cfg.Offered} {
		regs = append(regs,
			Registration{Kind: Subscribe, Asset: a, Subscriber: e.self},
			Registration{Kind: RegisterViewCredential, Asset: a, Credential: cfg.ViewCredential},
		)
	}

	return regs, nil
}

// Handle processes a state-changing message. On error nothing is saved and
// no transfer is returned.
func (e *Engine) Handle(ctx context.Context, inv Invocation, msg Message) (Outcome, error) {
	cfg, err := e.store.Load(ctx)
	if err != nil {
		return Outcome{}, err
	}

	var (
		transfers []Transfer
		changed   bool
	)

	switch m := msg.(type) {
	case depositMessage:
		transfers, err = settle(&cfg, inv.Caller, m.event())
		changed = err == nil
	case WithdrawFunding:
		transfers, err = authorizeWithdrawal(cfg, inv.Caller, m)
	default:
		err = fmt.Errorf("unsupported message %T", msg)
	}
	if err != nil {
		e.log.Debug("invocation rejected",
			zap.Stringer("caller", addr(inv.Caller)),
			zap.String("message", fmt.Sprintf("%T", msg)),
			zap.Error(err))
		return Outcome{}, err
	}

	if changed {
		if err := e.store.Save(ctx, cfg); err != nil {
			return Outcome{}, fmt.Errorf("save config: %w", err)
		}
	}

	out := Outcome{ID: uuid.New(), Transfers: transfers}

	for i := range transfers {
		e.log.Info("transfer emitted",
			zap.Stringer("invocation", out.ID),
			zap.Stringer("transfer", transfers[i]))
	}

	return out, nil
}

// Config returns the public part of the stored Config.
func (e *Engine) Config(ctx context.Context) (ConfigView, error) {
	cfg, err := e.store.Load(ctx)
	if err != nil {
		return ConfigView{}, err
	}

	return cfg.View(), nil
}

// AcceptedTokenAvailable asks the accepted token ledger how many tokens the
// contract owns.
func (e *Engine) AcceptedTokenAvailable(ctx context.Context) (*uint256.Int, error) {
	return e.available(ctx, func(c Config) AssetRef { return c.Accepted })
}

// OfferedTokenAvailable asks the offered token ledger how many tokens the
// contract owns.
func (e *Engine) OfferedTokenAvailable(ctx context.Context) (*uint256.Int, error) {
	return e.available(ctx, func(c Config) AssetRef { return c.Offered })
}

func (e *Engine) available(ctx context.Context, asset func(Config) AssetRef) (*uint256.Int, error) {
	cfg, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	a := asset(cfg)

	v, err := e.ledger.BalanceOf(ctx, a, e.self, cfg.ViewCredential)
	if err != nil {
		return nil, fmt.Errorf("query balance at %s: %w", a, err)
	}

	return v, nil
}

// authenticate checks that the deposit is reported by the accepted token
// ledger itself.
func authenticate(caller util.Uint160, accepted AssetRef) error {
	if !caller.Equals(accepted.Hash) {
		return &AuthenticationError{Expected: accepted.Hash, Actual: caller}
	}

	return nil
}

// settle applies an authenticated deposit to cfg. cfg is modified only on
// success.
func settle(cfg *Config, caller util.Uint160, ev DepositEvent) ([]Transfer, error) {
	if err := authenticate(caller, cfg.Accepted); err != nil {
		return nil, err
	}

	if ev.From.Equals(util.Uint160{}) {
		return nil, fmt.Errorf("%w: missing depositor", ErrInvalidDeposit)
	}

	offered, err := mulAmount(&ev.Amount, &cfg.ExchangeRate)
	if err != nil {
		return nil, fmt.Errorf("offered amount: %w", err)
	}

	total, err := addAmount(&cfg.TotalRaised, &ev.Amount)
	if err != nil {
		return nil, fmt.Errorf("total raised: %w", err)
	}

	cfg.TotalRaised = total

	transfers := []Transfer{{Asset: cfg.Offered, To: ev.From, Amount: offered}}
	if cfg.Forward == ForwardImmediate {
		transfers = append(transfers, Transfer{Asset: cfg.Accepted, To: cfg.Admin, Amount: ev.Amount})
	}

	return transfers, nil
}

// authorizeWithdrawal checks admin identity only; sufficiency of funds is up
// to the accepted token ledger.
func authorizeWithdrawal(cfg Config, caller util.Uint160, req WithdrawFunding) ([]Transfer, error) {
	if !caller.Equals(cfg.Admin) {
		return nil, fmt.Errorf("%w: caller %s is not admin", ErrAuthorization, address.Uint160ToString(caller))
	}

	return []Transfer{{Asset: cfg.Accepted, To: cfg.Admin, Amount: req.Amount}}, nil
}

type addr util.Uint160

func (a addr) String() string {
	return address.Uint160ToString(util.Uint160(a))
}
