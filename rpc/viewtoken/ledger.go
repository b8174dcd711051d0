package viewtoken

import (
	"context"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/swap-contract/settlement"
)

// Ledger implements settlement.Ledger over view token contracts.
type Ledger struct {
	inv Invoker
}

// NewLedger returns Ledger making test invocations through inv.
func NewLedger(inv Invoker) *Ledger {
	return &Ledger{inv: inv}
}

// BalanceOf implements settlement.Ledger.
func (l *Ledger) BalanceOf(ctx context.Context, asset settlement.AssetRef, holder util.Uint160, credential string) (*uint256.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := NewReader(l.inv, asset.Hash).BalanceOfWithKey(holder, credential)
	if err != nil {
		return nil, err
	}

	v, err := settlement.AmountFromBig(b)
	if err != nil {
		return nil, fmt.Errorf("invalid balance: %w", err)
	}

	return &v, nil
}

// CustodyActor signs transactions on behalf of the custody account and waits
// for their acceptance. *actor.Actor satisfies it.
type CustodyActor interface {
	Actor

	Wait(h util.Uint256, vub uint32, err error) (*state.AppExecResult, error)
}

// Custody executes settlement transfers and registrations from an account
// controlled by the host. It implements settlement.Transferer and
// settlement.Registrar.
type Custody struct {
	act  CustodyActor
	self util.Uint160
}

// NewCustody returns Custody operating from the self account. The act must
// sign with self.
func NewCustody(act CustodyActor, self util.Uint160) *Custody {
	return &Custody{act: act, self: self}
}

// Transfer implements settlement.Transferer. It returns an error if the token
// contract rejects the transfer.
func (c *Custody) Transfer(ctx context.Context, t settlement.Transfer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res, err := c.act.Wait(New(c.act, t.Asset.Hash).Transfer(c.self, t.To, t.Amount.ToBig(), nil))
	if err != nil {
		return fmt.Errorf("wait for transaction: %w", err)
	}

	if err := checkResult(res); err != nil {
		return err
	}

	if len(res.Stack) == 0 {
		return fmt.Errorf("transaction %s: empty result stack", res.Container.StringLE())
	}

	ok, err := res.Stack[0].TryBool()
	if err != nil || !ok {
		return errors.New("transfer rejected by token contract")
	}

	return nil
}

// Subscribe implements settlement.Registrar. NEP-17 tokens notify every
// receiving contract, so there is nothing to do.
func (c *Custody) Subscribe(context.Context, settlement.AssetRef, util.Uint160) error {
	return nil
}

// RegisterViewCredential implements settlement.Registrar.
func (c *Custody) RegisterViewCredential(ctx context.Context, asset settlement.AssetRef, credential string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res, err := c.act.Wait(New(c.act, asset.Hash).RegisterViewKey(credential))
	if err != nil {
		return fmt.Errorf("wait for transaction: %w", err)
	}

	return checkResult(res)
}

func checkResult(res *state.AppExecResult) error {
	if res.VMState != vmstate.Halt {
		return fmt.Errorf("transaction %s failed: %s", res.Container.StringLE(), res.FaultException)
	}
	return nil
}
