package settlement

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Ledger answers balance queries of external token ledgers.
type Ledger interface {
	// BalanceOf returns amount of asset owned by holder. Credential is the
	// view credential registered by holder.
	BalanceOf(ctx context.Context, asset AssetRef, holder util.Uint160, credential string) (*uint256.Int, error)
}

// Transferer executes outbound transfers on behalf of the contract.
type Transferer interface {
	Transfer(ctx context.Context, t Transfer) error
}

// Registrar executes registration handshake instructions.
type Registrar interface {
	Subscribe(ctx context.Context, asset AssetRef, subscriber util.Uint160) error
	RegisterViewCredential(ctx context.Context, asset AssetRef, credential string) error
}

// Dispatch executes transfers of a committed invocation in emission order.
// It stops at the first failure; transfers already executed are not
// compensated.
func Dispatch(ctx context.Context, t Transferer, transfers []Transfer) error {
	for i := range transfers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.Transfer(ctx, transfers[i]); err != nil {
			return fmt.Errorf("transfer #%d (%s): %w", i, transfers[i], err)
		}
	}

	return nil
}

// Register executes registration instructions returned by Engine.Init.
func Register(ctx context.Context, r Registrar, regs []Registration) error {
	for i := range regs {
		var err error

		switch regs[i].Kind {
		case Subscribe:
			err = r.Subscribe(ctx, regs[i].Asset, regs[i].Subscriber)
		case RegisterViewCredential:
			err = r.RegisterViewCredential(ctx, regs[i].Asset, regs[i].Credential)
		default:
			err = fmt.Errorf("unknown registration kind %d", regs[i].Kind)
		}
		if err != nil {
			return fmt.Errorf("registration #%d at %s: %w", i, regs[i].Asset, err)
		}
	}

	return nil
}
