package settlement

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/swap-contract/contracts/swap/swapconst"
)

// AssetRef identifies an external token ledger.
type AssetRef struct {
	// Script hash of the token contract.
	Hash util.Uint160
	// Integrity hash of the token code captured at initialization.
	CodeHash util.Uint256
}

func (a AssetRef) String() string {
	return address.Uint160ToString(a.Hash)
}

// ForwardPolicy defines what happens with accepted tokens after settlement.
type ForwardPolicy uint8

const (
	// ForwardAccrue leaves accepted tokens with the contract until the admin
	// withdraws them.
	ForwardAccrue ForwardPolicy = swapconst.ForwardAccrue
	// ForwardImmediate forwards accepted tokens to the admin in the same
	// invocation.
	ForwardImmediate ForwardPolicy = swapconst.ForwardImmediate
)

func (p ForwardPolicy) String() string {
	switch p {
	case ForwardAccrue:
		return "accrue"
	case ForwardImmediate:
		return "immediate"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(p))
	}
}

func (p ForwardPolicy) valid() bool {
	return p == ForwardAccrue || p == ForwardImmediate
}

// Transfer is an outbound instruction to move Amount of Asset from the
// contract account to To. It is executed by the host after the invocation
// commits.
type Transfer struct {
	Asset  AssetRef
	To     util.Uint160
	Amount uint256.Int
}

func (t Transfer) String() string {
	return fmt.Sprintf("transfer %s of %s to %s", amountString(&t.Amount), t.Asset, address.Uint160ToString(t.To))
}

// RegistrationKind is a kind of one-time request issued to a token ledger at
// initialization.
type RegistrationKind uint8

const (
	// Subscribe asks the ledger to notify the contract about deposits.
	Subscribe RegistrationKind = iota
	// RegisterViewCredential registers the credential used by balance
	// queries.
	RegisterViewCredential
)

// Registration is an instruction of the registration handshake.
type Registration struct {
	Kind  RegistrationKind
	Asset AssetRef
	// Contract identity for Subscribe.
	Subscriber util.Uint160
	// View credential for RegisterViewCredential.
	Credential string
}
