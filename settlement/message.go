package settlement

import (
	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Message is an inbound state-changing message. Implementations are
// Receive, DepositCallback and WithdrawFunding.
type Message interface {
	message()
}

// Receive is a generic payment hook. Sender initiated the transfer on behalf
// of From, the owner of the deposited funds.
type Receive struct {
	Sender  util.Uint160
	From    util.Uint160
	Amount  uint256.Int
	Payload []byte
}

// DepositCallback is a dedicated deposit report.
type DepositCallback struct {
	From   util.Uint160
	Amount uint256.Int
}

// WithdrawFunding requests accepted tokens to be sent to the admin.
type WithdrawFunding struct {
	Amount uint256.Int
}

func (Receive) message()         {}
func (DepositCallback) message() {}
func (WithdrawFunding) message() {}

// DepositEvent is a deposit normalized from any deposit message. Its fields
// are reported by the caller and are trusted only after the caller is
// authenticated.
type DepositEvent struct {
	From    util.Uint160
	Amount  uint256.Int
	Payload []byte
}

type depositMessage interface {
	Message
	event() DepositEvent
}

func (m Receive) event() DepositEvent {
	return DepositEvent{From: m.From, Amount: m.Amount, Payload: m.Payload}
}

func (m DepositCallback) event() DepositEvent {
	return DepositEvent{From: m.From, Amount: m.Amount}
}

// Invocation describes the invocation context provided by the host.
type Invocation struct {
	// Caller is the identity actually invoking the contract. It is never
	// taken from message fields.
	Caller util.Uint160
}
