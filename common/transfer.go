package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
)

// TransferNEP17 calls `transfer` method of the NEP-17 token contract and
// panics with the given message if the token declines the transfer.
func TransferNEP17(token, from, to interop.Hash160, amount int, data any, failMsg string) {
	ok := contract.Call(token, "transfer", contract.All, from, to, amount, data).(bool)
	if !ok {
		panic(failMsg)
	}
}
