package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
)

// ErrOwnerWitnessFailed appears when the method must be called
// by an owner of some assets but was not.
const ErrOwnerWitnessFailed = "owner witness check failed"

// CheckOwnerWitness checks witness of the passed owner.
// It panics with ErrOwnerWitnessFailed message on fail.
func CheckOwnerWitness(owner interop.Hash160) {
	checkWitnessWithPanic(owner, ErrOwnerWitnessFailed)
}

// CheckWitnessWithMessage checks witness of the passed caller.
// It panics with the given message on fail.
func CheckWitnessWithMessage(caller interop.Hash160, msg string) {
	checkWitnessWithPanic(caller, msg)
}

func checkWitnessWithPanic(caller interop.Hash160, panicMsg string) {
	if !runtime.CheckWitness(caller) {
		panic(panicMsg)
	}
}
