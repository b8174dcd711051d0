// Package swapconst contains constants shared between the swap contract and
// its off-chain counterparts.
package swapconst

const (
	// ConfigKey is a storage key of the contract configuration record.
	ConfigKey = "config"

	// ForwardAccrue keeps accepted tokens on the contract account until the
	// admin withdraws them.
	ForwardAccrue = 0
	// ForwardImmediate sends accepted tokens to the admin in the same
	// invocation that settles the deposit.
	ForwardImmediate = 1

	// MaxAmount is a decimal representation of the largest token amount the
	// contract operates with (2^128-1).
	MaxAmount = "340282366920938463463374607431768211455"

	// MaxSaleEndTime is a decimal representation of the largest sale end
	// timestamp the configuration record accepts (2^64-1).
	MaxSaleEndTime = "18446744073709551615"
)

// Exception messages. Every failure aborts the invocation as a whole.
const (
	// ErrAuthenticationFailed is thrown when a deposit is reported by any
	// contract but the accepted token.
	ErrAuthenticationFailed = "authentication failed"
	// ErrAuthorizationFailed is thrown when an admin method is invoked
	// without the admin witness.
	ErrAuthorizationFailed = "authorization failed"
	// ErrArithmeticOverflow is thrown when the offered amount or the total
	// raised amount exceeds MaxAmount.
	ErrArithmeticOverflow = "arithmetic overflow"
	// ErrConfigNotFound is thrown when the contract storage has no
	// configuration record.
	ErrConfigNotFound = "config not found"
	// ErrInvalidDeposit is thrown when a deposit has no depositor or a
	// negative amount.
	ErrInvalidDeposit = "invalid deposit"
	// ErrInvalidWithdrawal is thrown for negative withdrawal amounts.
	ErrInvalidWithdrawal = "invalid withdrawal"
	// ErrTransferFailed is thrown when a token ledger declines a transfer.
	ErrTransferFailed = "token transfer failed"
)
