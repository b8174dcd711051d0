package settlement

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/swap-contract/contracts/swap/swapconst"
)

var (
	// ErrAuthentication is returned when a deposit is reported by anyone
	// but the accepted token ledger. Concrete errors are *AuthenticationError.
	ErrAuthentication = errors.New(swapconst.ErrAuthenticationFailed)
	// ErrAuthorization is returned when a withdrawal is requested by anyone
	// but the admin.
	ErrAuthorization = errors.New(swapconst.ErrAuthorizationFailed)
	// ErrArithmeticOverflow is returned when the offered amount or the total
	// raised amount would exceed MaxAmount.
	ErrArithmeticOverflow = errors.New(swapconst.ErrArithmeticOverflow)
	// ErrConfigNotFound is returned when the Store has no Config record.
	ErrConfigNotFound = errors.New(swapconst.ErrConfigNotFound)
	// ErrStorageCorrupted is returned when the stored Config record can't be
	// decoded.
	ErrStorageCorrupted = errors.New("storage corrupted")
	// ErrInvalidDeposit is returned for deposits without a depositor.
	ErrInvalidDeposit = errors.New(swapconst.ErrInvalidDeposit)
	// ErrInvalidParams is returned when initialization parameters are
	// inconsistent.
	ErrInvalidParams = errors.New("invalid parameters")
	// ErrAlreadyInitialized is returned by Init if the Store already has a
	// Config record.
	ErrAlreadyInitialized = errors.New("already initialized")
)

// AuthenticationError describes a deposit reported by an unexpected caller.
// Both identities are public and safe to return to the caller.
type AuthenticationError struct {
	Expected util.Uint160
	Actual   util.Uint160
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s: expected caller %s, got %s", swapconst.ErrAuthenticationFailed,
		address.Uint160ToString(e.Expected), address.Uint160ToString(e.Actual))
}

// Is makes errors.Is(err, ErrAuthentication) true for AuthenticationError.
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}
