package swap

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/lib/address"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/crypto"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/swap-contract/common"
	"github.com/nspcc-dev/swap-contract/contracts/swap/swapconst"
)

type (
	// AssetRef identifies a NEP-17 token contract the swap works with.
	AssetRef struct {
		// Script hash of the token contract.
		Hash interop.Hash160
		// SHA-256 of the token NEF at the moment of swap deployment.
		CodeHash interop.Hash256
	}

	// Settings is the configuration record of the contract. Only TotalRaised
	// changes after deployment.
	Settings struct {
		Admin         interop.Hash160
		Accepted      AssetRef
		Offered       AssetRef
		ExchangeRate  int
		ViewKey       string
		ForwardPolicy int
		TotalRaised   int
		// SaleEndTime is stored for informational purposes, it is not
		// enforced by any method.
		SaleEndTime int
	}

	// ConfigInfo is a public part of Settings returned by Config method.
	ConfigInfo struct {
		AcceptedToken AssetRef
		OfferedToken  AssetRef
		Admin         interop.Hash160
		ExchangeRate  int
		TotalRaised   int
	}
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()

	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		admin        interop.Hash160
		accepted     interop.Hash160
		offered      interop.Hash160
		exchangeRate int
		viewKey      string
		forward      int
		saleEndTime  int
	})

	if len(args.admin) != interop.Hash160Len {
		panic("incorrect length of admin address")
	}

	if len(args.accepted) != interop.Hash160Len || len(args.offered) != interop.Hash160Len {
		panic("incorrect length of token script hash")
	}

	if args.accepted.Equals(args.offered) {
		panic("accepted and offered tokens must differ")
	}

	if args.exchangeRate < 0 || args.exchangeRate > maxAmount() {
		panic("invalid exchange rate")
	}

	if len(args.viewKey) == 0 {
		panic("empty view key")
	}

	if args.forward != swapconst.ForwardAccrue && args.forward != swapconst.ForwardImmediate {
		panic("unknown forward policy")
	}

	if args.saleEndTime < 0 || args.saleEndTime > std.Atoi(swapconst.MaxSaleEndTime, 10) {
		panic("invalid sale end time")
	}

	s := Settings{
		Admin:         args.admin,
		Accepted:      assetRef(args.accepted),
		Offered:       assetRef(args.offered),
		ExchangeRate:  args.exchangeRate,
		ViewKey:       args.viewKey,
		ForwardPolicy: args.forward,
		TotalRaised:   0,
		SaleEndTime:   args.saleEndTime,
	}

	common.SetSerialized(ctx, swapconst.ConfigKey, s)

	// view keys are needed for balance queries, NEP-17 payments reach
	// OnNEP17Payment without any subscription
	contract.Call(s.Accepted.Hash, "registerViewKey", contract.All, s.ViewKey)
	contract.Call(s.Offered.Hash, "registerViewKey", contract.All, s.ViewKey)

	runtime.Log("swap contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by the admin. Configuration record is kept as is.
func Update(nefFile, manifest []byte, data any) {
	s := getSettings(storage.GetReadOnlyContext())

	common.CheckWitnessWithMessage(s.Admin, swapconst.ErrAuthorizationFailed+": admin witness required")

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("swap contract updated")
}

// OnNEP17Payment is a callback for NEP-17 compatible token contracts.
//
// Payments from the accepted token are settled: the contract sends back
// amount multiplied by the exchange rate of the offered token to the `from`
// account and increases total raised amount. Payments from the offered token
// replenish the reserve and change nothing else. Payments from any other
// contract are rejected.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	ctx := storage.GetContext()
	s := getSettings(ctx)

	caller := runtime.GetCallingScriptHash()
	if caller.Equals(s.Offered.Hash) {
		runtime.Log("offered token reserve replenished")
		runtime.Notify("ReserveReplenished", amount)
		return
	}

	settle(ctx, s, caller, from, amount)
}

// Deposit is a dedicated deposit callback for accepted token contracts that
// report deposits explicitly. It is settled exactly as OnNEP17Payment, so it
// can be invoked only by the accepted token contract.
func Deposit(from interop.Hash160, amount int) {
	ctx := storage.GetContext()
	settle(ctx, getSettings(ctx), runtime.GetCallingScriptHash(), from, amount)
}

// WithdrawFunding transfers the specified amount of accepted tokens from the
// contract account to the admin. It can be invoked only by the admin.
//
// The contract does not track its own reserve, so the amount is limited by
// the accepted token balance only.
func WithdrawFunding(amount int) {
	s := getSettings(storage.GetReadOnlyContext())

	common.CheckWitnessWithMessage(s.Admin, swapconst.ErrAuthorizationFailed+": admin witness required")

	if amount < 0 {
		panic(swapconst.ErrInvalidWithdrawal + ": negative amount")
	}

	common.TransferNEP17(s.Accepted.Hash, runtime.GetExecutingScriptHash(), s.Admin, amount, nil,
		swapconst.ErrTransferFailed)

	runtime.Log("funds have been withdrawn")
	runtime.Notify("Withdrawal", s.Admin, amount)
}

// Config returns token references, admin address, exchange rate and the
// total amount of accepted tokens settled so far.
func Config() ConfigInfo {
	s := getSettings(storage.GetReadOnlyContext())

	return ConfigInfo{
		AcceptedToken: s.Accepted,
		OfferedToken:  s.Offered,
		Admin:         s.Admin,
		ExchangeRate:  s.ExchangeRate,
		TotalRaised:   s.TotalRaised,
	}
}

// AcceptedTokenAvailable returns the amount of accepted tokens owned by the
// contract as reported by the accepted token contract.
func AcceptedTokenAvailable() int {
	s := getSettings(storage.GetReadOnlyContext())
	return balanceOf(s.Accepted.Hash, s.ViewKey)
}

// OfferedTokenAvailable returns the amount of offered tokens owned by the
// contract as reported by the offered token contract.
func OfferedTokenAvailable() int {
	s := getSettings(storage.GetReadOnlyContext())
	return balanceOf(s.Offered.Hash, s.ViewKey)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// settle checks that the deposit is reported by the accepted token, stores
// the new total and pays the depositor. Storage is updated before any
// outgoing call.
func settle(ctx storage.Context, s Settings, caller, from interop.Hash160, amount int) {
	if !caller.Equals(s.Accepted.Hash) {
		panic(swapconst.ErrAuthenticationFailed + ": expected caller " +
			address.FromHash160(s.Accepted.Hash) + ", got " + address.FromHash160(caller))
	}

	if len(from) != interop.Hash160Len {
		panic(swapconst.ErrInvalidDeposit + ": missing depositor")
	}

	if amount < 0 {
		panic(swapconst.ErrInvalidDeposit + ": negative amount")
	}

	limit := maxAmount()

	// the product is never computed if it can exceed the limit
	if amount > limit || (s.ExchangeRate != 0 && amount > limit/s.ExchangeRate) {
		panic(swapconst.ErrArithmeticOverflow + ": offered amount")
	}
	offered := amount * s.ExchangeRate

	if s.TotalRaised > limit-amount {
		panic(swapconst.ErrArithmeticOverflow + ": total raised")
	}
	s.TotalRaised += amount

	common.SetSerialized(ctx, swapconst.ConfigKey, s)

	self := runtime.GetExecutingScriptHash()

	common.TransferNEP17(s.Offered.Hash, self, from, offered, nil, swapconst.ErrTransferFailed)

	if s.ForwardPolicy == swapconst.ForwardImmediate {
		common.TransferNEP17(s.Accepted.Hash, self, s.Admin, amount, nil, swapconst.ErrTransferFailed)
	}

	runtime.Log("deposit has been settled")
	runtime.Notify("Settlement", from, amount, offered)
}

func balanceOf(token interop.Hash160, viewKey string) int {
	return contract.Call(token, "balanceOfWithKey", contract.ReadStates,
		runtime.GetExecutingScriptHash(), viewKey).(int)
}

func assetRef(token interop.Hash160) AssetRef {
	c := management.GetContract(token)
	if c == nil {
		panic("missing token contract " + address.FromHash160(token))
	}

	return AssetRef{
		Hash:     token,
		CodeHash: crypto.Sha256(c.NEF),
	}
}

func getSettings(ctx storage.Context) Settings {
	v := common.GetSerialized(ctx, swapconst.ConfigKey)
	if v == nil {
		panic(swapconst.ErrConfigNotFound)
	}

	return v.(Settings)
}

func maxAmount() int {
	return std.Atoi(swapconst.MaxAmount, 10)
}
