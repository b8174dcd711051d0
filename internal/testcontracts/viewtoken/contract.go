package viewtoken

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/swap-contract/common"
)

const (
	decimals = 8

	ownerKey  = 'o'
	symbolKey = 's'
	supplyKey = 't'

	accPrefix     = 'a'
	viewKeyPrefix = 'v'
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		return
	}

	args := data.(struct {
		owner  interop.Hash160
		symbol string
	})

	ctx := storage.GetContext()
	storage.Put(ctx, ownerKey, args.owner)
	storage.Put(ctx, symbolKey, args.symbol)
}

func Symbol() string {
	return storage.Get(storage.GetReadOnlyContext(), symbolKey).(string)
}

func Decimals() int {
	return decimals
}

func TotalSupply() int {
	return getInt(storage.GetReadOnlyContext(), []byte{supplyKey})
}

func BalanceOf(account interop.Hash160) int {
	return getInt(storage.GetReadOnlyContext(), append([]byte{accPrefix}, account...))
}

// BalanceOfWithKey is BalanceOf guarded by the view key registered by holder.
func BalanceOfWithKey(holder interop.Hash160, key string) int {
	ctx := storage.GetReadOnlyContext()

	stored := storage.Get(ctx, append([]byte{viewKeyPrefix}, holder...))
	if stored == nil || stored.(string) != key {
		panic("invalid view key")
	}

	return getInt(ctx, append([]byte{accPrefix}, holder...))
}

// RegisterViewKey sets the view key of the calling contract.
func RegisterViewKey(key string) {
	if len(key) == 0 {
		panic("empty view key")
	}

	caller := runtime.GetCallingScriptHash()
	storage.Put(storage.GetContext(), append([]byte{viewKeyPrefix}, caller...), key)
}

func Transfer(from, to interop.Hash160, amount int, data any) bool {
	if len(from) != interop.Hash160Len || len(to) != interop.Hash160Len {
		panic("invalid address")
	}

	if amount < 0 {
		panic("negative amount")
	}

	if !move(from, to, amount) {
		return false
	}

	postTransfer(from, to, amount, data)

	return true
}

// Send moves tokens like Transfer but reports them to the recipient contract
// through its `deposit` method instead of `onNEP17Payment`.
func Send(from, to interop.Hash160, amount int) bool {
	if len(from) != interop.Hash160Len || len(to) != interop.Hash160Len {
		panic("invalid address")
	}

	if amount < 0 {
		panic("negative amount")
	}

	if !move(from, to, amount) {
		return false
	}

	contract.Call(to, "deposit", contract.All, from, amount)

	return true
}

// Mint issues new tokens to the specified account. It can be invoked only by
// the token owner.
func Mint(to interop.Hash160, amount int) {
	ctx := storage.GetContext()

	common.CheckOwnerWitness(storage.Get(ctx, ownerKey).(interop.Hash160))

	if amount <= 0 {
		panic("non positive amount")
	}

	toKey := append([]byte{accPrefix}, to...)
	storage.Put(ctx, toKey, getInt(ctx, toKey)+amount)
	storage.Put(ctx, []byte{supplyKey}, getInt(ctx, []byte{supplyKey})+amount)

	var from interop.Hash160

	runtime.Notify("Transfer", from, to, amount)
	postTransfer(from, to, amount, nil)
}

func move(from, to interop.Hash160, amount int) bool {
	if !runtime.CheckWitness(from) {
		return false
	}

	ctx := storage.GetContext()
	fromKey := append([]byte{accPrefix}, from...)

	balance := getInt(ctx, fromKey)
	if balance < amount {
		return false
	}

	if !from.Equals(to) && amount != 0 {
		storage.Put(ctx, fromKey, balance-amount)

		toKey := append([]byte{accPrefix}, to...)
		storage.Put(ctx, toKey, getInt(ctx, toKey)+amount)
	}

	runtime.Notify("Transfer", from, to, amount)

	return true
}

func postTransfer(from, to interop.Hash160, amount int, data any) {
	if management.GetContract(to) != nil {
		contract.Call(to, "onNEP17Payment", contract.All, from, amount, data)
	}
}

func getInt(ctx storage.Context, key []byte) int {
	v := storage.Get(ctx, key)
	if v == nil {
		return 0
	}

	return v.(int)
}
