// Package swap contains RPC wrappers for Swap contract.
package swap

import (
	"errors"
	"fmt"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"math/big"
)

// SwapAssetRef is a contract-specific swap.AssetRef type used by its methods.
type SwapAssetRef struct {
	Hash     util.Uint160
	CodeHash util.Uint256
}

// SwapConfigInfo is a contract-specific swap.ConfigInfo type used by its methods.
type SwapConfigInfo struct {
	AcceptedToken *SwapAssetRef
	OfferedToken  *SwapAssetRef
	Admin         util.Uint160
	ExchangeRate  *big.Int
	TotalRaised   *big.Int
}

// SettlementEvent represents "Settlement" event emitted by the contract.
type SettlementEvent struct {
	Depositor util.Uint160
	Amount    *big.Int
	Offered   *big.Int
}

// WithdrawalEvent represents "Withdrawal" event emitted by the contract.
type WithdrawalEvent struct {
	Admin  util.Uint160
	Amount *big.Int
}

// ReserveReplenishedEvent represents "ReserveReplenished" event emitted by the contract.
type ReserveReplenishedEvent struct {
	Amount *big.Int
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeRun(script []byte) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	MakeUnsignedRun(script []byte, attrs []transaction.Attribute) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
	SendRun(script []byte) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash    util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	actor Actor
	hash  util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, actor, hash}
}

// AcceptedTokenAvailable invokes `acceptedTokenAvailable` method of contract.
func (c *ContractReader) AcceptedTokenAvailable() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "acceptedTokenAvailable"))
}

// Config invokes `config` method of contract.
func (c *ContractReader) Config() (*SwapConfigInfo, error) {
	return itemToSwapConfigInfo(unwrap.Item(c.invoker.Call(c.hash, "config")))
}

// OfferedTokenAvailable invokes `offeredTokenAvailable` method of contract.
func (c *ContractReader) OfferedTokenAvailable() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "offeredTokenAvailable"))
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// Deposit creates a transaction invoking `deposit` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Deposit(from util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "deposit", from, amount)
}

// DepositTransaction creates a transaction invoking `deposit` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) DepositTransaction(from util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "deposit", from, amount)
}

// DepositUnsigned creates a transaction invoking `deposit` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) DepositUnsigned(from util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "deposit", nil, from, amount)
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(nefFile []byte, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "update", nefFile, manifest, data)
}

// UpdateTransaction creates a transaction invoking `update` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) UpdateTransaction(nefFile []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "update", nefFile, manifest, data)
}

// UpdateUnsigned creates a transaction invoking `update` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) UpdateUnsigned(nefFile []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "update", nil, nefFile, manifest, data)
}

// WithdrawFunding creates a transaction invoking `withdrawFunding` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) WithdrawFunding(amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "withdrawFunding", amount)
}

// WithdrawFundingTransaction creates a transaction invoking `withdrawFunding` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) WithdrawFundingTransaction(amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "withdrawFunding", amount)
}

// WithdrawFundingUnsigned creates a transaction invoking `withdrawFunding` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) WithdrawFundingUnsigned(amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "withdrawFunding", nil, amount)
}

// itemToSwapAssetRef converts stack item into *SwapAssetRef.
func itemToSwapAssetRef(item stackitem.Item, err error) (*SwapAssetRef, error) {
	if err != nil {
		return nil, err
	}
	var res = new(SwapAssetRef)
	err = res.FromStackItem(item)
	return res, err
}

// FromStackItem retrieves fields of SwapAssetRef from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *SwapAssetRef) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	res.Hash, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field Hash: %w", err)
	}

	index++
	res.CodeHash, err = func(item stackitem.Item) (util.Uint256, error) {
		b, err := item.TryBytes()
		if err != nil {
			return util.Uint256{}, err
		}
		u, err := util.Uint256DecodeBytesBE(b)
		if err != nil {
			return util.Uint256{}, err
		}
		return u, nil
	}(arr[index])
	if err != nil {
		return fmt.Errorf("field CodeHash: %w", err)
	}

	return nil
}

// itemToSwapConfigInfo converts stack item into *SwapConfigInfo.
func itemToSwapConfigInfo(item stackitem.Item, err error) (*SwapConfigInfo, error) {
	if err != nil {
		return nil, err
	}
	var res = new(SwapConfigInfo)
	err = res.FromStackItem(item)
	return res, err
}

// FromStackItem retrieves fields of SwapConfigInfo from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *SwapConfigInfo) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 5 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	res.AcceptedToken, err = itemToSwapAssetRef(arr[index], nil)
	if err != nil {
		return fmt.Errorf("field AcceptedToken: %w", err)
	}

	index++
	res.OfferedToken, err = itemToSwapAssetRef(arr[index], nil)
	if err != nil {
		return fmt.Errorf("field OfferedToken: %w", err)
	}

	index++
	res.Admin, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field Admin: %w", err)
	}

	index++
	res.ExchangeRate, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field ExchangeRate: %w", err)
	}

	index++
	res.TotalRaised, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field TotalRaised: %w", err)
	}

	return nil
}

// SettlementEventsFromApplicationLog retrieves a set of all emitted events
// with "Settlement" name from the provided [result.ApplicationLog].
func SettlementEventsFromApplicationLog(log *result.ApplicationLog) ([]*SettlementEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*SettlementEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "Settlement" {
				continue
			}
			event := new(SettlementEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize SettlementEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to SettlementEvent or
// returns an error if it's not possible to do to so.
func (e *SettlementEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 3 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	e.Depositor, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field Depositor: %w", err)
	}

	index++
	e.Amount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	index++
	e.Offered, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Offered: %w", err)
	}

	return nil
}

// WithdrawalEventsFromApplicationLog retrieves a set of all emitted events
// with "Withdrawal" name from the provided [result.ApplicationLog].
func WithdrawalEventsFromApplicationLog(log *result.ApplicationLog) ([]*WithdrawalEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*WithdrawalEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "Withdrawal" {
				continue
			}
			event := new(WithdrawalEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize WithdrawalEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to WithdrawalEvent or
// returns an error if it's not possible to do to so.
func (e *WithdrawalEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	e.Admin, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field Admin: %w", err)
	}

	index++
	e.Amount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}

// ReserveReplenishedEventsFromApplicationLog retrieves a set of all emitted events
// with "ReserveReplenished" name from the provided [result.ApplicationLog].
func ReserveReplenishedEventsFromApplicationLog(log *result.ApplicationLog) ([]*ReserveReplenishedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*ReserveReplenishedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "ReserveReplenished" {
				continue
			}
			event := new(ReserveReplenishedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize ReserveReplenishedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to ReserveReplenishedEvent or
// returns an error if it's not possible to do to so.
func (e *ReserveReplenishedEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 1 {
		return errors.New("wrong number of structure elements")
	}

	var err error
	e.Amount, err = arr[0].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}

func itemToUint160(item stackitem.Item) (util.Uint160, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	u, err := util.Uint160DecodeBytesBE(b)
	if err != nil {
		return util.Uint160{}, err
	}
	return u, nil
}
