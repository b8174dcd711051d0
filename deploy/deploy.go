package deploy

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/nspcc-dev/swap-contract/rpc/swap"
	"github.com/nspcc-dev/swap-contract/settlement"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for Swap contract deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions to the
	// blockchain.
	actor.RPCActor

	ContractStateGetter
}

// ContractStateGetter provides network state of smart contracts.
type ContractStateGetter interface {
	// GetContractStateByHash returns network state of the smart contract by its
	// address. It returns error with 'Unknown contract' substring if the
	// contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// Prm groups all parameters of the Swap contract deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance to deploy the contract to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	// The contract address depends on it.
	LocalAccount *wallet.Account

	NEF      nef.File
	Manifest manifest.Manifest

	// Swap contract parameters. Token code hashes are ignored: the contract
	// captures them itself. Empty view credential is replaced with a random
	// one, see NewViewKey.
	Swap settlement.Params
}

// ViewKeySize is the number of random bytes in the keys generated by
// NewViewKey.
const ViewKeySize = 32

// Deploy deploys Swap contract from the local account and returns its
// address. If the contract is already deployed, Deploy only checks that the
// on-chain configuration matches Prm.Swap. Resulting configuration is always
// read back from the chain and compared with the requested one.
func Deploy(ctx context.Context, prm Prm) (util.Uint160, error) {
	var addr util.Uint160

	params, err := prepare(prm.Blockchain, prm.Swap)
	if err != nil {
		return addr, err
	}

	addr = state.CreateContractHash(prm.LocalAccount.ScriptHash(), prm.NEF.Checksum, prm.Manifest.Name)

	l := prm.Logger.With(zap.Stringer("address", addr))

	if err := ctx.Err(); err != nil {
		return addr, err
	}

	_, err = prm.Blockchain.GetContractStateByHash(addr)
	if err == nil {
		l.Info("swap contract is already deployed, checking configuration...")
	} else {
		if !isErrContractNotFound(err) {
			return addr, fmt.Errorf("get state of swap contract %s: %w", addr.StringLE(), err)
		}

		l.Info("deploying swap contract...",
			zap.Stringer("accepted", params.Accepted),
			zap.Stringer("offered", params.Offered),
			zap.Stringer("forward", params.Forward))

		act, err := actor.NewSimple(prm.Blockchain, prm.LocalAccount)
		if err != nil {
			return addr, fmt.Errorf("init transaction sender from local account: %w", err)
		}

		res, err := act.Wait(management.New(act).Deploy(&prm.NEF, &prm.Manifest, DeployData(params)))
		if err != nil {
			return addr, fmt.Errorf("send deployment transaction: %w", err)
		}
		if res.VMState != vmstate.Halt {
			return addr, fmt.Errorf("deployment transaction %s failed: %s", res.Container.StringLE(), res.FaultException)
		}

		l.Info("swap contract successfully deployed", zap.Stringer("tx", res.Container))
	}

	if err := ctx.Err(); err != nil {
		return addr, err
	}

	err = verify(swap.NewReader(invoker.New(prm.Blockchain, nil), addr), params)
	if err != nil {
		return addr, fmt.Errorf("verify swap contract %s: %w", addr.StringLE(), err)
	}

	l.Info("swap contract configuration verified")

	return addr, nil
}

// DeployData returns deployment data of the Swap contract for the given
// parameters.
func DeployData(p settlement.Params) []any {
	return []any{
		p.Admin,
		p.Accepted.Hash,
		p.Offered.Hash,
		p.ExchangeRate.ToBig(),
		p.ViewCredential,
		big.NewInt(int64(p.Forward)),
		new(big.Int).SetUint64(p.SaleEndTime),
	}
}

// NewViewKey generates random view key for token balance queries.
func NewViewKey() (string, error) {
	b := make([]byte, ViewKeySize)

	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return base58.Encode(b), nil
}

// prepare completes p with the view key and token code hashes and checks the
// result.
func prepare(b ContractStateGetter, p settlement.Params) (settlement.Params, error) {
	var err error

	if p.ViewCredential == "" {
		p.ViewCredential, err = NewViewKey()
		if err != nil {
			return p, fmt.Errorf("generate view key: %w", err)
		}
	}

	if err = p.Validate(); err != nil {
		return p, err
	}

	for _, a := range []*settlement.AssetRef{&p.Accepted, &p.Offered} {
		*a, err = assetRef(b, a.Hash)
		if err != nil {
			return p, err
		}
	}

	return p, nil
}

// assetRef reads token contract state and computes the code hash the same
// way the contract does.
func assetRef(b ContractStateGetter, token util.Uint160) (settlement.AssetRef, error) {
	c, err := b.GetContractStateByHash(token)
	if err != nil {
		return settlement.AssetRef{}, fmt.Errorf("get token contract %s state: %w", token.StringLE(), err)
	}

	raw, err := c.NEF.Bytes()
	if err != nil {
		return settlement.AssetRef{}, fmt.Errorf("encode token contract %s NEF: %w", token.StringLE(), err)
	}

	return settlement.AssetRef{Hash: token, CodeHash: hash.Sha256(raw)}, nil
}

func isErrContractNotFound(err error) bool {
	return strings.Contains(err.Error(), "Unknown contract")
}

// configReader is a part of swap.ContractReader used by verify.
type configReader interface {
	ConfigView() (settlement.ConfigView, error)
}

// verify compares configuration of the deployed contract with p. Total raised
// amount is not checked.
func verify(r configReader, p settlement.Params) error {
	v, err := r.ConfigView()
	if err != nil {
		return fmt.Errorf("read configuration: %w", err)
	}

	var errs []error

	if !v.Admin.Equals(p.Admin) {
		errs = append(errs, fmt.Errorf("admin %s instead of %s", v.Admin.StringLE(), p.Admin.StringLE()))
	}
	if v.Accepted != p.Accepted {
		errs = append(errs, fmt.Errorf("accepted token %s (%s) instead of %s (%s)",
			v.Accepted, v.Accepted.CodeHash.StringLE(), p.Accepted, p.Accepted.CodeHash.StringLE()))
	}
	if v.Offered != p.Offered {
		errs = append(errs, fmt.Errorf("offered token %s (%s) instead of %s (%s)",
			v.Offered, v.Offered.CodeHash.StringLE(), p.Offered, p.Offered.CodeHash.StringLE()))
	}
	if !v.ExchangeRate.Eq(&p.ExchangeRate) {
		errs = append(errs, fmt.Errorf("exchange rate %s instead of %s", v.ExchangeRate.ToBig(), p.ExchangeRate.ToBig()))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration mismatch: %w", errors.Join(errs...))
	}

	return nil
}
