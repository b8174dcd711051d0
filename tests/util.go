package tests

import (
	"path"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/swap-contract/settlement"
	"github.com/stretchr/testify/require"
)

const viewTokenPath = "../internal/testcontracts/viewtoken"

func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

// deployViewToken deploys view token contract owned by the committee. The
// same source can be deployed several times under different names.
func deployViewToken(t *testing.T, e *neotest.Executor, name, symbol string) util.Uint160 {
	c := neotest.CompileFile(t, e.CommitteeHash, viewTokenPath, path.Join(viewTokenPath, "config.yml"))

	m := *c.Manifest
	m.Name = name

	named := &neotest.Contract{
		Hash:     state.CreateContractHash(e.CommitteeHash, c.NEF.Checksum, name),
		NEF:      c.NEF,
		Manifest: &m,
	}

	e.DeployContract(t, named, []any{e.CommitteeHash, symbol})
	return named.Hash
}

// assetRef returns reference to the deployed token with the same code hash
// the swap contract captures.
func assetRef(t *testing.T, e *neotest.Executor, token util.Uint160) settlement.AssetRef {
	cs := e.Chain.GetContractState(token)
	require.NotNil(t, cs)

	raw, err := cs.NEF.Bytes()
	require.NoError(t, err)

	return settlement.AssetRef{Hash: token, CodeHash: hash.Sha256(raw)}
}

// applicationLog wraps transaction execution result for event parsers of RPC
// bindings.
func applicationLog(t *testing.T, e *neotest.Executor, h util.Uint256) *result.ApplicationLog {
	aer := e.GetTxExecResult(t, h)
	return &result.ApplicationLog{
		Container:  h,
		Executions: []state.Execution{aer.Execution},
	}
}
