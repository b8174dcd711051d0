package main

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/swap-contract/rpc/swap"
	"github.com/nspcc-dev/swap-contract/settlement"
)

// wrapper over rpcNeo providing read-only access to the swap contract state.
type remoteBlockchain struct {
	rpc *rpcclient.Client
	inv *invoker.Invoker

	currentBlock uint32
}

// swapState is a snapshot of the swap contract state.
type swapState struct {
	version string
	config  settlement.ConfigView

	acceptedAvailable uint256.Int
	offeredAvailable  uint256.Int
}

// newRemoteBlockChain dials Neo RPC server and returns remoteBlockchain based
// on the opened connection. Connection and all requests are done within 15
// timeout.
func newRemoteBlockChain(blockChainRPCEndpoint string) (*remoteBlockchain, error) {
	c, err := rpcclient.New(context.Background(), blockChainRPCEndpoint, rpcclient.Options{
		DialTimeout:    15 * time.Second,
		RequestTimeout: 15 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	err = c.Init()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("init RPC client: %w", err)
	}

	nLatestBlock, err := c.GetBlockCount()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("get number of the latest block: %w", err)
	}

	return &remoteBlockchain{
		rpc:          c,
		inv:          invoker.New(c, nil),
		currentBlock: nLatestBlock,
	}, nil
}

func (x *remoteBlockchain) close() {
	x.rpc.Close()
}

// swapState reads configuration and token holdings of the swap contract
// deployed at addr.
func (x *remoteBlockchain) swapState(addr util.Uint160) (res swapState, err error) {
	_, err = x.rpc.GetContractStateByHash(addr)
	if err != nil {
		return res, fmt.Errorf("get state of the swap contract '%s': %w", addr.StringLE(), err)
	}

	r := swap.NewReader(x.inv, addr)

	v, err := r.Version()
	if err != nil {
		return res, fmt.Errorf("read version: %w", err)
	}
	res.version = fmt.Sprintf("%d.%d.%d", v.Int64()/1_000_000, v.Int64()/1_000%1_000, v.Int64()%1_000)

	res.config, err = r.ConfigView()
	if err != nil {
		return res, fmt.Errorf("read configuration: %w", err)
	}

	for _, a := range []struct {
		name string
		get  func() (*big.Int, error)
		dst  *uint256.Int
	}{
		{"accepted", r.AcceptedTokenAvailable, &res.acceptedAvailable},
		{"offered", r.OfferedTokenAvailable, &res.offeredAvailable},
	} {
		b, err := a.get()
		if err != nil {
			return res, fmt.Errorf("read available %s tokens: %w", a.name, err)
		}

		*a.dst, err = settlement.AmountFromBig(b)
		if err != nil {
			return res, fmt.Errorf("decode available %s tokens: %w", a.name, err)
		}
	}

	return res, nil
}
