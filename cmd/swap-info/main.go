package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/nspcc-dev/neo-go/pkg/util"
)

func main() {
	neoRPCEndpoint := flag.String("rpc", "", "Network address of the Neo RPC server")
	contract := flag.String("contract", "", "Address of the swap contract (LE hex)")

	flag.Parse()

	switch {
	case *neoRPCEndpoint == "":
		log.Fatal("missing Neo RPC endpoint")
	case *contract == "":
		log.Fatal("missing swap contract address")
	}

	addr, err := util.Uint160DecodeStringLE(*contract)
	if err != nil {
		log.Fatal(fmt.Errorf("decode swap contract address: %w", err))
	}

	err = _info(*neoRPCEndpoint, addr)
	if err != nil {
		log.Fatal(err)
	}
}

func _info(neoRPCEndpoint string, addr util.Uint160) error {
	b, err := newRemoteBlockChain(neoRPCEndpoint)
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}

	defer b.close()

	s, err := b.swapState(addr)
	if err != nil {
		return err
	}

	fmt.Printf("block:         %d\n", b.currentBlock)
	fmt.Printf("version:       %s\n", s.version)
	fmt.Printf("admin:         %s\n", s.config.Admin.StringLE())
	fmt.Printf("accepted:      %s (code %s)\n", s.config.Accepted.Hash.StringLE(), s.config.Accepted.CodeHash.StringLE())
	fmt.Printf("offered:       %s (code %s)\n", s.config.Offered.Hash.StringLE(), s.config.Offered.CodeHash.StringLE())
	fmt.Printf("exchange rate: %s\n", s.config.ExchangeRate.ToBig())
	fmt.Printf("total raised:  %s\n", s.config.TotalRaised.ToBig())
	fmt.Printf("accepted held: %s\n", s.acceptedAvailable.ToBig())
	fmt.Printf("offered held:  %s\n", s.offeredAvailable.ToBig())

	return nil
}
