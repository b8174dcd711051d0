package settlement

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Config is the singleton record of the contract. Everything except
// TotalRaised is written once by Init.
type Config struct {
	Admin          util.Uint160
	Accepted       AssetRef
	Offered        AssetRef
	ExchangeRate   uint256.Int
	ViewCredential string
	Forward        ForwardPolicy
	TotalRaised    uint256.Int
	// SaleEndTime is kept for compatibility with the contract record, no
	// operation takes it into account.
	SaleEndTime uint64
}

// View returns the public part of the Config.
func (c Config) View() ConfigView {
	return ConfigView{
		Accepted:     c.Accepted,
		Offered:      c.Offered,
		Admin:        c.Admin,
		ExchangeRate: c.ExchangeRate,
		TotalRaised:  c.TotalRaised,
	}
}

// ConfigView is a Config without the view credential, the only form of
// Config ever returned to callers.
type ConfigView struct {
	Accepted     AssetRef
	Offered      AssetRef
	Admin        util.Uint160
	ExchangeRate uint256.Int
	TotalRaised  uint256.Int
}

// Params groups initialization parameters.
type Params struct {
	Admin    util.Uint160
	Accepted AssetRef
	Offered  AssetRef
	// Multiplier converting accepted amounts to offered amounts, may be 1
	// or even 0.
	ExchangeRate   uint256.Int
	ViewCredential string
	Forward        ForwardPolicy
	SaleEndTime    uint64
}

// Validate checks parameter consistency.
func (p Params) Validate() error {
	var zero util.Uint160

	switch {
	case p.Admin.Equals(zero):
		return fmt.Errorf("%w: missing admin", ErrInvalidParams)
	case p.Accepted.Hash.Equals(zero):
		return fmt.Errorf("%w: missing accepted token", ErrInvalidParams)
	case p.Offered.Hash.Equals(zero):
		return fmt.Errorf("%w: missing offered token", ErrInvalidParams)
	case p.Accepted.Hash.Equals(p.Offered.Hash):
		return fmt.Errorf("%w: accepted and offered tokens must differ", ErrInvalidParams)
	case p.ExchangeRate.Gt(&maxAmount):
		return fmt.Errorf("%w: exchange rate %s exceeds max amount", ErrInvalidParams, amountString(&p.ExchangeRate))
	case p.ViewCredential == "":
		return fmt.Errorf("%w: empty view credential", ErrInvalidParams)
	case !p.Forward.valid():
		return fmt.Errorf("%w: forward policy %s", ErrInvalidParams, p.Forward)
	}

	return nil
}

func (p Params) config() Config {
	return Config{
		Admin:          p.Admin,
		Accepted:       p.Accepted,
		Offered:        p.Offered,
		ExchangeRate:   p.ExchangeRate,
		ViewCredential: p.ViewCredential,
		Forward:        p.Forward,
		SaleEndTime:    p.SaleEndTime,
	}
}
