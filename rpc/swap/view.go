package swap

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/swap-contract/settlement"
)

// ConfigView reads contract configuration and converts it into the form used
// by the settlement engine. It fails if the contract returns amounts the
// engine can't represent.
func (c *ContractReader) ConfigView() (settlement.ConfigView, error) {
	info, err := c.Config()
	if err != nil {
		return settlement.ConfigView{}, err
	}

	return info.View()
}

// View converts contract configuration into settlement.ConfigView.
func (i *SwapConfigInfo) View() (settlement.ConfigView, error) {
	var (
		v   settlement.ConfigView
		err error
	)

	if i.AcceptedToken == nil || i.OfferedToken == nil {
		return v, errors.New("missing token reference")
	}

	v.Accepted = settlement.AssetRef{Hash: i.AcceptedToken.Hash, CodeHash: i.AcceptedToken.CodeHash}
	v.Offered = settlement.AssetRef{Hash: i.OfferedToken.Hash, CodeHash: i.OfferedToken.CodeHash}
	v.Admin = i.Admin

	if v.ExchangeRate, err = settlement.AmountFromBig(i.ExchangeRate); err != nil {
		return v, fmt.Errorf("exchange rate: %w", err)
	}
	if v.TotalRaised, err = settlement.AmountFromBig(i.TotalRaised); err != nil {
		return v, fmt.Errorf("total raised: %w", err)
	}

	return v, nil
}
