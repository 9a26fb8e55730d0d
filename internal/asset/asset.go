// Package asset provides value objects for ERC-20 assets and integer
// amounts in the asset's smallest denomination. No floating point ever
// enters the transaction path; decimal conversion exists only for
// display.
package asset

import (
	"github.com/ethereum/go-ethereum/common"
)

// Asset describes an ERC-20 token.
type Asset struct {
	address  common.Address
	symbol   string
	decimals int
}

// New creates an Asset.
func New(address common.Address, symbol string, decimals int) *Asset {
	return &Asset{
		address:  address,
		symbol:   symbol,
		decimals: decimals,
	}
}

// Address returns the token contract address.
func (a *Asset) Address() common.Address {
	return a.address
}

// Symbol returns the token symbol.
func (a *Asset) Symbol() string {
	return a.symbol
}

// Decimals returns the number of decimals.
func (a *Asset) Decimals() int {
	return a.decimals
}

// Equals reports whether two assets refer to the same token contract.
func (a *Asset) Equals(b *Asset) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.address == b.address
}
