package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/0xnicolas/safe-yield-bot/internal/asset"
)

// Call is a single contract invocation inside a plan. Value is in wei
// and is always zero for ERC20 lending flows; it is kept explicit
// because the batch encoding carries it on the wire.
type Call struct {
	Target  common.Address
	Value   *big.Int
	Payload []byte
}

// NewCall builds a zero-value call.
func NewCall(target common.Address, payload []byte) Call {
	return Call{Target: target, Value: new(big.Int), Payload: payload}
}

// RebalancePlan is an ordered list of calls moving a position from one
// venue to the other. An empty plan means nothing to do.
type RebalancePlan struct {
	From   Venue
	To     Venue
	Amount asset.Amount
	Calls  []Call
}

// Empty reports whether the plan carries no calls.
func (p RebalancePlan) Empty() bool {
	return len(p.Calls) == 0
}
