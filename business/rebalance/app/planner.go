package app

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/0xnicolas/safe-yield-bot/business/rebalance/domain"
	"github.com/0xnicolas/safe-yield-bot/internal/apperror"
	"github.com/0xnicolas/safe-yield-bot/internal/asset"
)

// PlannerConfig carries the on-chain addresses a plan needs.
type PlannerConfig struct {
	AavePool common.Address
	Comet    common.Address
}

// Planner turns a positive decision into the ordered call list that
// migrates the full balance: withdraw from the current venue, approve
// the destination, supply to the destination.
type Planner struct {
	cfg PlannerConfig
}

// NewPlanner creates a Planner.
func NewPlanner(cfg PlannerConfig) *Planner {
	return &Planner{cfg: cfg}
}

// BuildPlan builds the migration plan for a decision. A decision that
// does not call for a move, or one with a zero amount, yields an empty
// plan; empty plans are a success, not an error.
func (p *Planner) BuildPlan(decision domain.YieldDecision, wallet common.Address, ast *asset.Asset) (domain.RebalancePlan, error) {
	plan := domain.RebalancePlan{
		From:   decision.Current,
		To:     decision.Better,
		Amount: decision.Amount,
	}

	if !decision.ShouldMove || decision.Amount.IsZero() {
		return plan, nil
	}

	amount := decision.Amount.Raw()
	assetAddr := ast.Address()

	withdraw, err := p.withdrawCall(decision.Current, assetAddr, amount, wallet)
	if err != nil {
		return domain.RebalancePlan{}, apperror.Wrap(err, apperror.CodePlanBuildFailed, "withdraw call")
	}
	approve, err := p.approveCall(decision.Better, assetAddr, amount)
	if err != nil {
		return domain.RebalancePlan{}, apperror.Wrap(err, apperror.CodePlanBuildFailed, "approve call")
	}
	supply, err := p.supplyCall(decision.Better, assetAddr, amount, wallet)
	if err != nil {
		return domain.RebalancePlan{}, apperror.Wrap(err, apperror.CodePlanBuildFailed, "supply call")
	}

	plan.Calls = []domain.Call{withdraw, approve, supply}
	return plan, nil
}

func (p *Planner) withdrawCall(venue domain.Venue, assetAddr common.Address, amount *big.Int, wallet common.Address) (domain.Call, error) {
	switch venue {
	case domain.VenueAave:
		payload, err := domain.EncodeAaveWithdraw(assetAddr, amount, wallet)
		if err != nil {
			return domain.Call{}, err
		}
		return domain.NewCall(p.cfg.AavePool, payload), nil
	case domain.VenueCompound:
		payload, err := domain.EncodeCompoundWithdraw(assetAddr, amount)
		if err != nil {
			return domain.Call{}, err
		}
		return domain.NewCall(p.cfg.Comet, payload), nil
	default:
		return domain.Call{}, apperror.New(apperror.CodeUnknownProtocol,
			apperror.WithMessage("no withdraw encoder for venue "+venue.String()),
		)
	}
}

// approveCall approves the destination contract to pull the asset from
// the wallet. The spender is the destination pool or comet, never the
// batch executor.
func (p *Planner) approveCall(dest domain.Venue, assetAddr common.Address, amount *big.Int) (domain.Call, error) {
	spender, err := p.venueAddress(dest)
	if err != nil {
		return domain.Call{}, err
	}
	payload, err := domain.EncodeApprove(spender, amount)
	if err != nil {
		return domain.Call{}, err
	}
	return domain.NewCall(assetAddr, payload), nil
}

func (p *Planner) supplyCall(dest domain.Venue, assetAddr common.Address, amount *big.Int, wallet common.Address) (domain.Call, error) {
	switch dest {
	case domain.VenueAave:
		payload, err := domain.EncodeAaveSupply(assetAddr, amount, wallet)
		if err != nil {
			return domain.Call{}, err
		}
		return domain.NewCall(p.cfg.AavePool, payload), nil
	case domain.VenueCompound:
		payload, err := domain.EncodeCompoundSupply(assetAddr, amount)
		if err != nil {
			return domain.Call{}, err
		}
		return domain.NewCall(p.cfg.Comet, payload), nil
	default:
		return domain.Call{}, apperror.New(apperror.CodeUnknownProtocol,
			apperror.WithMessage("no supply encoder for venue "+dest.String()),
		)
	}
}

func (p *Planner) venueAddress(v domain.Venue) (common.Address, error) {
	switch v {
	case domain.VenueAave:
		return p.cfg.AavePool, nil
	case domain.VenueCompound:
		return p.cfg.Comet, nil
	default:
		return common.Address{}, apperror.New(apperror.CodeUnknownProtocol,
			apperror.WithMessage("no contract address for venue "+v.String()),
		)
	}
}
