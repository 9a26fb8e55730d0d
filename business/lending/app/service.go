package app

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/0xnicolas/safe-yield-bot/business/lending/domain"
	"github.com/0xnicolas/safe-yield-bot/internal/apperror"
	"github.com/0xnicolas/safe-yield-bot/internal/asset"
	"github.com/0xnicolas/safe-yield-bot/internal/logger"
)

// LendingService reads both protocols and produces the per-cycle
// snapshot the decision engine consumes.
type LendingService struct {
	ast *asset.Asset

	aaveRates     RateProvider
	compoundRates RateProvider

	aavePositions     PositionReader
	compoundPositions PositionReader

	balances BalanceReader
	logger   logger.LoggerInterface
}

// NewLendingService creates a LendingService.
func NewLendingService(
	ast *asset.Asset,
	aaveRates, compoundRates RateProvider,
	aavePositions, compoundPositions PositionReader,
	balances BalanceReader,
	log logger.LoggerInterface,
) *LendingService {
	return &LendingService{
		ast:               ast,
		aaveRates:         aaveRates,
		compoundRates:     compoundRates,
		aavePositions:     aavePositions,
		compoundPositions: compoundPositions,
		balances:          balances,
		logger:            log,
	}
}

// Asset returns the configured asset.
func (s *LendingService) Asset() *asset.Asset {
	return s.ast
}

// Snapshot reads rates and positions for the wallet. The two rate reads
// are side-effect-free at a fixed block height, so they run
// concurrently; everything else is sequential. Any read failure fails
// the whole cycle so the caller retries from scratch.
func (s *LendingService) Snapshot(ctx context.Context, wallet common.Address) (*domain.Snapshot, error) {
	type rateResult struct {
		quote domain.RateQuote
		err   error
	}

	aaveCh := make(chan rateResult, 1)
	compoundCh := make(chan rateResult, 1)

	go func() {
		q, err := s.aaveRates.GetRate(ctx)
		aaveCh <- rateResult{q, err}
	}()
	go func() {
		q, err := s.compoundRates.GetRate(ctx)
		compoundCh <- rateResult{q, err}
	}()

	aave := <-aaveCh
	if aave.err != nil {
		return nil, apperror.Wrap(aave.err, apperror.CodeRateReadFailed, "aave rate")
	}
	compound := <-compoundCh
	if compound.err != nil {
		return nil, apperror.Wrap(compound.err, apperror.CodeRateReadFailed, "compound rate")
	}

	aavePos, err := s.aavePositions.GetPosition(ctx, wallet)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePositionReadFailed, "aave position")
	}
	compoundPos, err := s.compoundPositions.GetPosition(ctx, wallet)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePositionReadFailed, "compound position")
	}

	walletBalance := asset.Zero(s.ast)
	if s.balances != nil {
		walletBalance, err = s.balances.BalanceOf(ctx, wallet)
		if err != nil {
			// Display-only read; a failure here must not kill the cycle.
			s.logger.Warn(ctx, "wallet balance read failed", "error", err)
			walletBalance = asset.Zero(s.ast)
		}
	}

	snap := &domain.Snapshot{
		Wallet:           wallet,
		Asset:            s.ast,
		AaveRate:         aave.quote,
		CompoundRate:     compound.quote,
		AavePosition:     aavePos,
		CompoundPosition: compoundPos,
		WalletBalance:    walletBalance,
		Timestamp:        time.Now().UTC(),
	}

	s.logger.Debug(ctx, "lending snapshot",
		"wallet", wallet.Hex(),
		"aave_bps", snap.AaveRate.Bps,
		"compound_bps", snap.CompoundRate.Bps,
		"aave_supplied", snap.AavePosition.Supplied.Raw().String(),
		"compound_supplied", snap.CompoundPosition.Supplied.Raw().String(),
	)

	return snap, nil
}
