package app

import (
	"context"
	"fmt"

	"github.com/0xnicolas/safe-yield-bot/business/blockchain/domain"
	"github.com/0xnicolas/safe-yield-bot/internal/apperror"
)

// BlockchainService coordinates chain connectivity for watch mode.
type BlockchainService struct {
	subscriber      HeadSubscriber
	expectedChainID uint64
}

// NewBlockchainService creates a BlockchainService.
func NewBlockchainService(subscriber HeadSubscriber, expectedChainID uint64) *BlockchainService {
	return &BlockchainService{
		subscriber:      subscriber,
		expectedChainID: expectedChainID,
	}
}

// SubscribeHeads starts the head subscription and returns the channel.
func (s *BlockchainService) SubscribeHeads(ctx context.Context) (<-chan *domain.Head, error) {
	return s.subscriber.Subscribe(ctx)
}

// LatestHead retrieves the most recent head.
func (s *BlockchainService) LatestHead(ctx context.Context) (*domain.Head, error) {
	return s.subscriber.LatestHead(ctx)
}

// VerifyChainID checks that the connected node serves the configured
// chain. Submitting a mainnet plan against a fork would burn the
// automation task, so this runs once before the first cycle.
func (s *BlockchainService) VerifyChainID(ctx context.Context) error {
	if s.expectedChainID == 0 {
		return nil
	}

	chainID, err := s.subscriber.ChainID(ctx)
	if err != nil {
		return err
	}
	if chainID.Uint64() != s.expectedChainID {
		return apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage(fmt.Sprintf("node is on chain %s, config expects %d", chainID, s.expectedChainID)),
		)
	}
	return nil
}

// ConnectionState returns the current connection state.
func (s *BlockchainService) ConnectionState() domain.ConnectionState {
	return s.subscriber.State()
}

// Close shuts down the subscription.
func (s *BlockchainService) Close() error {
	return s.subscriber.Close()
}
