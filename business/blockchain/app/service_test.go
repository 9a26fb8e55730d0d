package app

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/0xnicolas/safe-yield-bot/business/blockchain/domain"
	"github.com/0xnicolas/safe-yield-bot/internal/apperror"
)

type fakeSubscriber struct {
	chainID    *big.Int
	chainIDErr error
}

func (f *fakeSubscriber) Subscribe(ctx context.Context) (<-chan *domain.Head, error) {
	return nil, nil
}

func (f *fakeSubscriber) LatestHead(ctx context.Context) (*domain.Head, error) {
	return nil, nil
}

func (f *fakeSubscriber) ChainID(ctx context.Context) (*big.Int, error) {
	return f.chainID, f.chainIDErr
}

func (f *fakeSubscriber) State() domain.ConnectionState {
	return domain.StateConnected
}

func (f *fakeSubscriber) Close() error { return nil }

func TestVerifyChainID(t *testing.T) {
	tests := []struct {
		name     string
		expected uint64
		node     *big.Int
		nodeErr  error
		wantErr  bool
		wantCode apperror.Code
	}{
		{"match", 1, big.NewInt(1), nil, false, ""},
		{"mismatch", 1, big.NewInt(11155111), nil, true, apperror.CodeConfigurationError},
		{"zero expectation skips check", 0, nil, nil, false, ""},
		{"rpc error propagates", 1, nil, errors.New("rpc down"), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewBlockchainService(&fakeSubscriber{chainID: tt.node, chainIDErr: tt.nodeErr}, tt.expected)

			err := svc.VerifyChainID(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("VerifyChainID error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantCode != "" {
				if code := apperror.GetCode(err); code != tt.wantCode {
					t.Errorf("code = %s, want %s", code, tt.wantCode)
				}
			}
		})
	}
}
