// Package erc20 reads plain token balances held directly by the wallet.
package erc20

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/0xnicolas/safe-yield-bot/business/lending/app"
	"github.com/0xnicolas/safe-yield-bot/internal/apperror"
	"github.com/0xnicolas/safe-yield-bot/internal/asset"
	"github.com/0xnicolas/safe-yield-bot/internal/ratelimit"
)

const balanceOfABI = `[
	{
		"inputs": [{"internalType": "address", "name": "account", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

var _ app.BalanceReader = (*Reader)(nil)

// Reader reads the wallet's undeposited balance of one token.
type Reader struct {
	client  *ethclient.Client
	ast     *asset.Asset
	erc20   abi.ABI
	limiter *ratelimit.Limiter
}

// NewReader creates a balance reader for the asset.
func NewReader(client *ethclient.Client, ast *asset.Asset, limiter *ratelimit.Limiter) (*Reader, error) {
	parsed, err := abi.JSON(strings.NewReader(balanceOfABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse erc20 ABI: %w", err)
	}
	return &Reader{client: client, ast: ast, erc20: parsed, limiter: limiter}, nil
}

// BalanceOf returns the wallet's direct token balance.
func (r *Reader) BalanceOf(ctx context.Context, wallet common.Address) (asset.Amount, error) {
	callData, err := r.erc20.Pack("balanceOf", wallet)
	if err != nil {
		return asset.Amount{}, err
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return asset.Amount{}, err
		}
	}

	to := r.ast.Address()
	result, err := r.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: callData}, nil)
	if err != nil {
		return asset.Amount{}, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext("erc20 balanceOf"))
	}

	outputs, err := r.erc20.Unpack("balanceOf", result)
	if err != nil {
		return asset.Amount{}, apperror.New(apperror.CodeResponseDecodeFailed,
			apperror.WithCause(err),
			apperror.WithContext("erc20 balanceOf"))
	}

	return asset.NewAmount(r.ast, outputs[0].(*big.Int)), nil
}
