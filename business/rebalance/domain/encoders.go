package domain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/0xnicolas/safe-yield-bot/internal/apperror"
)

// ABI fragments for the calls a plan can contain.
const (
	erc20ApproveABI = `[
		{"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
	]`

	aavePoolActionsABI = `[
		{"name":"supply","type":"function","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"},{"name":"amount","type":"uint256"},{"name":"onBehalfOf","type":"address"},{"name":"referralCode","type":"uint16"}],"outputs":[]},
		{"name":"withdraw","type":"function","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"},{"name":"amount","type":"uint256"},{"name":"to","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
	]`

	cometActionsABI = `[
		{"name":"supply","type":"function","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
		{"name":"withdraw","type":"function","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]}
	]`
)

var (
	erc20ABI    = mustABI(erc20ApproveABI)
	aaveABI     = mustABI(aavePoolActionsABI)
	compoundABI = mustABI(cometActionsABI)
)

func mustABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("invalid ABI fragment: " + err.Error())
	}
	return parsed
}

// EncodeApprove packs ERC20 approve(spender, amount).
func EncodeApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	data, err := erc20ABI.Pack("approve", spender, amount)
	if err != nil {
		return nil, apperror.New(apperror.CodeCallEncodingFailed,
			apperror.WithMessage("encoding approve"),
			apperror.WithCause(err),
		)
	}
	return data, nil
}

// EncodeAaveWithdraw packs Pool.withdraw(asset, amount, to). The pool
// sends the withdrawn tokens to the `to` address.
func EncodeAaveWithdraw(asset common.Address, amount *big.Int, to common.Address) ([]byte, error) {
	data, err := aaveABI.Pack("withdraw", asset, amount, to)
	if err != nil {
		return nil, apperror.New(apperror.CodeCallEncodingFailed,
			apperror.WithMessage("encoding aave withdraw"),
			apperror.WithCause(err),
		)
	}
	return data, nil
}

// EncodeAaveSupply packs Pool.supply(asset, amount, onBehalfOf, 0).
// The referral program is discontinued so the code is always zero.
func EncodeAaveSupply(asset common.Address, amount *big.Int, onBehalfOf common.Address) ([]byte, error) {
	data, err := aaveABI.Pack("supply", asset, amount, onBehalfOf, uint16(0))
	if err != nil {
		return nil, apperror.New(apperror.CodeCallEncodingFailed,
			apperror.WithMessage("encoding aave supply"),
			apperror.WithCause(err),
		)
	}
	return data, nil
}

// EncodeCompoundWithdraw packs Comet.withdraw(asset, amount). Comet
// always pays out to msg.sender.
func EncodeCompoundWithdraw(asset common.Address, amount *big.Int) ([]byte, error) {
	data, err := compoundABI.Pack("withdraw", asset, amount)
	if err != nil {
		return nil, apperror.New(apperror.CodeCallEncodingFailed,
			apperror.WithMessage("encoding compound withdraw"),
			apperror.WithCause(err),
		)
	}
	return data, nil
}

// EncodeCompoundSupply packs Comet.supply(asset, amount).
func EncodeCompoundSupply(asset common.Address, amount *big.Int) ([]byte, error) {
	data, err := compoundABI.Pack("supply", asset, amount)
	if err != nil {
		return nil, apperror.New(apperror.CodeCallEncodingFailed,
			apperror.WithMessage("encoding compound supply"),
			apperror.WithCause(err),
		)
	}
	return data, nil
}
