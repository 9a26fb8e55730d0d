package domain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/0xnicolas/safe-yield-bot/internal/apperror"
)

// ABI fragments for the Safe execution path.
const (
	multiSendABI = `[
		{"name":"multiSend","type":"function","stateMutability":"payable","inputs":[{"name":"transactions","type":"bytes"}],"outputs":[]}
	]`

	safeModuleABI = `[
		{"name":"isModuleEnabled","type":"function","stateMutability":"view","inputs":[{"name":"module","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
		{"name":"execTransactionFromModule","type":"function","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"},{"name":"data","type":"bytes"},{"name":"operation","type":"uint8"}],"outputs":[{"name":"success","type":"bool"}]}
	]`
)

var (
	multiSend = mustABI(multiSendABI)
	safeABI   = mustABI(safeModuleABI)
)

func mustABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("invalid ABI fragment: " + err.Error())
	}
	return parsed
}

// ModuleTransaction is the transaction the automation service submits:
// a call to the Safe carrying execTransactionFromModule calldata.
type ModuleTransaction struct {
	To    common.Address // the Safe
	Value *big.Int       // always zero
	Data  []byte         // execTransactionFromModule calldata
}

// SafeABI exposes the parsed Safe fragment for eth_call encoding.
func SafeABI() abi.ABI {
	return safeABI
}

// WrapMultiSend builds multiSend(transactions) calldata around packed
// batch bytes.
func WrapMultiSend(packed []byte) ([]byte, error) {
	data, err := multiSend.Pack("multiSend", packed)
	if err != nil {
		return nil, apperror.New(apperror.CodeBatchEncodingError,
			apperror.WithMessage("encoding multiSend"),
			apperror.WithCause(err),
		)
	}
	return data, nil
}

// BuildModuleTransaction wraps packed batch bytes for delegatecall
// execution through the Safe: the wallet delegatecalls into MultiSend
// so the inner calls run with the wallet's own storage and allowances.
func BuildModuleTransaction(safe, multiSendAddr common.Address, packed []byte) (ModuleTransaction, error) {
	inner, err := WrapMultiSend(packed)
	if err != nil {
		return ModuleTransaction{}, err
	}

	data, err := safeABI.Pack("execTransactionFromModule",
		multiSendAddr, new(big.Int), inner, uint8(OperationDelegateCall))
	if err != nil {
		return ModuleTransaction{}, apperror.New(apperror.CodeBatchEncodingError,
			apperror.WithMessage("encoding execTransactionFromModule"),
			apperror.WithCause(err),
		)
	}

	return ModuleTransaction{
		To:    safe,
		Value: new(big.Int),
		Data:  data,
	}, nil
}
