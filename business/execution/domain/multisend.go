// Package domain defines the execution context's wire formats: the
// MultiSend packed batch and the Safe module transaction.
package domain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	rebalanceDomain "github.com/0xnicolas/safe-yield-bot/business/rebalance/domain"
	"github.com/0xnicolas/safe-yield-bot/internal/apperror"
)

// Safe operation kinds.
const (
	OperationCall         = 0x00
	OperationDelegateCall = 0x01
)

// Per-call header: op(1) + to(20) + value(32) + dataLen(32).
const callHeaderLen = 1 + 20 + 32 + 32

// EncodeMultiSend packs calls into the MultiSend byte layout: for each
// call `op ++ to ++ value ++ len(data) ++ data`, all concatenated with
// no separators. value and len are 32-byte big-endian words. Every
// inner call uses operation 0x00; the delegatecall happens one level
// up, when the wallet runs the MultiSend contract itself.
// An empty call list encodes to empty bytes.
func EncodeMultiSend(calls []rebalanceDomain.Call) []byte {
	size := 0
	for _, c := range calls {
		size += callHeaderLen + len(c.Payload)
	}

	packed := make([]byte, 0, size)
	for _, c := range calls {
		packed = append(packed, OperationCall)
		packed = append(packed, c.Target.Bytes()...)

		value := c.Value
		if value == nil {
			value = new(big.Int)
		}
		var word [32]byte
		value.FillBytes(word[:])
		packed = append(packed, word[:]...)

		new(big.Int).SetUint64(uint64(len(c.Payload))).FillBytes(word[:])
		packed = append(packed, word[:]...)

		packed = append(packed, c.Payload...)
	}
	return packed
}

// DecodeMultiSend parses packed MultiSend bytes back into calls. It is
// the exact inverse of EncodeMultiSend and rejects anything the encoder
// cannot produce: unknown operation bytes, truncated headers, or a
// data length running past the end of the input.
func DecodeMultiSend(packed []byte) ([]rebalanceDomain.Call, error) {
	var calls []rebalanceDomain.Call

	for offset := 0; offset < len(packed); {
		if len(packed)-offset < callHeaderLen {
			return nil, apperror.New(apperror.CodeBatchEncodingError,
				apperror.WithMessage(fmt.Sprintf("truncated call header at offset %d", offset)),
			)
		}

		op := packed[offset]
		if op != OperationCall {
			return nil, apperror.New(apperror.CodeBatchEncodingError,
				apperror.WithMessage(fmt.Sprintf("unexpected operation %#x at offset %d", op, offset)),
			)
		}
		offset++

		target := common.BytesToAddress(packed[offset : offset+20])
		offset += 20

		value := new(big.Int).SetBytes(packed[offset : offset+32])
		offset += 32

		dataLen := new(big.Int).SetBytes(packed[offset : offset+32])
		offset += 32
		if !dataLen.IsInt64() || dataLen.Int64() > int64(len(packed)-offset) {
			return nil, apperror.New(apperror.CodeBatchEncodingError,
				apperror.WithMessage(fmt.Sprintf("data length %s overruns input at offset %d", dataLen, offset)),
			)
		}

		n := int(dataLen.Int64())
		payload := make([]byte, n)
		copy(payload, packed[offset:offset+n])
		offset += n

		calls = append(calls, rebalanceDomain.Call{
			Target:  target,
			Value:   value,
			Payload: payload,
		})
	}

	return calls, nil
}
