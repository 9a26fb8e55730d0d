package domain

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	rebalanceDomain "github.com/0xnicolas/safe-yield-bot/business/rebalance/domain"
	"github.com/0xnicolas/safe-yield-bot/internal/apperror"
)

func call(target string, value int64, payload []byte) rebalanceDomain.Call {
	return rebalanceDomain.Call{
		Target:  common.HexToAddress(target),
		Value:   big.NewInt(value),
		Payload: payload,
	}
}

func TestEncodeMultiSendEmptyList(t *testing.T) {
	if got := EncodeMultiSend(nil); len(got) != 0 {
		t.Errorf("EncodeMultiSend(nil) = %d bytes, want empty", len(got))
	}
}

func TestEncodeMultiSendLayout(t *testing.T) {
	payload := []byte{0xde, 0xad, 0xbe, 0xef}
	packed := EncodeMultiSend([]rebalanceDomain.Call{
		call("0x1111111111111111111111111111111111111111", 0, payload),
	})

	wantLen := 1 + 20 + 32 + 32 + len(payload)
	if len(packed) != wantLen {
		t.Fatalf("packed length = %d, want %d", len(packed), wantLen)
	}
	if packed[0] != OperationCall {
		t.Errorf("operation byte = %#x, want 0x00", packed[0])
	}
	if !bytes.Equal(packed[1:21], common.HexToAddress("0x1111111111111111111111111111111111111111").Bytes()) {
		t.Error("target bytes do not follow the operation byte")
	}
	// value word is all zeros
	if !bytes.Equal(packed[21:53], make([]byte, 32)) {
		t.Error("value word is not zero")
	}
	// length word is a 32-byte big-endian 4
	wantLenWord := make([]byte, 32)
	wantLenWord[31] = byte(len(payload))
	if !bytes.Equal(packed[53:85], wantLenWord) {
		t.Error("data length word is not big-endian")
	}
	if !bytes.Equal(packed[85:], payload) {
		t.Error("payload bytes are not appended verbatim")
	}
}

func TestMultiSendRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		calls []rebalanceDomain.Call
	}{
		{"empty", nil},
		{"single call no payload", []rebalanceDomain.Call{
			call("0x1111111111111111111111111111111111111111", 0, nil),
		}},
		{"three calls", []rebalanceDomain.Call{
			call("0x1111111111111111111111111111111111111111", 0, []byte{0x01}),
			call("0x2222222222222222222222222222222222222222", 7, bytes.Repeat([]byte{0xab}, 100)),
			call("0x3333333333333333333333333333333333333333", 0, []byte{0xff, 0x00, 0xff}),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packed := EncodeMultiSend(tt.calls)
			decoded, err := DecodeMultiSend(packed)
			if err != nil {
				t.Fatalf("DecodeMultiSend: %v", err)
			}
			if len(decoded) != len(tt.calls) {
				t.Fatalf("decoded %d calls, want %d", len(decoded), len(tt.calls))
			}
			for i := range tt.calls {
				if decoded[i].Target != tt.calls[i].Target {
					t.Errorf("call %d target = %s, want %s", i, decoded[i].Target.Hex(), tt.calls[i].Target.Hex())
				}
				if decoded[i].Value.Cmp(tt.calls[i].Value) != 0 {
					t.Errorf("call %d value = %s, want %s", i, decoded[i].Value, tt.calls[i].Value)
				}
				if !bytes.Equal(decoded[i].Payload, tt.calls[i].Payload) {
					t.Errorf("call %d payload mismatch", i)
				}
			}
			// Byte-for-byte on re-encode.
			if !bytes.Equal(EncodeMultiSend(decoded), packed) {
				t.Error("re-encoding the decoded calls changed the bytes")
			}
		})
	}
}

func TestDecodeMultiSendRejectsMalformedInput(t *testing.T) {
	valid := EncodeMultiSend([]rebalanceDomain.Call{
		call("0x1111111111111111111111111111111111111111", 0, []byte{0x01, 0x02}),
	})

	tests := []struct {
		name   string
		packed []byte
	}{
		{"truncated header", valid[:40]},
		{"payload cut short", valid[:len(valid)-1]},
		{"delegatecall operation byte", append([]byte{OperationDelegateCall}, valid[1:]...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMultiSend(tt.packed)
			if err == nil {
				t.Fatal("expected decode error")
			}
			if code := apperror.GetCode(err); code != apperror.CodeBatchEncodingError {
				t.Errorf("code = %s, want %s", code, apperror.CodeBatchEncodingError)
			}
		})
	}
}
