package smartwallet

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Call is a single call executed by the smart account.
type Call struct {
	To    common.Address
	Value *big.Int
	Data  []byte
}

func (c Call) valueOrZero() *big.Int {
	if c.Value == nil {
		return new(big.Int)
	}
	return c.Value
}

// UserOperation is the unpacked v0.7 user operation, as bundlers accept it over JSON-RPC.
type UserOperation struct {
	Sender               common.Address
	Nonce                *big.Int
	Factory              *common.Address
	FactoryData          []byte
	CallData             []byte
	CallGasLimit         *big.Int
	VerificationGasLimit *big.Int
	PreVerificationGas   *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	Signature            []byte
}

// PackedUserOperation mirrors the EntryPoint v0.7 struct for ABI encoding.
type PackedUserOperation struct {
	Sender             common.Address `abi:"sender"`
	Nonce              *big.Int       `abi:"nonce"`
	InitCode           []byte         `abi:"initCode"`
	CallData           []byte         `abi:"callData"`
	AccountGasLimits   [32]byte       `abi:"accountGasLimits"`
	PreVerificationGas *big.Int       `abi:"preVerificationGas"`
	GasFees            [32]byte       `abi:"gasFees"`
	PaymasterAndData   []byte         `abi:"paymasterAndData"`
	Signature          []byte         `abi:"signature"`
}

// packU128Pair puts high in the upper 16 bytes and low in the lower 16 bytes.
func packU128Pair(high, low *big.Int) [32]byte {
	var out [32]byte
	putU128(out[:16], high)
	putU128(out[16:], low)
	return out
}

func putU128(dst []byte, v *big.Int) {
	if v == nil {
		return
	}
	b := v.Bytes()
	if len(b) > len(dst) {
		b = b[len(b)-len(dst):]
	}
	copy(dst[len(dst)-len(b):], b)
}

// unpackU128Pair is the inverse of packU128Pair.
func unpackU128Pair(v [32]byte) (high, low *big.Int) {
	return new(big.Int).SetBytes(v[:16]), new(big.Int).SetBytes(v[16:])
}

func (op *UserOperation) initCode() []byte {
	if op.Factory == nil {
		return []byte{}
	}
	return append(op.Factory.Bytes(), op.FactoryData...)
}

// Pack converts op into the on-chain layout:
// accountGasLimits = verificationGasLimit || callGasLimit, gasFees = maxPriorityFeePerGas || maxFeePerGas.
func (op *UserOperation) Pack() PackedUserOperation {
	sig := op.Signature
	if sig == nil {
		sig = []byte{}
	}
	callData := op.CallData
	if callData == nil {
		callData = []byte{}
	}
	return PackedUserOperation{
		Sender:             op.Sender,
		Nonce:              bigOrZero(op.Nonce),
		InitCode:           op.initCode(),
		CallData:           callData,
		AccountGasLimits:   packU128Pair(op.VerificationGasLimit, op.CallGasLimit),
		PreVerificationGas: bigOrZero(op.PreVerificationGas),
		GasFees:            packU128Pair(op.MaxPriorityFeePerGas, op.MaxFeePerGas),
		PaymasterAndData:   []byte{},
		Signature:          sig,
	}
}

// RPC renders op in the eth_sendUserOperation v0.7 JSON shape.
func (op *UserOperation) RPC() map[string]any {
	out := map[string]any{
		"sender":               op.Sender,
		"nonce":                (*hexutil.Big)(bigOrZero(op.Nonce)),
		"callData":             hexutil.Bytes(op.CallData),
		"callGasLimit":         (*hexutil.Big)(bigOrZero(op.CallGasLimit)),
		"verificationGasLimit": (*hexutil.Big)(bigOrZero(op.VerificationGasLimit)),
		"preVerificationGas":   (*hexutil.Big)(bigOrZero(op.PreVerificationGas)),
		"maxFeePerGas":         (*hexutil.Big)(bigOrZero(op.MaxFeePerGas)),
		"maxPriorityFeePerGas": (*hexutil.Big)(bigOrZero(op.MaxPriorityFeePerGas)),
		"signature":            hexutil.Bytes(op.Signature),
	}
	if op.Factory != nil {
		out["factory"] = *op.Factory
		out["factoryData"] = hexutil.Bytes(op.FactoryData)
	}
	return out
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
