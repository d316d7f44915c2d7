package smartwallet

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestPackU128Pair(t *testing.T) {
	tests := []struct {
		name      string
		high, low *big.Int
	}{
		{name: "small values", high: big.NewInt(1), low: big.NewInt(2)},
		{name: "gas limits", high: big.NewInt(400_000), low: big.NewInt(230_000)},
		{name: "nil high", high: nil, low: big.NewInt(9)},
		{name: "max u128", high: new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)), low: big.NewInt(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packed := packU128Pair(tt.high, tt.low)

			want := new(big.Int).Lsh(bigOrZero(tt.high), 128)
			want.Or(want, bigOrZero(tt.low))
			assert.Equal(t, 0, want.Cmp(new(big.Int).SetBytes(packed[:])))

			high, low := unpackU128Pair(packed)
			assert.Equal(t, 0, bigOrZero(tt.high).Cmp(high))
			assert.Equal(t, 0, bigOrZero(tt.low).Cmp(low))
		})
	}
}

func TestUserOperation_Pack(t *testing.T) {
	factory := common.HexToAddress(SimpleAccountFactory)
	op := &UserOperation{
		Sender:               common.HexToAddress("0x00000000000000000000000000000000000000aa"),
		Nonce:                big.NewInt(3),
		Factory:              &factory,
		FactoryData:          []byte{0xde, 0xad},
		CallData:             []byte{0x01},
		CallGasLimit:         big.NewInt(200_000),
		VerificationGasLimit: big.NewInt(400_000),
		PreVerificationGas:   big.NewInt(60_000),
		MaxFeePerGas:         big.NewInt(205),
		MaxPriorityFeePerGas: big.NewInt(5),
	}

	packed := op.Pack()
	assert.Equal(t, append(factory.Bytes(), 0xde, 0xad), packed.InitCode)

	verification, call := unpackU128Pair(packed.AccountGasLimits)
	assert.Equal(t, int64(400_000), verification.Int64())
	assert.Equal(t, int64(200_000), call.Int64())

	prio, maxFee := unpackU128Pair(packed.GasFees)
	assert.Equal(t, int64(5), prio.Int64())
	assert.Equal(t, int64(205), maxFee.Int64())

	assert.Empty(t, packed.PaymasterAndData)
	assert.NotNil(t, packed.Signature)

	rpcOp := op.RPC()
	assert.Equal(t, factory, rpcOp["factory"])

	op.Factory = nil
	assert.Empty(t, op.Pack().InitCode)
	assert.NotContains(t, op.RPC(), "factory")
}
