package view_test

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/assets"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/view"
)

func TestBalanceDisplay(t *testing.T) {
	oneEth, _ := new(big.Int).SetString("1000000000000000000", 10)
	halfEth, _ := new(big.Int).SetString("500000000000000000", 10)

	tests := []struct {
		name string
		snap assets.Snapshot
		want string
	}{
		{name: "nothing loaded", snap: assets.Snapshot{}, want: ""},
		{name: "native only", snap: assets.Snapshot{Native: oneEth}, want: "1 ETH"},
		{name: "both", snap: assets.Snapshot{Native: halfEth, Token: big.NewInt(10_500_000)}, want: "0.5 ETH, 10.5 USDC"},
		{name: "zero usdc is shown", snap: assets.Snapshot{Native: big.NewInt(0), Token: big.NewInt(0)}, want: "0 ETH, 0 USDC"},
		{name: "token only", snap: assets.Snapshot{Token: big.NewInt(1)}, want: ", 0.000001 USDC"},
		{name: "dust is not rounded away", snap: assets.Snapshot{Native: big.NewInt(1)}, want: "0.000000000000000001 ETH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, view.BalanceDisplay(tt.snap))
		})
	}
}

func TestSignedMessagePreview(t *testing.T) {
	long := "0x" + strings.Repeat("c", 130)

	assert.Equal(t, "", view.SignedMessagePreview("", false))
	assert.Equal(t, long[:50]+"...", view.SignedMessagePreview(long, false))
	assert.Equal(t, long, view.SignedMessagePreview(long, true))
	assert.Equal(t, "Error signing message...", view.SignedMessagePreview("Error signing message", false))
}
