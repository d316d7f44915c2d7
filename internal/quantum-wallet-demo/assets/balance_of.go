package assets

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/chains"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/constants"
)

// ClientSource hands out cached RPC clients per network.
type ClientSource interface {
	ClientsForNetwork(ctx context.Context, networkName string) (*chains.ChainClients, error)
}

type Manager struct {
	chainsService ClientSource
}

func NewManager(chainsService ClientSource) (*Manager, error) {
	if chainsService == nil {
		return nil, fmt.Errorf("assets: chain service is nil")
	}
	return &Manager{chainsService: chainsService}, nil
}

// BalanceOf returns the balance for `owner` on `network`.
// - If token == NativeAddr (0x000..0): returns ETH balance (wei)
// - Else: returns ERC20 balance (raw units)
func (m *Manager) BalanceOf(ctx context.Context, network string, token common.Address, owner common.Address) (*big.Int, error) {
	// zero address: always zero, no RPC call
	if owner == (common.Address{}) {
		return big.NewInt(0), nil
	}

	clients, err := m.chainsService.ClientsForNetwork(ctx, network)
	if err != nil {
		return nil, fmt.Errorf("assets: clients for %q: %w", network, err)
	}
	if clients == nil || clients.HTTP == nil {
		return nil, fmt.Errorf("assets: no http client for %q", network)
	}
	client := clients.HTTP

	native := common.HexToAddress(constants.NativeAddr)
	if strings.EqualFold(token.Hex(), native.Hex()) {
		wei, err := client.BalanceAt(ctx, owner, nil)
		if err != nil {
			return nil, fmt.Errorf("assets: native balance: %w", err)
		}
		return wei, nil
	}

	parsed, err := ERC20()
	if err != nil {
		return nil, fmt.Errorf("assets: erc20 abi: %w", err)
	}
	input, err := parsed.Pack("balanceOf", owner)
	if err != nil {
		return nil, fmt.Errorf("assets: pack balanceOf: %w", err)
	}

	out, err := client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("assets: erc20 balanceOf: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("assets: token %s returned no data (not a contract on %s?)", token.Hex(), network)
	}

	values, err := parsed.Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("assets: unpack balanceOf: %w", err)
	}
	bal, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("assets: unexpected balanceOf type %T", values[0])
	}
	return bal, nil
}
