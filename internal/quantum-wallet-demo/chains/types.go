package chains

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type AllChainsConfig struct {
	Networks      map[string]NetworkConfig `json:"networks" yaml:"networks"`
	ActiveNetwork string                   `json:"activeNetwork" yaml:"activeNetwork" mapstructure:"activeNetwork"`
	ActiveRPC     string                   `json:"activeRPC" yaml:"activeRPC" mapstructure:"activeRPC"`
}

// NetworkConfig describes a network and its RPC endpoints.
type NetworkConfig struct {
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"displayName" yaml:"displayName" mapstructure:"displayName"`
	ChainID     uint64 `json:"chainId" yaml:"chainId" mapstructure:"chainId"`
	ChainIDHex  string `json:"chainIdHex" yaml:"chainIdHex" mapstructure:"chainIdHex"`
	EntryPoint  string `json:"entryPoint" yaml:"entryPoint" mapstructure:"entryPoint"`
	Explorer    string `json:"explorer" yaml:"explorer" mapstructure:"explorer"`
	RPCs        []RPC  `json:"rpcs" yaml:"rpcs"`
}

// RPC is one transport for a network. WSS is optional; HTTP is always used for reads and writes.
type RPC struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
	WSS  string `json:"wss" yaml:"wss"`
}

// Normalize lower-cases network keys, copies the key into Name and fills ChainIDHex.
func (mc *AllChainsConfig) Normalize() {
	if mc == nil {
		return
	}
	out := make(map[string]NetworkConfig, len(mc.Networks))
	for name, n := range mc.Networks {
		key := strings.ToLower(strings.TrimSpace(name))
		n.Name = key
		if strings.TrimSpace(n.ChainIDHex) == "" && n.ChainID != 0 {
			n.ChainIDHex = "0x" + new(big.Int).SetUint64(n.ChainID).Text(16)
		}
		n.ChainIDHex = strings.ToLower(strings.TrimSpace(n.ChainIDHex))
		if strings.TrimSpace(n.DisplayName) == "" {
			n.DisplayName = key
		}
		out[key] = n
	}
	mc.Networks = out
	mc.ActiveNetwork = strings.ToLower(strings.TrimSpace(mc.ActiveNetwork))
}

// EVMClient is the surface of *ethclient.Client the wallet needs.
type EVMClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	FeeHistory(ctx context.Context, blockCount uint64, lastBlock *big.Int, rewardPercentiles []float64) (*ethereum.FeeHistory, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}
