package testutil

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/chains"
)

// MockEVMClient provides a mock for chains.EVMClient
type MockEVMClient struct {
	mock.Mock
}

var _ chains.EVMClient = (*MockEVMClient)(nil)

func bigOrNil(v interface{}) *big.Int {
	b, _ := v.(*big.Int)
	return b
}

func (m *MockEVMClient) ChainID(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	return bigOrNil(args.Get(0)), args.Error(1)
}

func (m *MockEVMClient) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	args := m.Called(ctx, account, blockNumber)
	return bigOrNil(args.Get(0)), args.Error(1)
}

func (m *MockEVMClient) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	args := m.Called(ctx, contract, blockNumber)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *MockEVMClient) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	args := m.Called(ctx, call, blockNumber)
	if fn, ok := args.Get(0).(func(ethereum.CallMsg) []byte); ok {
		return fn(call), args.Error(1)
	}
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *MockEVMClient) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	args := m.Called(ctx, number)
	h, _ := args.Get(0).(*types.Header)
	return h, args.Error(1)
}

func (m *MockEVMClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockEVMClient) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	return bigOrNil(args.Get(0)), args.Error(1)
}

func (m *MockEVMClient) FeeHistory(ctx context.Context, blockCount uint64, lastBlock *big.Int, rewardPercentiles []float64) (*ethereum.FeeHistory, error) {
	args := m.Called(ctx, blockCount, lastBlock, rewardPercentiles)
	fh, _ := args.Get(0).(*ethereum.FeeHistory)
	return fh, args.Error(1)
}

func (m *MockEVMClient) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	args := m.Called(ctx, call)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockEVMClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockEVMClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	args := m.Called(ctx, txHash)
	r, _ := args.Get(0).(*types.Receipt)
	return r, args.Error(1)
}

// StaticClients serves the same clients for every network.
type StaticClients struct {
	Clients *chains.ChainClients
	Err     error
}

func (s StaticClients) ClientsForNetwork(ctx context.Context, networkName string) (*chains.ChainClients, error) {
	return s.Clients, s.Err
}

// StaticNetwork reports a fixed active network.
type StaticNetwork string

func (n StaticNetwork) ActiveNetwork() (string, error) {
	return string(n), nil
}
