package assets

import (
	"math/big"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ERC20ABI is the subset of the ERC-20 interface the wallet calls.
const ERC20ABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
]`

var (
	erc20Once   sync.Once
	erc20Parsed abi.ABI
	erc20Err    error
)

func ERC20() (abi.ABI, error) {
	erc20Once.Do(func() {
		erc20Parsed, erc20Err = abi.JSON(strings.NewReader(ERC20ABI))
	})
	return erc20Parsed, erc20Err
}

// TransferCalldata encodes transfer(recipient, amount).
func TransferCalldata(recipient common.Address, amount *big.Int) ([]byte, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, errors.New("transfer amount must be non-negative")
	}
	parsed, err := ERC20()
	if err != nil {
		return nil, errors.Wrap(err, "erc20 abi")
	}
	return parsed.Pack("transfer", recipient, amount)
}

// DecodeTransfer is the inverse of TransferCalldata.
func DecodeTransfer(data []byte) (common.Address, *big.Int, error) {
	parsed, err := ERC20()
	if err != nil {
		return common.Address{}, nil, errors.Wrap(err, "erc20 abi")
	}
	if len(data) < 4 {
		return common.Address{}, nil, errors.New("calldata too short")
	}
	method, err := parsed.MethodById(data[:4])
	if err != nil {
		return common.Address{}, nil, err
	}
	if method.Name != "transfer" {
		return common.Address{}, nil, errors.Newf("not a transfer call: %s", method.Name)
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return common.Address{}, nil, errors.Wrap(err, "unpack transfer")
	}
	to, ok := args[0].(common.Address)
	if !ok {
		return common.Address{}, nil, errors.New("transfer recipient is not an address")
	}
	amount, ok := args[1].(*big.Int)
	if !ok {
		return common.Address{}, nil, errors.New("transfer amount is not a uint256")
	}
	return to, amount, nil
}
