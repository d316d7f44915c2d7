package smartwallet

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ERC-4337 v0.7 deployments shared by Base and Base Sepolia.
const (
	EntryPointV07        = "0x0000000071727De22E5E9d8BAf0edAc6f37da032"
	SimpleAccountFactory = "0x91E60e0613810449d098b0b5Ec8b51A0FE8c8985"
)

const packedUserOpTuple = `{"name":"sender","type":"address"},
{"name":"nonce","type":"uint256"},
{"name":"initCode","type":"bytes"},
{"name":"callData","type":"bytes"},
{"name":"accountGasLimits","type":"bytes32"},
{"name":"preVerificationGas","type":"uint256"},
{"name":"gasFees","type":"bytes32"},
{"name":"paymasterAndData","type":"bytes"},
{"name":"signature","type":"bytes"}`

const EntryPointABI = `[
{"inputs":[{"name":"sender","type":"address"},{"name":"key","type":"uint192"}],"name":"getNonce","outputs":[{"name":"nonce","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"components":[` + packedUserOpTuple + `],"name":"userOp","type":"tuple"}],"name":"getUserOpHash","outputs":[{"name":"","type":"bytes32"}],"stateMutability":"view","type":"function"},
{"inputs":[{"components":[` + packedUserOpTuple + `],"name":"ops","type":"tuple[]"},{"name":"beneficiary","type":"address"}],"name":"handleOps","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

const FactoryABI = `[
{"inputs":[{"name":"owner","type":"address"},{"name":"salt","type":"uint256"}],"name":"getAddress","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"owner","type":"address"},{"name":"salt","type":"uint256"}],"name":"createAccount","outputs":[{"name":"ret","type":"address"}],"stateMutability":"nonpayable","type":"function"}
]`

const AccountABI = `[
{"inputs":[{"name":"dest","type":"address"},{"name":"value","type":"uint256"},{"name":"func","type":"bytes"}],"name":"execute","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

type parsedABI struct {
	once sync.Once
	abi  abi.ABI
	err  error
	raw  string
}

func (p *parsedABI) get() (abi.ABI, error) {
	p.once.Do(func() {
		p.abi, p.err = abi.JSON(strings.NewReader(p.raw))
	})
	return p.abi, p.err
}

var (
	entryPointABI = &parsedABI{raw: EntryPointABI}
	factoryABI    = &parsedABI{raw: FactoryABI}
	accountABI    = &parsedABI{raw: AccountABI}
)

// ExecuteCalldata encodes SimpleAccount.execute(dest, value, func).
func ExecuteCalldata(call Call) ([]byte, error) {
	parsed, err := accountABI.get()
	if err != nil {
		return nil, err
	}
	return parsed.Pack("execute", call.To, call.valueOrZero(), call.Data)
}
