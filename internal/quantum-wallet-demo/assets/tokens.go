package assets

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/constants"
)

var ErrUnknownToken = errors.New("no token configured for network")

const (
	BaseUSDC        = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	BaseSepoliaUSDC = "0x036CbD53842c5426634e7929541eC2318f3dCF7e"
)

type Token struct {
	Symbol   string         `json:"symbol"`
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
}

// TokenTable maps a network name to its USDC deployment.
type TokenTable struct {
	usdc map[string]Token
}

func DefaultUSDCAddresses() map[string]string {
	return map[string]string{
		constants.NetworkBase:        BaseUSDC,
		constants.NetworkBaseSepolia: BaseSepoliaUSDC,
	}
}

// NewTokenTable validates and canonicalizes a network -> USDC address map.
func NewTokenTable(usdcByNetwork map[string]string) (*TokenTable, error) {
	t := &TokenTable{usdc: make(map[string]Token, len(usdcByNetwork))}
	for network, raw := range usdcByNetwork {
		key := strings.ToLower(strings.TrimSpace(network))
		if key == "" {
			return nil, errors.New("token table has empty network key")
		}
		addr := strings.TrimSpace(raw)
		if !common.IsHexAddress(addr) {
			return nil, errors.Newf("token table: invalid USDC address %q for %s", raw, key)
		}
		t.usdc[key] = Token{
			Symbol:   "USDC",
			Address:  common.HexToAddress(addr),
			Decimals: constants.USDCDecimals,
		}
	}
	return t, nil
}

func (t *TokenTable) USDCFor(network string) (Token, error) {
	tok, ok := t.usdc[strings.ToLower(strings.TrimSpace(network))]
	if !ok {
		return Token{}, errors.Wrapf(ErrUnknownToken, "%q", network)
	}
	return tok, nil
}
