package wtypes

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrNotExportable = errors.New("private key is not exportable")

// Wallet is the unified interface for any EOA-like signer we expose.
//   - SignHash signs a 32-byte digest and returns a 65-byte signature (R || S || V),
//     where V is 0/1 as produced by go-ethereum's crypto.Sign.
//   - ExportPrivateKey MAY return ErrNotExportable.
type Wallet interface {
	Address() common.Address
	SignHash(ctx context.Context, digest32 []byte) ([]byte, error)
	ExportPrivateKey(ctx context.Context) (*ecdsa.PrivateKey, error)
}

// EIP191Hash is the personal_sign digest of msg.
func EIP191Hash(msg []byte) []byte {
	prefix := "\x19Ethereum Signed Message:\n" + strconv.Itoa(len(msg))
	return crypto.Keccak256([]byte(prefix), msg)
}

// PersonalSign signs msg with the EIP-191 prefix and returns a signature with V in {27,28}.
func PersonalSign(ctx context.Context, w Wallet, msg []byte) ([]byte, error) {
	if w == nil {
		return nil, errors.New("nil wallet")
	}
	sig, err := w.SignHash(ctx, EIP191Hash(msg))
	if err != nil {
		return nil, err
	}
	if len(sig) != crypto.SignatureLength {
		return nil, fmt.Errorf("unexpected signature length %d", len(sig))
	}
	// OpenZeppelin / viem expect 27/28
	if sig[64] < 27 {
		sig[64] += 27
	}
	return sig, nil
}

// RecoverPersonalSigner returns the address that produced sig over msg.
func RecoverPersonalSigner(msg, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("unexpected signature length %d", len(sig))
	}
	normalized := append([]byte{}, sig...)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	pub, err := crypto.SigToPub(EIP191Hash(msg), normalized)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "recover signer")
	}
	return crypto.PubkeyToAddress(*pub), nil
}
