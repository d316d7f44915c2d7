// Package embedded provides the user's embedded EOA: a BIP-39 mnemonic derived key,
// custodied on disk in a password-sealed file and created on first login.
package embedded

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcutil/hdkeychain"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

// DefaultDerivationPath is m/44'/60'/0'/0/0.
var DefaultDerivationPath = []uint32{
	hdkeychain.HardenedKeyStart + 44,
	hdkeychain.HardenedKeyStart + 60,
	hdkeychain.HardenedKeyStart + 0,
	0,
	0,
}

const DefaultDerivationPathText = "m/44'/60'/0'/0/0"

var ErrInvalidMnemonic = errors.New("invalid mnemonic")

type Wallet struct {
	Version        int    `json:"version"`
	AddressHex     string `json:"address"`
	Mnemonic       string `json:"mnemonic"`
	DerivationPath string `json:"derivation_path"`
	PrivKeyHex     string `json:"priv_key_hex"`
	CreatedAt      string `json:"created_at,omitempty"`

	key *ecdsa.PrivateKey
}

// NewMnemonicWallet creates a wallet from a fresh 12-word mnemonic.
func NewMnemonicWallet() (*Wallet, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return nil, errors.Wrap(err, "mnemonic entropy")
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, errors.Wrap(err, "mnemonic")
	}
	return FromMnemonic(mnemonic)
}

// FromMnemonic derives the wallet at DefaultDerivationPath.
func FromMnemonic(mnemonic string) (*Wallet, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, errors.Wrap(err, "mnemonic seed")
	}

	key, err := deriveKey(seed, DefaultDerivationPath)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		Version:        1,
		AddressHex:     crypto.PubkeyToAddress(key.PublicKey).Hex(),
		Mnemonic:       mnemonic,
		DerivationPath: DefaultDerivationPathText,
		PrivKeyHex:     hexutil.Encode(crypto.FromECDSA(key)),
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		key:            key,
	}, nil
}

func deriveKey(seed []byte, path []uint32) (*ecdsa.PrivateKey, error) {
	node, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, errors.Wrap(err, "hd master key")
	}
	for _, idx := range path {
		node, err = node.Child(idx)
		if err != nil {
			return nil, errors.Wrapf(err, "derive child %d", idx)
		}
	}

	priv, err := node.ECPrivKey()
	if err != nil {
		return nil, errors.Wrap(err, "hd private key")
	}
	return crypto.ToECDSA(priv.Serialize())
}

func (w *Wallet) Address() common.Address {
	return common.HexToAddress(w.AddressHex)
}

func (w *Wallet) privateKey() (*ecdsa.PrivateKey, error) {
	if w.key != nil {
		return w.key, nil
	}
	b, err := hexutil.Decode(w.PrivKeyHex)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	k, err := crypto.ToECDSA(b)
	if err != nil {
		return nil, fmt.Errorf("to ecdsa: %w", err)
	}
	if crypto.PubkeyToAddress(k.PublicKey) != w.Address() {
		return nil, errors.New("stored key does not match wallet address")
	}
	w.key = k
	return k, nil
}

func (w *Wallet) ExportPrivateKey(ctx context.Context) (*ecdsa.PrivateKey, error) {
	_ = ctx
	return w.privateKey()
}

func (w *Wallet) SignHash(ctx context.Context, digest32 []byte) ([]byte, error) {
	_ = ctx

	if len(digest32) != 32 {
		return nil, fmt.Errorf("digest must be 32 bytes, got %d", len(digest32))
	}

	key, err := w.privateKey()
	if err != nil {
		return nil, err
	}
	return crypto.Sign(digest32, key)
}

// Forget drops the decrypted key material from memory.
func (w *Wallet) Forget() {
	w.key = nil
	w.PrivKeyHex = ""
	w.Mnemonic = ""
}
