package embedded

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/constants"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/securefile"
)

var (
	ErrNoWallet   = errors.New("embedded wallet not found")
	validOwnerKey = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
)

// Store keeps one sealed wallet file per user under Dir.
type Store struct {
	Dir string
	Opt securefile.Options
}

func NewStore(dataDir string) *Store {
	return &Store{
		Dir: filepath.Join(dataDir, constants.WalletDir),
		Opt: securefile.Options{
			// keep identical for read + write
			AAD: []byte(constants.EmbeddedWalletAAD),
		},
	}
}

func (s *Store) path(userID string) (string, error) {
	if !validOwnerKey.MatchString(userID) {
		return "", errors.Newf("invalid user id %q", userID)
	}
	return filepath.Join(s.Dir, userID+".json"), nil
}

func (s *Store) Exists(userID string) bool {
	p, err := s.path(userID)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Load opens the user's wallet with password.
func (s *Store) Load(userID string, password []byte) (*Wallet, error) {
	p, err := s.path(userID)
	if err != nil {
		return nil, err
	}
	w, err := securefile.ReadEncryptedJSON[Wallet](p, password, s.Opt)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoWallet
		}
		return nil, errors.Wrapf(err, "load wallet %s", p)
	}
	if _, err := w.privateKey(); err != nil {
		return nil, err
	}
	return &w, nil
}

// Ensure loads the user's wallet, creating and sealing a new one when missing and create is set.
func (s *Store) Ensure(userID string, password []byte, create bool) (*Wallet, bool, error) {
	w, err := s.Load(userID, password)
	if err == nil {
		return w, false, nil
	}
	if !errors.Is(err, ErrNoWallet) || !create {
		return nil, false, err
	}

	nw, err := NewMnemonicWallet()
	if err != nil {
		return nil, false, err
	}
	p, err := s.path(userID)
	if err != nil {
		return nil, false, err
	}
	if err := securefile.WriteEncryptedJSON(p, *nw, password, s.Opt); err != nil {
		return nil, false, err
	}
	log.Info("created embedded wallet", "user", userID, "address", nw.AddressHex)
	return nw, true, nil
}
