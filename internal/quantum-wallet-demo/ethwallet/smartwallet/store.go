package smartwallet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/constants"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/securefile"
)

var ErrAccountNotCached = errors.New("smart account not cached")

// Account is one derived smart account. Users may edit the file by hand.
type Account struct {
	ChainID   uint64 `json:"chain_id"`
	Owner     string `json:"owner"`
	Factory   string `json:"factory"`
	Salt      string `json:"salt"`
	Address   string `json:"address"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type fileV1 struct {
	Version  int                `json:"version"`
	Accounts map[string]Account `json:"accounts"` // key = chainID/owner/factory/salt
}

// Store caches counterfactual smart-account addresses per chain.
type Store struct {
	Path string

	mu sync.Mutex
}

func NewStore(dataDir string) *Store {
	return &Store{Path: filepath.Join(dataDir, constants.SmartWalletFile)}
}

func accountKey(chainID uint64, owner, factory common.Address, salt string) string {
	return strings.ToLower(strconv.FormatUint(chainID, 10) + "/" + owner.Hex() + "/" + factory.Hex() + "/" + salt)
}

func (s *Store) loadAll() (map[string]Account, error) {
	f, err := securefile.ReadJSON[fileV1](s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]Account{}, nil
		}
		return nil, fmt.Errorf("smartwallet store %s: %w", s.Path, err)
	}
	if f.Accounts == nil {
		return map[string]Account{}, nil
	}
	return f.Accounts, nil
}

// Lookup returns the cached address, or ErrAccountNotCached.
func (s *Store) Lookup(chainID uint64, owner, factory common.Address, salt string) (common.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadAll()
	if err != nil {
		return common.Address{}, err
	}
	acc, ok := all[accountKey(chainID, owner, factory, salt)]
	if !ok || !common.IsHexAddress(acc.Address) {
		return common.Address{}, ErrAccountNotCached
	}
	return common.HexToAddress(acc.Address), nil
}

func (s *Store) Save(chainID uint64, owner, factory common.Address, salt string, address common.Address) error {
	if chainID == 0 {
		return errors.New("smart account requires chain_id")
	}
	if address == (common.Address{}) {
		return errors.New("smart account requires address")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadAll()
	if err != nil {
		return err
	}
	all[accountKey(chainID, owner, factory, salt)] = Account{
		ChainID:   chainID,
		Owner:     owner.Hex(),
		Factory:   factory.Hex(),
		Salt:      salt,
		Address:   address.Hex(),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	return securefile.WriteJSON(s.Path, fileV1{Version: constants.SchemaV1, Accounts: all}, constants.FilePerm, constants.DirectoryPerm)
}
