package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/argon2"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/constants"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/securefile"
)

type userRecord struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	SaltB64       string    `json:"salt_b64"`
	VerifierB64   string    `json:"verifier_b64"`
	ArgonTime     uint32    `json:"argon_time"`
	ArgonMemory   uint32    `json:"argon_memory_kib"`
	ArgonThreads  uint8     `json:"argon_threads"`
	WalletAddress string    `json:"wallet_address,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type usersFile struct {
	Version int                   `json:"version"`
	Users   map[string]userRecord `json:"users"` // key = normalized email
}

type userIndex struct {
	path string
	kdf  securefile.KDFParams
	file usersFile
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func loadUserIndex(dataDir string, kdf securefile.KDFParams) (*userIndex, error) {
	idx := &userIndex{
		path: filepath.Join(dataDir, constants.UsersFile),
		kdf:  kdf,
		file: usersFile{Version: constants.SchemaV1, Users: map[string]userRecord{}},
	}

	f, err := securefile.ReadJSON[usersFile](idx.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return idx, nil
		}
		return nil, errors.Wrapf(err, "load users index %s", idx.path)
	}
	if f.Users != nil {
		idx.file.Users = f.Users
	}
	return idx, nil
}

func (idx *userIndex) save() error {
	return securefile.WriteJSON(idx.path, idx.file, constants.FilePerm, constants.DirectoryPerm)
}

func (idx *userIndex) lookup(email string) (userRecord, bool) {
	rec, ok := idx.file.Users[normalizeEmail(email)]
	return rec, ok
}

func (idx *userIndex) put(rec userRecord) {
	idx.file.Users[normalizeEmail(rec.Email)] = rec
}

func (idx *userIndex) newRecord(id, email string, password []byte) (userRecord, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return userRecord{}, errors.Wrap(err, "salt")
	}
	k := idx.kdf
	verifier := argon2.IDKey(password, salt, k.Time, k.Memory, k.Threads, k.KeyLen)
	return userRecord{
		ID:           id,
		Email:        normalizeEmail(email),
		SaltB64:      base64.StdEncoding.EncodeToString(salt),
		VerifierB64:  base64.StdEncoding.EncodeToString(verifier),
		ArgonTime:    k.Time,
		ArgonMemory:  k.Memory,
		ArgonThreads: k.Threads,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (rec userRecord) verify(password []byte) bool {
	salt, err := base64.StdEncoding.DecodeString(rec.SaltB64)
	if err != nil {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(rec.VerifierB64)
	if err != nil || len(want) == 0 {
		return false
	}
	got := argon2.IDKey(password, salt, rec.ArgonTime, rec.ArgonMemory, rec.ArgonThreads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}
