// Package securefile reads and writes JSON files, optionally sealed with a password.
// Sealed files use Argon2id for the KDF and XChaCha20-Poly1305 for AEAD. All writes are atomic.
package securefile

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// ErrInvalidPasswordOrCorrupt is returned when decryption fails.
var ErrInvalidPasswordOrCorrupt = errors.New("invalid password or corrupted file")

const envelopeVersion = 2

// Envelope is the on-disk form of a sealed file.
type Envelope struct {
	Version int    `json:"version"`
	Mode    string `json:"mode"`

	ArgonTime    uint32 `json:"argon_time"`
	ArgonMemory  uint32 `json:"argon_memory_kib"`
	ArgonThreads uint8  `json:"argon_threads"`
	ArgonKeyLen  uint32 `json:"argon_key_len"`
	SaltB64      string `json:"salt_b64"`

	NonceB64 string `json:"nonce_b64"`
	CTB64    string `json:"ct_b64"`
}

type KDFParams struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
}

var DefaultKDF = KDFParams{
	Time:    2,
	Memory:  64 * 1024,
	Threads: 1,
	KeyLen:  32,
}

// Options controls encryption behavior.
type Options struct {
	KDF KDFParams

	FilePerm      os.FileMode
	DirectoryPerm os.FileMode

	// AAD binds the ciphertext to a purpose; it must match on read.
	AAD []byte
}

func defaultOptions() Options {
	return Options{
		KDF:           DefaultKDF,
		FilePerm:      0o600,
		DirectoryPerm: 0o700,
	}
}

func mergeOptions(opt ...Options) Options {
	o := defaultOptions()
	if len(opt) == 0 {
		return o
	}
	in := opt[0]
	if in.KDF.KeyLen != 0 {
		o.KDF = in.KDF
	}
	if in.FilePerm != 0 {
		o.FilePerm = in.FilePerm
	}
	if in.DirectoryPerm != 0 {
		o.DirectoryPerm = in.DirectoryPerm
	}
	if in.AAD != nil {
		o.AAD = in.AAD
	}
	return o
}

// Seal encrypts plain under a key derived from password.
func Seal(plain, password []byte, opt ...Options) (Envelope, error) {
	o := mergeOptions(opt...)
	if len(password) == 0 || isAllZero(password) {
		return Envelope{}, errors.New("securefile: empty password")
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return Envelope{}, fmt.Errorf("rand salt: %w", err)
	}

	key := argon2.IDKey(password, salt, o.KDF.Time, o.KDF.Memory, o.KDF.Threads, o.KDF.KeyLen)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return Envelope{}, fmt.Errorf("aead: %w", err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return Envelope{}, fmt.Errorf("rand nonce: %w", err)
	}

	return Envelope{
		Version:      envelopeVersion,
		Mode:         "password",
		ArgonTime:    o.KDF.Time,
		ArgonMemory:  o.KDF.Memory,
		ArgonThreads: o.KDF.Threads,
		ArgonKeyLen:  o.KDF.KeyLen,
		SaltB64:      base64.StdEncoding.EncodeToString(salt),
		NonceB64:     base64.StdEncoding.EncodeToString(nonce),
		CTB64:        base64.StdEncoding.EncodeToString(aead.Seal(nil, nonce, plain, o.AAD)),
	}, nil
}

// Open decrypts an envelope produced by Seal.
func Open(env Envelope, password []byte, opt ...Options) ([]byte, error) {
	o := mergeOptions(opt...)
	if len(password) == 0 || isAllZero(password) {
		return nil, errors.New("securefile: empty password")
	}
	if env.Version != envelopeVersion || !strings.EqualFold(env.Mode, "password") {
		return nil, fmt.Errorf("unsupported envelope v%d mode %q", env.Version, env.Mode)
	}

	salt, err := base64.StdEncoding.DecodeString(env.SaltB64)
	if err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(env.NonceB64)
	if err != nil {
		return nil, fmt.Errorf("decode nonce: %w", err)
	}
	ct, err := base64.StdEncoding.DecodeString(env.CTB64)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}

	key := argon2.IDKey(password, salt, env.ArgonTime, env.ArgonMemory, env.ArgonThreads, env.ArgonKeyLen)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("aead: %w", err)
	}

	plain, err := aead.Open(nil, nonce, ct, o.AAD)
	if err != nil {
		return nil, ErrInvalidPasswordOrCorrupt
	}
	return plain, nil
}

// WriteEncryptedJSON seals v with password and writes it atomically to path.
func WriteEncryptedJSON[T any](path string, v T, password []byte, opt ...Options) error {
	o := mergeOptions(opt...)

	plain, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	defer zeroBytes(plain)

	env, err := Seal(plain, password, o)
	if err != nil {
		return err
	}
	return WriteJSON(path, env, o.FilePerm, o.DirectoryPerm)
}

// ReadEncryptedJSON reads and opens a file written by WriteEncryptedJSON.
func ReadEncryptedJSON[T any](path string, password []byte, opt ...Options) (T, error) {
	var zero T

	env, err := ReadJSON[Envelope](path)
	if err != nil {
		return zero, err
	}

	plain, err := Open(env, password, opt...)
	if err != nil {
		return zero, err
	}
	defer zeroBytes(plain)

	var out T
	if err := json.Unmarshal(plain, &out); err != nil {
		return zero, fmt.Errorf("unmarshal json: %w", err)
	}
	return out, nil
}

// WriteJSON marshals v as pretty JSON and writes it atomically to path.
func WriteJSON[T any](path string, v T, permFile, permDir os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), permDir); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	return AtomicWriteFile(path, b, permFile)
}

// ReadJSON reads and unmarshals JSON from path into T.
func ReadJSON[T any](path string) (T, error) {
	var zero T
	b, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("read file: %w", err)
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return zero, fmt.Errorf("unmarshal json: %w", err)
	}
	return out, nil
}

func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	_ = os.Remove(tmp)

	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// DataDir returns <UserConfigDir>/<app>[/<env>] where env comes from QA_ENV.
func DataDir(app string) (string, error) {
	if app == "" {
		return "", errors.New("app must not be empty")
	}
	envFolder, err := QaEnvFolder()
	if err != nil {
		return "", err
	}

	base := os.Getenv("SNAP_REAL_HOME")
	if base != "" {
		base = filepath.Join(base, ".config")
	} else if base, err = os.UserConfigDir(); err != nil {
		return "", fmt.Errorf("UserConfigDir: %w", err)
	}

	dir := filepath.Join(base, app)
	if envFolder != "" {
		dir = filepath.Join(dir, envFolder)
	}
	return dir, nil
}

func QaEnvFolder() (string, error) {
	raw := strings.TrimSpace(os.Getenv("QA_ENV"))
	switch strings.ToLower(raw) {
	case "", "prod", "production":
		return "", nil
	case "local":
		return "local", nil
	case "dev", "develop", "development":
		return "develop", nil
	default:
		return "", fmt.Errorf("invalid QA_ENV %q (allowed: local, develop, empty)", raw)
	}
}

func isAllZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
