package embedded_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/ethwallet/embedded"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/ethwallet/wtypes"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/securefile"
)

const hardhatMnemonic = "test test test test test test test test test test test junk"

var hardhatAccount0 = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

func TestFromMnemonic_KnownVector(t *testing.T) {
	w, err := embedded.FromMnemonic(hardhatMnemonic)
	require.NoError(t, err)

	assert.Equal(t, hardhatAccount0, w.Address())
	assert.Equal(t, embedded.DefaultDerivationPathText, w.DerivationPath)

	key, err := w.ExportPrivateKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, hardhatAccount0, crypto.PubkeyToAddress(key.PublicKey))
}

func TestFromMnemonic_Invalid(t *testing.T) {
	_, err := embedded.FromMnemonic("not a real mnemonic phrase")
	assert.ErrorIs(t, err, embedded.ErrInvalidMnemonic)
}

func TestNewMnemonicWallet_SignsRecoverably(t *testing.T) {
	w, err := embedded.NewMnemonicWallet()
	require.NoError(t, err)

	digest := crypto.Keccak256([]byte("payload"))
	sig, err := w.SignHash(context.Background(), digest)
	require.NoError(t, err)
	require.Len(t, sig, 65)

	pub, err := crypto.SigToPub(digest, sig)
	require.NoError(t, err)
	assert.Equal(t, w.Address(), crypto.PubkeyToAddress(*pub))

	_, err = w.SignHash(context.Background(), []byte("short"))
	assert.Error(t, err)
}

func TestPersonalSign(t *testing.T) {
	w, err := embedded.FromMnemonic(hardhatMnemonic)
	require.NoError(t, err)

	sig, err := wtypes.PersonalSign(context.Background(), w, []byte("hello base"))
	require.NoError(t, err)
	assert.Contains(t, []byte{27, 28}, sig[64])

	signer, err := wtypes.RecoverPersonalSigner([]byte("hello base"), sig)
	require.NoError(t, err)
	assert.Equal(t, hardhatAccount0, signer)
}

func newTestStore(t *testing.T) *embedded.Store {
	t.Helper()
	s := embedded.NewStore(t.TempDir())
	s.Opt.KDF = securefile.KDFParams{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32}
	return s
}

func TestStore_Ensure(t *testing.T) {
	s := newTestStore(t)
	pw := []byte("password-1")

	_, _, err := s.Ensure("user-1", pw, false)
	assert.ErrorIs(t, err, embedded.ErrNoWallet)
	assert.False(t, s.Exists("user-1"))

	created, isNew, err := s.Ensure("user-1", pw, true)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.True(t, s.Exists("user-1"))

	loaded, isNew, err := s.Ensure("user-1", pw, true)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, created.Address(), loaded.Address())
	assert.Equal(t, created.Mnemonic, loaded.Mnemonic)

	_, err = s.Load("user-1", []byte("password-2"))
	assert.ErrorIs(t, err, securefile.ErrInvalidPasswordOrCorrupt)
}

func TestStore_RejectsPathTraversal(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load("../etc/passwd", []byte("password-1"))
	assert.Error(t, err)
	assert.False(t, s.Exists("../x"))
}

func TestForget(t *testing.T) {
	w, err := embedded.FromMnemonic(hardhatMnemonic)
	require.NoError(t, err)

	w.Forget()
	assert.Equal(t, hardhatAccount0, w.Address())
	_, err = w.SignHash(context.Background(), crypto.Keccak256([]byte("x")))
	assert.Error(t, err)
}
