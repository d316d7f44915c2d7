package securefile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/securefile"
)

type payload struct {
	Address  string `json:"address"`
	Mnemonic string `json:"mnemonic"`
}

// cheap KDF so tests stay fast
var testOpts = securefile.Options{
	KDF: securefile.KDFParams{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32},
	AAD: []byte("test:v1"),
}

func TestEncryptedJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wallet.json")
	in := payload{Address: "0xabc", Mnemonic: "test test test"}

	require.NoError(t, securefile.WriteEncryptedJSON(path, in, []byte("correct horse"), testOpts))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "test test test")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out, err := securefile.ReadEncryptedJSON[payload](path, []byte("correct horse"), testOpts)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadEncryptedJSON_Failures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.json")
	require.NoError(t, securefile.WriteEncryptedJSON(path, payload{Address: "0x1"}, []byte("pw-123456"), testOpts))

	tests := []struct {
		name     string
		password []byte
		opts     securefile.Options
		wantIs   error
	}{
		{name: "wrong password", password: []byte("pw-654321"), opts: testOpts, wantIs: securefile.ErrInvalidPasswordOrCorrupt},
		{name: "wrong aad", password: []byte("pw-123456"), opts: securefile.Options{KDF: testOpts.KDF, AAD: []byte("other")}, wantIs: securefile.ErrInvalidPasswordOrCorrupt},
		{name: "empty password", password: nil, opts: testOpts},
		{name: "zeroed password", password: make([]byte, 8), opts: testOpts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := securefile.ReadEncryptedJSON[payload](path, tt.password, tt.opts)
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestPlainJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b.json")
	require.NoError(t, securefile.WriteJSON(path, map[string]int{"x": 1}, 0o600, 0o700))

	out, err := securefile.ReadJSON[map[string]int](path)
	require.NoError(t, err)
	assert.Equal(t, 1, out["x"])

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestQaEnvFolder(t *testing.T) {
	tests := []struct {
		env     string
		want    string
		wantErr bool
	}{
		{env: "", want: ""},
		{env: "production", want: ""},
		{env: "local", want: "local"},
		{env: "Dev", want: "develop"},
		{env: "staging", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("QA_ENV", tt.env)
			got, err := securefile.QaEnvFolder()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDataDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SNAP_REAL_HOME", home)
	t.Setenv("QA_ENV", "local")

	dir, err := securefile.DataDir("quantum-wallet-demo")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "quantum-wallet-demo", "local"), dir)
}
