package helpers_test

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/helpers"
)

func newPrompter(input string, pw string, pwErr error) (*helpers.Prompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &helpers.Prompter{
		In:  bufio.NewReader(strings.NewReader(input)),
		Out: out,
		ReadPW: func(int) ([]byte, error) {
			return []byte(pw), pwErr
		},
	}, out
}

func TestPromptCredentials(t *testing.T) {
	p, out := newPrompter("\n", "s3cret-pass", nil)

	email, pw, err := p.PromptCredentials("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)
	assert.Equal(t, "s3cret-pass", string(pw))
	assert.Contains(t, out.String(), "Email [alice@example.com]: ")
}

func TestPromptCredentials_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   string
		pw    string
		pwErr error
	}{
		{name: "no email", input: "\n", pw: "s3cret-pass"},
		{name: "short password", input: "bob@example.com\n", pw: "short"},
		{name: "space in password", input: "bob@example.com\n", pw: "has space 123"},
		{name: "terminal error", input: "bob@example.com\n", pwErr: errors.New("not a tty")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newPrompter(tt.input, tt.pw, tt.pwErr)
			_, _, err := p.PromptCredentials(tt.def)
			assert.Error(t, err)
		})
	}
}

func TestZeroBytes(t *testing.T) {
	b := []byte("secret")
	helpers.ZeroBytes(b)
	assert.Equal(t, make([]byte, 6), b)
}
