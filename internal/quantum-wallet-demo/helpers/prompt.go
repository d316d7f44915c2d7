package helpers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const MinPasswordLen = 8

// Prompter reads answers from a terminal.
type Prompter struct {
	In     *bufio.Reader
	Out    io.Writer
	ReadPW func(fd int) ([]byte, error)
	FD     int
}

func NewTerminalPrompter() *Prompter {
	return &Prompter{
		In:     bufio.NewReader(os.Stdin),
		Out:    os.Stderr,
		ReadPW: term.ReadPassword,
		FD:     int(os.Stdin.Fd()),
	}
}

func (p *Prompter) PromptLineWithDefault(label, def string) string {
	if def != "" {
		_, _ = fmt.Fprintf(p.Out, "%s [%s]: ", label, def)
	} else {
		_, _ = fmt.Fprintf(p.Out, "%s: ", label)
	}

	line, err := p.In.ReadString('\n')
	if err != nil && line == "" {
		return def
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

func (p *Prompter) PromptPassword(prompt string) ([]byte, error) {
	_, _ = fmt.Fprint(p.Out, prompt)

	pw, err := p.ReadPW(p.FD)
	_, _ = fmt.Fprintln(p.Out)

	if err != nil {
		ZeroBytes(pw)
		return nil, fmt.Errorf("password input failed: %w", err)
	}
	if err := ValidatePassword(pw); err != nil {
		ZeroBytes(pw)
		return nil, err
	}
	return pw, nil
}

// PromptCredentials asks for an email (with default) and a password.
func (p *Prompter) PromptCredentials(defaultEmail string) (string, []byte, error) {
	email := p.PromptLineWithDefault("Email", defaultEmail)
	if strings.TrimSpace(email) == "" {
		return "", nil, fmt.Errorf("email cannot be empty")
	}
	pw, err := p.PromptPassword("Password: ")
	if err != nil {
		return "", nil, err
	}
	return email, pw, nil
}

func ValidatePassword(pw []byte) error {
	if len(pw) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}
	for _, b := range pw {
		if !IsAllowedPasswordChar(b) {
			return fmt.Errorf("password contains invalid characters (use letters, numbers, and special characters only)")
		}
	}
	return nil
}

// IsAllowedPasswordChar accepts printable ASCII except space.
func IsAllowedPasswordChar(b byte) bool {
	return b > ' ' && b <= '~'
}

func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
