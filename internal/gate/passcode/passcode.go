// Package passcode authenticates against a bcrypt-hashed passcode stored in
// the config directory.
package passcode

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"locktodo/internal/gate"
)

// MinLength is the shortest passcode Set accepts.
const MinLength = 4

var (
	// ErrTooShort is returned by Set for passcodes under MinLength.
	ErrTooShort = fmt.Errorf("passcode must be at least %d characters", MinLength)

	// ErrMismatch is returned by Verify when the passcode is wrong.
	ErrMismatch = errors.New("passcode did not match")

	// ErrNotSet is returned by Verify when no passcode is stored.
	ErrNotSet = errors.New("no passcode set (run: locktodo passcode)")
)

// Authenticator checks a prompted passcode against the stored hash.
type Authenticator struct {
	path   string
	prompt gate.Prompter
}

// New creates an Authenticator reading the hash at path and asking for the
// passcode through prompt.
func New(path string, prompt gate.Prompter) *Authenticator {
	return &Authenticator{path: path, prompt: prompt}
}

// Authenticate implements gate.Authenticator. It is unsupported until a
// passcode has been set.
func (a *Authenticator) Authenticate(ctx context.Context, prompt string) (gate.Result, error) {
	if !IsSet(a.path) {
		return gate.Result{Unsupported: true, Reason: ErrNotSet.Error()}, nil
	}

	code, err := a.prompt(ctx, prompt)
	if err != nil {
		return gate.Result{}, fmt.Errorf("read passcode: %w", err)
	}

	if err := Verify(a.path, code); err != nil {
		if errors.Is(err, ErrMismatch) {
			return gate.Result{Reason: err.Error()}, nil
		}
		return gate.Result{}, err
	}
	return gate.Result{Success: true}, nil
}

// IsSet reports whether a passcode hash exists at path.
func IsSet(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Verify compares code with the hash at path.
func Verify(path, code string) error {
	hash, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotSet
		}
		return fmt.Errorf("read passcode: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(string(hash))), []byte(code))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	if err != nil {
		return fmt.Errorf("invalid passcode file: %w", err)
	}
	return nil
}

// Set hashes code and writes it to path with mode 0600, replacing any
// previous passcode.
func Set(path, code string) error {
	if len(code) < MinLength {
		return ErrTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash passcode: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, append(hash, '\n'), 0600)
}

// Clear removes the passcode. Clearing an unset passcode is not an error.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove passcode: %w", err)
	}
	return nil
}
