package testutil

import (
	"context"
	"sync"

	"locktodo/internal/gate"
)

// FakeAuthenticator replays scripted results, repeating the last one once
// the script runs out. An empty script always succeeds.
type FakeAuthenticator struct {
	mu      sync.Mutex
	Results []gate.Result
	Errs    []error
	calls   int
	prompts []string
}

// NewFakeAuthenticator creates a FakeAuthenticator with the given script.
func NewFakeAuthenticator(results ...gate.Result) *FakeAuthenticator {
	return &FakeAuthenticator{Results: results}
}

// Authenticate implements gate.Authenticator.
func (f *FakeAuthenticator) Authenticate(ctx context.Context, prompt string) (gate.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)

	if i < len(f.Errs) && f.Errs[i] != nil {
		return gate.Result{}, f.Errs[i]
	}
	if len(f.Results) == 0 {
		return gate.Result{Success: true}, nil
	}
	if i >= len(f.Results) {
		i = len(f.Results) - 1
	}
	return f.Results[i], nil
}

// Calls returns how many times Authenticate ran.
func (f *FakeAuthenticator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Prompts returns the prompts passed to Authenticate.
func (f *FakeAuthenticator) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}
