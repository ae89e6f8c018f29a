package googleid

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	// DefaultCallbackTimeout bounds the wait for the browser redirect.
	DefaultCallbackTimeout = 5 * time.Minute

	// DefaultExchangeTimeout bounds the code-for-token exchange.
	DefaultExchangeTimeout = 30 * time.Second

	shutdownTimeout = 5 * time.Second
)

// ErrCallbackTimeout is returned when the browser never redirects back.
var ErrCallbackTimeout = errors.New("oauth callback timed out")

// Listen binds the first free localhost port in [start, start+attempts).
// A start of 0 picks any free port.
func Listen(start, attempts int) (net.Listener, error) {
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		l, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", start+i))
		if err == nil {
			return l, nil
		}
		if start == 0 {
			return nil, err
		}
	}
	return nil, fmt.Errorf("no available port found")
}

// Flow runs the installed-app authorization code flow with PKCE, receiving
// the redirect on Listener.
type Flow struct {
	Config          *oauth2.Config
	Listener        net.Listener
	CallbackTimeout time.Duration
	ExchangeTimeout time.Duration
}

// RedirectURL is the callback address handed to the authorization server.
func (f *Flow) RedirectURL() string {
	port := f.Listener.Addr().(*net.TCPAddr).Port
	return fmt.Sprintf("http://localhost:%d/callback", port)
}

// Run serves the callback, calls open with the consent URL and waits for the
// redirect. The code is exchanged for a token before returning. The listener
// is closed when Run returns.
func (f *Flow) Run(ctx context.Context, open func(authURL string)) (*oauth2.Token, error) {
	conf := *f.Config
	conf.RedirectURL = f.RedirectURL()

	verifier := oauth2.GenerateVerifier()
	state := oauth2.GenerateVerifier()
	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	fail := func(err error) {
		select {
		case errCh <- err:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "State mismatch", http.StatusBadRequest)
			fail(errors.New("oauth callback state mismatch"))
			return
		case q.Get("error") != "":
			http.Error(w, "Access denied", http.StatusForbidden)
			fail(fmt.Errorf("authorization denied: %s", q.Get("error")))
			return
		case q.Get("code") == "":
			http.Error(w, "No code in callback", http.StatusBadRequest)
			fail(errors.New("no code in callback"))
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Signed in to locktodo</h1><p>You may close this window.</p></body></html>")
		select {
		case codeCh <- q.Get("code"):
		default:
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(f.Listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fail(err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	open(authURL)

	timeout := f.CallbackTimeout
	if timeout == 0 {
		timeout = DefaultCallbackTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-timer.C:
		return nil, ErrCallbackTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	exchangeTimeout := f.ExchangeTimeout
	if exchangeTimeout == 0 {
		exchangeTimeout = DefaultExchangeTimeout
	}
	exchangeCtx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	token, err := conf.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return token, nil
}
