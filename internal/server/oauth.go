package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/mixtape/internal/shared"
	"golang.org/x/oauth2"
)

const successPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>mixtape</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 20vh">
<h1 style="color: #FF0033">mixtape is authorized</h1>
<p>Return to the terminal; this tab can be closed.</p>
</body>
</html>
`

// OAuthResult contains the result of an OAuth authorization flow.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler handles OAuth2 callback requests for authorization code flow.
// Implements the Handler interface for registration with a Router.
type OAuthHandler struct {
	ctx        context.Context
	config     *oauth2.Config
	state      string
	path       string
	resultChan chan OAuthResult
	once       sync.Once
	done       bool
	mu         sync.Mutex
}

// NewOAuthHandler creates a new OAuth handler serving the callback at path.
//
// ctx bounds the code exchange. The state token should be random for CSRF protection.
func NewOAuthHandler(ctx context.Context, config *oauth2.Config, state, path string) *OAuthHandler {
	if path == "" {
		path = "/"
	}
	return &OAuthHandler{
		ctx:        ctx,
		config:     config,
		state:      state,
		path:       path,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP handles the OAuth callback request.
//
// An error parameter, a state mismatch, or a failed exchange ends the flow. A request
// without a code is rejected but the handler keeps waiting for the real callback.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != h.path {
		http.NotFound(w, r)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	if errParam := q.Get("error"); errParam != "" {
		h.finish(OAuthResult{err: fmt.Errorf("%w: %s %s", shared.ErrAuthFailed, errParam, q.Get("error_description"))})
		http.Error(w, "OAuth error: "+errParam, http.StatusBadRequest)
		return
	}

	code := q.Get("code")
	if code == "" {
		http.Error(w, "Missing code", http.StatusBadRequest)
		return
	}

	if q.Get("state") != h.state {
		h.finish(OAuthResult{err: fmt.Errorf("%w: invalid state parameter", shared.ErrAuthFailed)})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(h.ctx, code)
	if err != nil {
		h.finish(OAuthResult{err: fmt.Errorf("%w: token exchange failed: %v", shared.ErrAuthFailed, err)})
		http.Error(w, "OAuth exchange failed", http.StatusInternalServerError)
		return
	}

	h.finish(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// finish marks the flow done and publishes its result. Callers hold h.mu.
func (h *OAuthHandler) finish(result OAuthResult) {
	h.done = true
	h.Send(result)
}

// Send sends the OAuth result through the channel (only once).
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving OAuth flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}
