package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/server"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultRedirectURI is used when no redirect URI is configured.
const DefaultRedirectURI = "http://127.0.0.1:5173/oauth2callback"

// ProviderOpts configures a [Provider].
type ProviderOpts struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Endpoint     oauth2.Endpoint // defaults to Google's endpoint
	Store        Store
	Logger       *log.Logger
	Output       io.Writer          // where the authorization URL is printed; defaults to stdout
	OpenBrowser  func(string) error // defaults to [shared.OpenBrowser]
	Timeout      time.Duration      // bounds the callback wait; 0 waits until ctx is done
	HTTPClient   *http.Client       // used for token exchange and refresh
}

// Provider produces authorized HTTP clients, running the browser consent flow when
// no usable token is stored.
type Provider struct {
	config      *oauth2.Config
	store       Store
	logger      *log.Logger
	output      io.Writer
	openBrowser func(string) error
	timeout     time.Duration
	httpClient  *http.Client
}

// NewProvider creates a Provider. Client id and secret are required.
func NewProvider(opts ProviderOpts) (*Provider, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, shared.ErrMissingCredentials
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: no token store configured", shared.ErrInvalidConfig)
	}

	redirect := opts.RedirectURI
	if redirect == "" {
		redirect = DefaultRedirectURI
	}
	if _, err := url.Parse(redirect); err != nil {
		return nil, fmt.Errorf("%w: redirect uri: %v", shared.ErrInvalidConfig, err)
	}

	endpoint := opts.Endpoint
	if endpoint.AuthURL == "" && endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}

	p := &Provider{
		config: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  redirect,
			Scopes:       []string{services.YouTubeScope},
		},
		store:       opts.Store,
		logger:      opts.Logger,
		output:      opts.Output,
		openBrowser: opts.OpenBrowser,
		timeout:     opts.Timeout,
		httpClient:  opts.HTTPClient,
	}
	if p.logger == nil {
		p.logger = shared.NewLogger(nil)
	}
	if p.output == nil {
		p.output = os.Stdout
	}
	if p.openBrowser == nil {
		p.openBrowser = shared.OpenBrowser
	}
	return p, nil
}

// Config returns the underlying OAuth2 configuration.
func (p *Provider) Config() *oauth2.Config {
	return p.config
}

func (p *Provider) withClient(ctx context.Context) context.Context {
	if p.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

// Stored returns the saved token when it is usable, or [shared.ErrNoToken].
//
// A token with neither an access token nor a refresh token, or one that cannot be
// decoded, counts as absent.
func (p *Provider) Stored(ctx context.Context) (*oauth2.Token, error) {
	token, err := p.store.Load(ctx)
	switch {
	case errors.Is(err, shared.ErrInvalidToken):
		p.logger.Warn("ignoring unreadable token", "error", err)
		return nil, shared.ErrNoToken
	case err != nil:
		return nil, err
	case token.AccessToken == "" && token.RefreshToken == "":
		return nil, shared.ErrNoToken
	}
	return token, nil
}

// TokenSource returns a source that refreshes automatically and writes refreshed
// tokens back to the store. It runs [Provider.Authorize] when nothing usable is stored.
func (p *Provider) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	token, err := p.Stored(ctx)
	if errors.Is(err, shared.ErrNoToken) {
		token, err = p.Authorize(ctx)
	}
	if err != nil {
		return nil, err
	}

	base := p.config.TokenSource(p.withClient(ctx), token)
	persisting := &persistingSource{
		base:  base,
		store: p.store,
		ctx:   ctx,
		last:  token.AccessToken,
		onErr: func(err error) { p.logger.Warn("failed to persist refreshed token", "error", err) },
	}
	return oauth2.ReuseTokenSource(token, persisting), nil
}

// Client returns an HTTP client authorized with [Provider.TokenSource].
func (p *Provider) Client(ctx context.Context) (*http.Client, error) {
	ts, err := p.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(p.withClient(ctx), ts), nil
}

// AuthCodeURL builds the consent URL for state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Authorize runs the browser consent flow and stores the resulting token.
//
// A one-shot HTTP server listens on the redirect URI's host and port. Port 0 picks a
// free port and rewrites the redirect URI to match.
func (p *Provider) Authorize(ctx context.Context) (*oauth2.Token, error) {
	redirect, err := url.Parse(p.config.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("%w: redirect uri: %v", shared.ErrInvalidConfig, err)
	}

	listener, err := listen(ctx, redirect)
	if err != nil {
		return nil, err
	}
	defer listener.Close()

	if redirect.Port() == "0" {
		port := listener.Addr().(*net.TCPAddr).Port
		redirect.Host = net.JoinHostPort(redirect.Hostname(), strconv.Itoa(port))
		p.config.RedirectURL = redirect.String()
	}

	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	handler := server.NewOAuthHandler(p.withClient(ctx), p.config, state, callbackPath(redirect))
	router := server.NewBasicRouter()
	router.Use(server.LogRequests(p.logger))
	router.Handler(handler)

	srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := p.AuthCodeURL(state)
	fmt.Fprintf(p.output, "\nAuthorize this app by visiting:\n%s\n\n", authURL)
	if err := p.openBrowser(authURL); err != nil {
		p.logger.Debug("could not open browser", "error", err)
	}
	p.logger.Info("waiting for OAuth callback", "redirect_uri", p.config.RedirectURL)

	select {
	case result := <-handler.Result():
		if err := result.Error(); err != nil {
			return nil, err
		}
		if err := p.store.Save(ctx, result.Token); err != nil {
			return nil, fmt.Errorf("failed to save token: %w", err)
		}
		p.logger.Info("saved OAuth token")
		return result.Token, nil
	case err := <-serveErr:
		return nil, fmt.Errorf("%w: callback server: %v", shared.ErrAuthFailed, err)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: no OAuth callback within %s", shared.ErrTimeout, p.timeout)
		}
		return nil, ctx.Err()
	}
}

func listen(ctx context.Context, redirect *url.URL) (net.Listener, error) {
	host := redirect.Hostname()
	if host == "" || host == "localhost" {
		host = "127.0.0.1"
	}
	port := redirect.Port()
	if port == "" {
		port = "80"
		if redirect.Scheme == "https" {
			port = "443"
		}
	}

	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return nil, fmt.Errorf("%w: cannot listen for OAuth callback: %v", shared.ErrAuthFailed, err)
	}
	return l, nil
}

func callbackPath(redirect *url.URL) string {
	if redirect.Path == "" {
		return "/"
	}
	return redirect.Path
}
