package services

import (
	"net/http"

	"golang.org/x/time/rate"
)

// rateLimitedTransport waits on a shared limiter before every request.
type rateLimitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}

// WithRateLimit returns a shallow copy of client whose requests are limited to rps per second.
//
// A non-positive rps returns client unchanged.
func WithRateLimit(client *http.Client, rps float64) *http.Client {
	if rps <= 0 {
		return client
	}
	if client == nil {
		client = http.DefaultClient
	}

	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	limited := *client
	limited.Transport = &rateLimitedTransport{base: base, limiter: rate.NewLimiter(rate.Limit(rps), 1)}
	return &limited
}
