// Package server hosts the loopback callback used by the OAuth login flow.
//
// [OAuthHandler] accepts the authorization-code redirect, checks state, exchanges the
// code and publishes exactly one [OAuthResult]. [BasicRouter] mounts it on the redirect
// path behind [Middleware] such as [LogRequests].
//
// The server lives only for the duration of one login: it starts on the redirect URI's
// host and port and is shut down once a result arrives.
package server
