// Package auth obtains and keeps OAuth2 credentials for the YouTube Data API.
//
// [Provider.TokenSource] loads the token from a [Store] and falls back to the browser
// consent flow in [Provider.Authorize] when nothing usable is stored. Refreshed tokens
// are written back to the store.
//
// Two stores exist: [FileStore] (a JSON file) and repositories.CredentialRepository (a
// single SQLite row). The auth.store config key picks one.
package auth
