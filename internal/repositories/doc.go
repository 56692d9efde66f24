// Package repositories implements SQLite persistence for the stored credential.
//
// Key Implementations:
//   - [CredentialRepository] : the single stored OAuth2 token, usable as a token store
//
// It expects a database opened with [shared.OpenDatabase] so the schema is migrated.
package repositories
