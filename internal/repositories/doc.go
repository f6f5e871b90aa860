// Package repositories implements SQLite persistence for OAuth tokens.
//
// [TokenRepository] keeps one row per client application in the tokens table. Saving is an upsert
// keyed on client_id, so a session's refresh hook can persist every renewal (and any rotated refresh
// token) without checking what is already stored. Saving a record with an empty refresh token keeps
// the stored one.
//
// Every renewal attempt can also be appended to refresh_events; `spotkit status` reads the most recent ones.
//
// Schema changes live in internal/shared/sql and are applied by [shared.RunMigrations].
package repositories
