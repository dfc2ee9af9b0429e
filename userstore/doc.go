// Package userstore ships two implementations of the engine's
// UserStore collaborator: Postgres (pgx) for deployments and Memory for
// demos and tests.
package userstore
