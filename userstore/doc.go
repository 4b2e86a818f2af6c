// Package userstore provides implementations of the sessiongate.UserStore
// lookup capability: a seeded in-memory store for demos and tests, and a
// pgx-backed store for deployments that keep accounts in Postgres.
package userstore
