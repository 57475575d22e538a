// Package testutil provides in-memory fakes for the storage backends so
// pipeline tests run without Postgres or NATS.
package testutil
