// Package postgres implements storage.RelationalStore on a pgx
// connection pool. Each stream schema maps to one table; rows are
// inserted individually with JSON encoding for structured column
// values.
package postgres
