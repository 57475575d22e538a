// Package natsclient wraps the NATS connection and the two JetStream
// facilities the pipeline relies on: key-value buckets (the dedup index)
// and object stores (the blob store).
//
// The wrapper exists so the rest of the codebase deals in small,
// timeout-bounded operations (Get, Create, Delete, PutBytes) instead of
// raw JetStream handles, and so connection options live in one place.
package natsclient
