// Package objectstore implements storage.BlobStore on a NATS JetStream
// object store bucket. Blob paths double as object names, so the
// bucket's layout mirrors the routing path template.
//
// Writes are collision-checked: a path already holding different
// content fails fatally, while rewriting identical content is treated
// as a replay and succeeds without touching the bucket. That keeps
// retried persistence attempts idempotent.
package objectstore
