// Package router splits a validated, deduplicated record into its
// relational payload and zero or more blob payloads, per the stream
// schema's storage policy.
//
// For relational_only streams the relational payload is the record
// verbatim. For hybrid streams every blob field is removed from the
// relational payload, serialized, and addressed at a path computed from
// the schema's template; the relational payload gains one reference
// column per blob field holding that path. Path computation is a pure
// function of its inputs except for the injected unique id, so the same
// content written twice never lands on the same path unless the id is
// reused.
package router
