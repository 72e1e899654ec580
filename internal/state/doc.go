// Package state assembles the reconciliation engine: the node
// registry, the message store with its channel buckets, direct-message
// conversations, unread bookkeeping, and the debug buffer, all behind
// one lock.
//
// # Concurrency
//
// The engine expects one logical writer (the feed dispatch goroutine).
// Because its invariants span several indices at once — the packet
// index, the unified feed, the channel buckets, and the conversations —
// it is guarded by a single sync.RWMutex rather than per-store locks.
// Read queries return defensive copies, so callers can hold results
// across later writes.
//
// # Merge semantics
//
// Re-delivery of a record with a known identity merges in place under
// the rules in package mesh; the merge is order-sensitive, so the feed
// must deliver events for one packet id in true chronological order.
// Re-ingesting an identical event stream (for example after the durable
// collaborator rehydrates) produces no duplicates.
package state
