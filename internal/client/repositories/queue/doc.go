// Package queue is the durable list of mutations waiting to reach the remote
// authority. Items come back from ListPending in enqueue order.
//
// The queue never delivers anything itself. The sync scheduler reads it,
// removes delivered items and calls BumpRetry on failures.
package queue
