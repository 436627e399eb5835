// Package connectivity tracks whether the remote authority is reachable.
//
// Monitor holds the current state and fans out transitions to subscribers.
// The sync engine only listens to it; something in the host has to call
// Monitor.Set. For the CLI that is a Prober, which pings the remote on an
// interval.
package connectivity
