// Package cache stores data downloaded from the remote authority. Entries
// are born synced and go away only through EvictOlderThan or a reset.
package cache
