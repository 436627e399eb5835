// Package cli provides the offsync command-line client.
//
// It wires configuration, the local store, the remote client and the sync
// engine behind a cobra command tree. Every command builds an App for its
// own run; "watch" keeps it alive, probing connectivity and syncing on each
// reconnect until interrupted.
//
// See NewRootCommand and App for details.
package cli
