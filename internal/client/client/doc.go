// Package client talks to the remote authority that local records are
// synchronized against.
//
// # Overview
//
// Client is the transport-agnostic contract: Ping for reachability and Send
// to deliver one mutation. HTTPClient implements it over JSON/HTTP, resolving
// endpoints such as "/api/assessment" against a base URL. Delete actions go
// out as DELETE without a body, everything else as POST with the JSON
// payload.
//
// # Error Handling
//
// Failures are matched with errors.Is:
//   - ErrUnavailable: the request never got an answer (dial, timeout, reset).
//   - ErrRejected: the remote answered with a status outside 2xx.
//
// Both count as a failed delivery for the sync scheduler.
package client
