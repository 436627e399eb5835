package client

import (
	"context"

	"github.com/dmitrijs2005/offsync/internal/client/models"
)

// Client is the contract with the remote authority.
type Client interface {
	// Ping checks that the remote answers its health endpoint.
	Ping(ctx context.Context) error

	// Send asks the remote to apply action at endpoint. payload is the raw
	// JSON document; it is not sent for deletes.
	Send(ctx context.Context, action models.Action, endpoint string, payload []byte) error
}
