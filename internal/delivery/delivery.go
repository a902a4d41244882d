// Package delivery defines the transports that expose the account use cases.
package delivery

import "context"

// Delivery is a long-running transport started by the composition root.
type Delivery interface {
	// Serve blocks until the transport stops. Shutdown is driven by lifecycle hooks.
	Serve(ctx context.Context) error
}
