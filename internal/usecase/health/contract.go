package health

import "context"

// Pinger checks primary store availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Engine reports search engine state. A disabled engine is not an outage of the service.
type Engine interface {
	IsEnabled() bool
	Ping(ctx context.Context) error
}
