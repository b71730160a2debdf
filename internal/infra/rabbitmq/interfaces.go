package rabbitmq

import "context"

// PublisherInterface lets services publish order events without binding to a
// live broker connection.
type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

var _ PublisherInterface = (*Publisher)(nil)
