package service

import (
	"context"

	"github.com/optinhub/optin-manager/internal/events"
)

// Actor identifies the console user performing an operation.
type Actor = events.Actor

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	_ = dispatcher.Publish(ctx, event)
}
