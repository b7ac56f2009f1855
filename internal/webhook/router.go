package webhook

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnhandledEvent is returned for event types the service does not project.
// It is not a failure: the delivery should still be acknowledged.
var ErrUnhandledEvent = errors.New("unhandled event type")

// HandlerFunc projects one decoded event.
type HandlerFunc func(ctx context.Context, evt Event) (Result, error)

// Router dispatches events on their type.
type Router struct {
	handlers map[EventType]HandlerFunc
}

// NewRouter wires the user lifecycle events to p.
func NewRouter(p *Projector) *Router {
	return &Router{
		handlers: map[EventType]HandlerFunc{
			EventUserCreated: func(ctx context.Context, evt Event) (Result, error) {
				var data UserData
				if err := decodeData(evt, &data); err != nil {
					return Result{}, err
				}
				return p.Created(ctx, data)
			},
			EventUserUpdated: func(ctx context.Context, evt Event) (Result, error) {
				var data UserData
				if err := decodeData(evt, &data); err != nil {
					return Result{}, err
				}
				return p.Updated(ctx, data)
			},
			EventUserDeleted: func(ctx context.Context, evt Event) (Result, error) {
				var data DeletedData
				if err := decodeData(evt, &data); err != nil {
					return Result{}, err
				}
				return p.Deleted(ctx, data)
			},
		},
	}
}

// Handles reports whether t has a registered handler.
func (r *Router) Handles(t EventType) bool {
	_, ok := r.handlers[t]
	return ok
}

// Route runs the handler registered for evt.Type.
func (r *Router) Route(ctx context.Context, evt Event) (Result, error) {
	handler, ok := r.handlers[evt.Type]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnhandledEvent, evt.Type)
	}
	return handler(ctx, evt)
}
