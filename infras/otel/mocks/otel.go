package mocks

import (
	"booknotify/infras/otel"
	"context"
)

type noopOtel struct{}

// NewOtel returns an Otel whose scopes record nothing.
func NewOtel() otel.Otel {
	return noopOtel{}
}

func (noopOtel) NewScope(ctx context.Context, _, _ string) (context.Context, otel.Scope) {
	return ctx, NewScope()
}

func (noopOtel) Shutdown(context.Context) error {
	return nil
}
