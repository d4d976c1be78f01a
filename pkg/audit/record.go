// Package audit publishes one record per dispatched invocation.
package audit

import (
	"context"
	"time"
)

// Record describes a finished invocation. Argument values are never recorded.
type Record struct {
	ID         string    `json:"id"`
	Function   string    `json:"function"`
	Args       int       `json:"args"`
	OK         bool      `json:"ok"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	RequestID  string    `json:"request_id,omitempty"`
	At         time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, rec Record) error
}

// Noop discards records.
type Noop struct{}

func (Noop) Publish(context.Context, Record) error { return nil }

// Func adapts a function to Publisher.
type Func func(ctx context.Context, rec Record) error

func (f Func) Publish(ctx context.Context, rec Record) error { return f(ctx, rec) }
