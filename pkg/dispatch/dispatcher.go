// pkg/dispatch/dispatcher.go
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/joeydtaylor/steeze-rpc/pkg/audit"
	"github.com/joeydtaylor/steeze-rpc/pkg/codec"
	"github.com/joeydtaylor/steeze-rpc/pkg/envelope"
	"github.com/joeydtaylor/steeze-rpc/pkg/middleware/metrics"
	"github.com/joeydtaylor/steeze-rpc/pkg/observability"
	"github.com/joeydtaylor/steeze-rpc/pkg/registry"
	"go.uber.org/zap"
)

type Options struct {
	Logger *zap.Logger
	Audit  audit.Publisher
	// Timeout bounds each invocation; 0 leaves only the caller's deadline.
	Timeout time.Duration
}

// Dispatcher resolves a name against a frozen registry, runs the function and
// folds every outcome into an envelope.Result. It never returns a Go error.
type Dispatcher struct {
	reg     *registry.Registry
	log     *zap.Logger
	audit   audit.Publisher
	timeout time.Duration
}

func New(reg *registry.Registry, o Options) *Dispatcher {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Audit == nil {
		o.Audit = audit.Noop{}
	}
	return &Dispatcher{reg: reg, log: o.Logger, audit: o.Audit, timeout: o.Timeout}
}

func (d *Dispatcher) Registry() *registry.Registry { return d.reg }

// Dispatch runs one invocation. Side effects of a failing function are not rolled back.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args []string) envelope.Result {
	return d.dispatch(ctx, name, args, nil)
}

// DispatchRaw decodes the wire form of the arguments with c and dispatches.
// A decode failure is recorded like any failed invocation; the function is not called.
func (d *Dispatcher) DispatchRaw(ctx context.Context, name, raw string, c codec.Args) envelope.Result {
	args, err := c.Decode(raw)
	return d.dispatch(ctx, name, args, err)
}

func (d *Dispatcher) dispatch(ctx context.Context, name string, args []string, argErr error) envelope.Result {
	start := time.Now()
	reqID := chimd.GetReqID(ctx)

	ctx, span := observability.StartSpan(ctx, "rpc.dispatch "+name,
		observability.AttrFunction.String(name),
		observability.AttrArgCount.Int(len(args)),
		observability.AttrRequestID.String(reqID),
	)
	defer span.End()

	label := name
	var res envelope.Result

	fn, err := d.reg.Resolve(name)
	switch {
	case err != nil:
		label = metrics.UnknownFunction
		res = envelope.Failure(err)
	case argErr != nil:
		res = envelope.Failure(argErr)
	default:
		res = d.invoke(ctx, name, fn, args)
	}
	// a value the envelope cannot carry is a failure everywhere it is recorded
	if res.OK() {
		res, _ = envelope.Marshal(res)
	}

	dur := time.Since(start)
	outcome := res.Kind.String()
	metrics.ObserveInvocation(label, outcome, dur)
	span.SetAttributes(observability.AttrOutcome.String(outcome))
	if res.OK() {
		observability.SetSpanOK(span)
		d.log.Debug("invoked", zap.String("function", name), zap.Int("args", len(args)), zap.Duration("lat", dur))
	} else {
		observability.SetSpanError(span, res.Message)
		d.log.Warn("invocation failed",
			zap.String("function", name),
			zap.Int("args", len(args)),
			zap.String("requestId", reqID),
			zap.String("error", res.Message),
			zap.Duration("lat", dur),
		)
	}

	rec := audit.Record{
		ID:         uuid.NewString(),
		Function:   name,
		Args:       len(args),
		OK:         res.OK(),
		DurationMS: dur.Milliseconds(),
		RequestID:  reqID,
		At:         start.UTC(),
	}
	if !res.OK() {
		rec.Error = res.Message
	}
	if err := d.audit.Publish(context.WithoutCancel(ctx), rec); err != nil {
		d.log.Error("audit publish failed", zap.String("function", name), zap.Error(err))
	}
	return res
}

func (d *Dispatcher) invoke(ctx context.Context, name string, fn registry.Func, args []string) (res envelope.Result) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	defer func() {
		if p := recover(); p != nil {
			d.log.Error("function panicked", zap.String("function", name), zap.Any("panic", p))
			res = envelope.Failure(panicError(p))
		}
	}()

	v, err := fn(ctx, args)
	if err != nil {
		return envelope.Failure(err)
	}
	if cerr := ctx.Err(); cerr != nil {
		return envelope.Failure(cerr)
	}
	return envelope.Success(v)
}

func panicError(p any) error {
	if err, ok := p.(error); ok {
		return err
	}
	return errors.New(fmt.Sprint(p))
}
