// pkg/envelope/envelope.go
package envelope

import (
	"fmt"
	"net/http"

	"github.com/joeydtaylor/steeze-rpc/pkg/codec"
)

const (
	// HeaderStatus tags every invoke response; the body alone cannot tell a
	// failure from a function that returned a string starting with ErrorPrefix.
	HeaderStatus = "X-Rpc-Status"

	ErrorPrefix   = "Error: "
	KeyErrorValue = "Key error."
)

// Kind is the outcome of one invocation.
type Kind uint8

const (
	KindSuccess Kind = iota
	KindFailure
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "ok"
	case KindFailure:
		return "error"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome the dispatcher produces. It is flattened into
// the single-field Envelope only when written to the wire.
type Result struct {
	Kind    Kind
	Value   any
	Message string
}

func Success(v any) Result { return Result{Kind: KindSuccess, Value: v} }

func Failure(err error) Result {
	if err == nil {
		return Result{Kind: KindFailure, Message: "unknown error"}
	}
	return Result{Kind: KindFailure, Message: err.Error()}
}

func Unauthorized() Result { return Result{Kind: KindUnauthorized} }

func (r Result) OK() bool { return r.Kind == KindSuccess }

// Wire is the value carried in the envelope's `value` field.
func (r Result) Wire() any {
	switch r.Kind {
	case KindSuccess:
		return r.Value
	case KindUnauthorized:
		return KeyErrorValue
	default:
		return ErrorPrefix + r.Message
	}
}

func (r Result) Envelope() Envelope { return Envelope{Value: r.Wire()} }

// Envelope is the response body: exactly one `value` field.
type Envelope struct {
	Value any `json:"value"`
}

// Marshal encodes r. A success value that cannot be encoded becomes a failure.
func Marshal(r Result) (Result, []byte) {
	b, err := codec.JSONStrict.Marshal(r.Envelope())
	if err == nil {
		return r, b
	}
	r = Failure(fmt.Errorf("encode result: %w", err))
	b, _ = codec.JSONStrict.Marshal(r.Envelope())
	return r, b
}

// Write sends r as a 200 response with its status tag.
func Write(w http.ResponseWriter, r Result) {
	r, body := Marshal(r)
	w.Header().Set("Content-Type", codec.JSONStrict.ContentType())
	w.Header().Set(HeaderStatus, r.Kind.String())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
