// pkg/registry/adapt.go
package registry

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

var (
	contextType     = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType       = reflect.TypeOf((*error)(nil)).Elem()
	stringType      = reflect.TypeOf("")
	stringSliceType = reflect.TypeOf([]string(nil))
)

// ArityError is returned when a single-argument function receives a list of another size.
type ArityError struct {
	Want, Got int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("expected %d argument(s), got %d", e.Want, e.Got)
}

// Adapt turns a Go function into a Func. Accepted shapes, each with an optional
// leading context.Context:
//
//	func() (T, error)
//	func(string) (T, error)
//	func([]string) (T, error)
//	func(...string) (T, error)
//
// A zero-parameter function ignores its arguments.
func Adapt(fn any) (Func, error) {
	switch f := fn.(type) {
	case nil:
		return nil, errors.New("nil function")
	case Func:
		return f, nil
	case func(context.Context, []string) (any, error):
		return f, nil
	}

	fnVal := reflect.ValueOf(fn)
	fnTyp := fnVal.Type()
	if fnTyp.Kind() != reflect.Func {
		return nil, fmt.Errorf("want a function, got %v", fnTyp)
	}
	if fnTyp.NumOut() != 2 || fnTyp.Out(1) != errorType {
		return nil, fmt.Errorf("%v must return (T, error)", fnTyp)
	}

	in := 0
	withCtx := fnTyp.NumIn() > 0 && fnTyp.In(0) == contextType
	if withCtx {
		in = 1
	}

	var kind argKind
	switch fnTyp.NumIn() - in {
	case 0:
		kind = argNone
	case 1:
		switch p := fnTyp.In(in); {
		case p == stringType:
			kind = argOne
		case p == stringSliceType && fnTyp.IsVariadic():
			kind = argVariadic
		case p == stringSliceType:
			kind = argList
		default:
			return nil, fmt.Errorf("%v: unsupported parameter type %v", fnTyp, p)
		}
	default:
		return nil, fmt.Errorf("%v: too many parameters", fnTyp)
	}

	return func(ctx context.Context, args []string) (any, error) {
		call := make([]reflect.Value, 0, 2)
		if withCtx {
			if ctx == nil {
				ctx = context.Background()
			}
			call = append(call, reflect.ValueOf(ctx))
		}

		var res []reflect.Value
		switch kind {
		case argNone:
			res = fnVal.Call(call)
		case argOne:
			if len(args) != 1 {
				return nil, &ArityError{Want: 1, Got: len(args)}
			}
			res = fnVal.Call(append(call, reflect.ValueOf(args[0])))
		case argList:
			res = fnVal.Call(append(call, reflect.ValueOf(args)))
		case argVariadic:
			if args == nil {
				args = []string{}
			}
			res = fnVal.CallSlice(append(call, reflect.ValueOf(args)))
		}

		if e, _ := res[1].Interface().(error); e != nil {
			return nil, e
		}
		return res[0].Interface(), nil
	}, nil
}

type argKind uint8

const (
	argNone argKind = iota
	argOne
	argList
	argVariadic
)
