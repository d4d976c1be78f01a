// Package functions holds the built-in payload functions the binary exposes.
package functions

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/joeydtaylor/steeze-rpc/pkg/registry"
)

// Register binds every built-in on r. r must not be frozen.
func Register(r *registry.Registry) error {
	for name, fn := range builtins() {
		if err := r.RegisterFunc(name, fn); err != nil {
			return err
		}
	}
	return nil
}

func builtins() map[string]any {
	return map[string]any{
		"echo":  Echo,
		"join":  Join,
		"sum":   Sum,
		"upper": Upper,
		"fail":  Fail,
		"now":   Now,
	}
}

// Echo returns its arguments unchanged.
func Echo(args []string) ([]string, error) {
	if args == nil {
		args = []string{}
	}
	return args, nil
}

func Join(args []string) (string, error) { return strings.Join(args, " "), nil }

// Sum adds its arguments as finite decimal numbers.
func Sum(args []string) (float64, error) {
	var total float64
	for i, a := range args {
		f, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("argument %d (%q) is not a number", i+1, a)
		}
		total += f
	}
	if math.IsInf(total, 0) {
		return 0, errors.New("sum overflows")
	}
	return total, nil
}

func Upper(s string) (string, error) { return strings.ToUpper(s), nil }

// Fail always fails, with its arguments as the message.
func Fail(args ...string) (any, error) {
	if len(args) == 0 {
		return nil, errors.New("fail")
	}
	return nil, errors.New(strings.Join(args, " "))
}

// Now reports the server clock in RFC 3339, honouring ctx cancellation.
func Now(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return time.Now().UTC().Format(time.RFC3339), nil
}
