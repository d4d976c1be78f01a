package registry

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func echo(_ context.Context, args []string) (any, error) { return args, nil }

func TestRegisterAndResolve(t *testing.T) {
	r := New()
	if err := r.Register("echo", echo); err != nil {
		t.Fatalf("Register: %v", err)
	}
	r.Freeze()

	fn, err := r.Resolve("echo")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	out, err := fn(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if !reflect.DeepEqual(out, []string{"a", "b"}) {
		t.Fatalf("got %v", out)
	}
}

func TestResolveUnknown(t *testing.T) {
	r := New().Freeze()
	_, err := r.Resolve("constructor")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err.Error() != "constructor is not a registered function" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	if _, err := r.Resolve("  "); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}

func TestRegisterRejects(t *testing.T) {
	r := New()
	if err := r.Register("", echo); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := r.Register("x", nil); err == nil {
		t.Fatalf("expected error for nil fn")
	}
	if err := r.Register("x", echo); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register("x", echo); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	r.Freeze()
	if err := r.Register("y", echo); !errors.Is(err, ErrFrozen) {
		t.Fatalf("expected ErrFrozen, got %v", err)
	}
	if _, ok := r.Lookup("y"); ok {
		t.Fatalf("frozen registry accepted a new function")
	}
}

func TestNamesSorted(t *testing.T) {
	r := New()
	r.MustRegister("zeta", echo)
	r.MustRegister("alpha", echo)
	r.MustRegister("mid", echo)
	got := r.Names()
	want := []string{"alpha", "mid", "zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if r.Len() != 3 {
		t.Fatalf("Len = %d", r.Len())
	}
}

func TestSubset(t *testing.T) {
	r := New()
	r.MustRegister("a", echo)
	r.MustRegister("b", echo)
	r.Freeze()

	sub, err := r.Subset([]string{"b"})
	if err != nil {
		t.Fatalf("Subset: %v", err)
	}
	if !sub.Frozen() {
		t.Fatalf("subset should be frozen")
	}
	if _, ok := sub.Lookup("a"); ok {
		t.Fatalf("subset leaked %q", "a")
	}
	if _, err := r.Subset([]string{"missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
