// pkg/registry/registry.go
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Func is the calling convention every remotely invokable function satisfies.
// args is the decoded argument list in wire order; arity is the function's concern.
type Func func(ctx context.Context, args []string) (any, error)

var (
	ErrNotFound     = errors.New("not a registered function")
	ErrNameRequired = errors.New("function name is required")
	ErrFrozen       = errors.New("registry: frozen")
)

// Registry is a closed name -> Func map. It is populated during startup and
// frozen before the first request is served; lookups never consult anything else.
type Registry struct {
	mu     sync.RWMutex
	fns    map[string]Func
	frozen bool
}

func New() *Registry {
	return &Registry{fns: make(map[string]Func)}
}

// Register binds fn under name. Fails on empty name, nil fn, duplicates, or after Freeze.
func (r *Registry) Register(name string, fn Func) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("registry: name and fn required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("%w: cannot register %q", ErrFrozen, name)
	}
	if _, dup := r.fns[name]; dup {
		return fmt.Errorf("registry: duplicate %q", name)
	}
	r.fns[name] = fn
	return nil
}

// RegisterFunc adapts a plain Go function (see Adapt) and registers it.
func (r *Registry) RegisterFunc(name string, fn any) error {
	f, err := Adapt(fn)
	if err != nil {
		return fmt.Errorf("registry: %q: %w", name, err)
	}
	return r.Register(name, f)
}

func (r *Registry) MustRegister(name string, fn any) {
	if err := r.RegisterFunc(name, fn); err != nil {
		panic(err)
	}
}

// Freeze closes the registry to further registration and returns it.
func (r *Registry) Freeze() *Registry {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
	return r
}

func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Lookup retrieves a registered function by exact name.
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.fns[name]
	return fn, ok
}

// Resolve is Lookup with an error suitable for returning to a remote caller.
func (r *Registry) Resolve(name string) (Func, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	fn, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%s is %w", name, ErrNotFound)
	}
	return fn, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.fns))
	for n := range r.fns {
		out = append(out, n)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fns)
}

// Subset returns a new frozen registry holding only names. Every name must exist.
func (r *Registry) Subset(names []string) (*Registry, error) {
	out := New()
	for _, n := range names {
		fn, ok := r.Lookup(n)
		if !ok {
			return nil, fmt.Errorf("registry: subset: %s is %w", n, ErrNotFound)
		}
		if err := out.Register(n, fn); err != nil {
			return nil, err
		}
	}
	return out.Freeze(), nil
}
