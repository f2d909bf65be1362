package note

import (
	"encoding/binary"
	"slices"
	"sync"
)

// DecodeFunc decodes already-captured descriptor bytes into a structured view.
// It must not retain desc and returns false when desc is too short or
// otherwise not in the expected format.
type DecodeFunc func(order binary.ByteOrder, desc []byte) (Descriptor, bool)

// Registry maps note types to descriptor decoders. It is safe for concurrent use.
type Registry struct {
	funcs map[Type]DecodeFunc
	mu    sync.RWMutex
}

// DefaultRegistry holds the decoders used by Decode and DecodeSection.
var DefaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TypeGNUABITag, decodeAbiTagDescriptor)
	return r
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		funcs: make(map[Type]DecodeFunc),
	}
}

// Register installs fn as the decoder for t, replacing any previous one.
// A nil fn removes the decoder.
func (r *Registry) Register(t Type, fn DecodeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if fn == nil {
		delete(r.funcs, t)
		return
	}
	r.funcs[t] = fn
}

// Lookup returns the decoder registered for t.
func (r *Registry) Lookup(t Type) (DecodeFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.funcs[t]
	return fn, ok
}

// Types returns the registered types in ascending order.
func (r *Registry) Types() []Type {
	r.mu.RLock()
	types := make([]Type, 0, len(r.funcs))
	for t := range r.funcs {
		types = append(types, t)
	}
	r.mu.RUnlock()

	slices.Sort(types)
	return types
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := NewRegistry()
	for t, fn := range r.funcs {
		c.funcs[t] = fn
	}
	return c
}

// decode runs the decoder for t, if any. A missing decoder or a rejected
// descriptor yields nil.
func (r *Registry) decode(t Type, order binary.ByteOrder, desc []byte) Descriptor {
	fn, ok := r.Lookup(t)
	if !ok {
		return nil
	}
	d, ok := fn(order, desc)
	if !ok {
		return nil
	}
	return d
}
