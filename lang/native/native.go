// Package native implements Olive's native-function bridge: the registry of
// host-provided Go functions a script can call as if they were ordinary
// Olive functions (register_native in the specification's glossary).
package native

import (
	"github.com/dolthub/swiss"

	"github.com/wldfngrs/olive/lang/value"
)

// Registry is a name-to-native-function table. Unlike the globals table or
// the string intern set, this is a plain generic map with no weak-removal or
// GC-sweep semantics of its own (every *value.ObjNative it holds is also
// reachable from the VM's globals table, and the collector marks through
// both) — exactly the kind of concern
// github.com/dolthub/swiss was built for, per SPEC_FULL.md's domain-stack
// wiring.
type Registry struct {
	fns *swiss.Map[string, *value.ObjNative]
}

// NewRegistry returns an empty registry sized for a handful of builtins.
func NewRegistry() *Registry {
	return &Registry{fns: swiss.NewMap[string, *value.ObjNative](8)}
}

// Register wraps fn as an *value.ObjNative under name and records it in the
// registry. The caller (lang/vm) is responsible for also linking the
// returned object into the GC's all-objects list and exposing it through the
// globals table, mirroring the original VM's defineNative.
func (r *Registry) Register(name string, fn value.NativeFn) *value.ObjNative {
	n := &value.ObjNative{Name: name, Fn: fn}
	r.fns.Put(name, n)
	return n
}

// Get looks up a previously registered native by name.
func (r *Registry) Get(name string) (*value.ObjNative, bool) {
	return r.fns.Get(name)
}

// Range calls fn for every registered native, stopping early if fn returns
// false. Used by the garbage collector to mark the registry's contents (each
// native is also reachable from globals, but marking here costs nothing and
// keeps the registry correct even if a host embeds one without exposing it
// as a global).
func (r *Registry) Range(fn func(name string, n *value.ObjNative) bool) {
	r.fns.Iter(func(k string, v *value.ObjNative) (stop bool) {
		return !fn(k, v)
	})
}
