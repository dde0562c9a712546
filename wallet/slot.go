package wallet

import (
	"reflect"
	"sync/atomic"
)

// Slot is a well-known place a Provider may be injected into. Consumers must
// check for presence before use; an empty slot is a normal state.
type Slot struct {
	p atomic.Pointer[entry]
}

type entry struct {
	p Provider
}

// Global is the process-wide slot. Only the composition root should read it
// and pass the provider down.
var Global = new(Slot)

// Inject binds p. Injecting nil, including a typed nil, empties the slot.
func (s *Slot) Inject(p Provider) {
	if isNil(p) {
		s.p.Store(nil)
		return
	}
	s.p.Store(&entry{p: p})
}

func (s *Slot) Remove() {
	s.p.Store(nil)
}

// Get returns the bound provider and whether there is one.
func (s *Slot) Get() (Provider, bool) {
	e := s.p.Load()
	if e == nil || isNil(e.p) {
		return nil, false
	}
	return e.p, true
}

func (s *Slot) Available() bool {
	_, ok := s.Get()
	return ok
}

// iface(*struct(nil)) != nil
func isNil(p Provider) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
