// Package vars holds the shell's flat variable store.
package vars

import (
	"fmt"
	"strings"
	"sync"
)

// Store is an in-memory name to value table. Writes overwrite, there is no
// unset; listing follows first-definition order.
type Store struct {
	rw    sync.RWMutex
	vals  map[string]string
	order []string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// NewStoreFromList creates a store seeded from "key=value" entries.
func NewStoreFromList(environ []string) *Store {
	out := NewStore()

	for _, e := range environ {
		split := strings.SplitN(e, "=", 2)
		key, value := split[0], ""
		if len(split) > 1 {
			value = split[1]
		}
		out.Set(key, value)
	}

	return out
}

// Set stores value under name, replacing any previous value.
func (s *Store) Set(name, value string) {
	s.rw.Lock()
	defer s.rw.Unlock()

	if s.vals == nil {
		s.vals = make(map[string]string)
	}
	if _, ok := s.vals[name]; !ok {
		s.order = append(s.order, name)
	}
	s.vals[name] = value
}

// Get retrieves the value of the variable named by name. The boolean is
// false if the variable was never set.
func (s *Store) Get(name string) (string, bool) {
	s.rw.RLock()
	defer s.rw.RUnlock()

	val, ok := s.vals[name]
	return val, ok
}

// Getenv returns the value of name or the empty string.
func (s *Store) Getenv(name string) string {
	val, _ := s.Get(name)
	return val
}

// Len returns the number of defined variables.
func (s *Store) Len() int {
	s.rw.RLock()
	defer s.rw.RUnlock()

	return len(s.order)
}

// List returns a copy of the variables in the form "name=value".
func (s *Store) List() []string {
	s.rw.RLock()
	defer s.rw.RUnlock()

	out := make([]string, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, fmt.Sprintf("%s=%s", k, s.vals[k]))
	}

	return out
}
