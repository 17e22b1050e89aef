package tasks

import (
	"fmt"
	"sort"
	"sync"

	"github.com/amonks/wires/config"
)

// A Store is the registry of task configurations for one configuration
// snapshot. It normalizes each task's configuration the first time it is
// requested and caches the result. Stores are safe for concurrent use.
//
// A Store never changes its snapshot: to reload configuration, build a new
// Store.
type Store struct {
	cfg    config.Config
	lookup Lookup

	mu      sync.Mutex
	configs map[string]Config
	funcs   map[string]Func
}

// NewStore creates a Store over the given configuration. Tasks that exist
// only as task definition files are found through lookup, which may be nil if
// every task is declared in the configuration.
func NewStore(cfg config.Config, lookup Lookup) *Store {
	if lookup == nil {
		lookup = NoLookup{}
	}
	return &Store{
		cfg:     cfg,
		lookup:  lookup,
		configs: map[string]Config{},
		funcs:   map[string]Func{},
	}
}

// Settings returns the configuration snapshot the Store was built from.
func (s *Store) Settings() config.Config { return s.cfg }

// IDs returns, in alphabetical order, the names of the declared tasks along
// with those that exist only as task definition files. A file that belongs to
// a declared task is not listed again under its own name.
func (s *Store) IDs() []string {
	ids := s.cfg.IDs()
	claimed := map[string]struct{}{}
	for _, id := range ids {
		in, _ := s.cfg.Task(id)
		claimed[fileStem(id, in.Filename)] = struct{}{}
	}
	for _, id := range s.lookup.IDs() {
		if s.Declared(id) {
			continue
		}
		if _, ok := claimed[id]; ok {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Declared returns true if the configuration declares a task with the given
// name.
func (s *Store) Declared(name string) bool {
	_, ok := s.cfg.Task(name)
	return ok
}

// Has returns true if a task with the given name exists: either the
// configuration declares it, or a task definition file for it exists. Either
// is enough.
func (s *Store) Has(name string) bool {
	if name == "" {
		return false
	}
	in, declared := s.cfg.Task(name)
	if declared {
		return true
	}
	return s.lookup.Exists(name, in.Filename)
}

// Defined returns true if the named task has a task definition file.
func (s *Store) Defined(name string) bool {
	if name == "" {
		return false
	}
	in, _ := s.cfg.Task(name)
	return s.lookup.Exists(name, in.Filename)
}

// Get returns the normalized configuration for the named task. Tasks which
// are not declared in the configuration get the defaults.
func (s *Store) Get(name string) Config {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.configs[name]; ok {
		return c
	}
	in, _ := s.cfg.Task(name)
	c := normalize(name, s.cfg.Root, in)
	s.configs[name] = c
	return c
}

// Func returns the runnable body of the named task, loading it from its task
// definition file the first time it is requested.
func (s *Store) Func(name string) (Func, error) {
	s.mu.Lock()
	fn, ok := s.funcs[name]
	s.mu.Unlock()
	if ok {
		return fn, nil
	}

	in, _ := s.cfg.Task(name)
	if !s.lookup.Exists(name, in.Filename) {
		return nil, fmt.Errorf("task '%s' has no task definition file", name)
	}
	fn, err := s.lookup.Load(name, in.Filename)
	if err != nil {
		return nil, fmt.Errorf("loading task '%s': %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.funcs[name] = fn
	return fn, nil
}

// Subtree returns the given task names and all of their transitive
// dependencies. Listed tasks (see [Store.IDs]) come first, in alphabetical
// order, followed by the rest in the order they were reached.
func (s *Store) Subtree(ids ...string) []string {
	include := map[string]struct{}{}
	var reached []string
	stack := append([]string{}, ids...)
	for i := 0; i < len(stack); i++ {
		id := stack[i]
		if _, seen := include[id]; seen {
			continue
		}
		include[id] = struct{}{}
		reached = append(reached, id)
		stack = append(stack, s.Get(id).Deps...)
	}

	var subtree []string
	listed := map[string]struct{}{}
	for _, id := range s.IDs() {
		listed[id] = struct{}{}
		if _, isIncluded := include[id]; isIncluded {
			subtree = append(subtree, id)
		}
	}
	for _, id := range reached {
		if _, ok := listed[id]; !ok {
			subtree = append(subtree, id)
		}
	}
	return subtree
}
