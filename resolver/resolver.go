// Package resolver turns task names into directories and glob expressions
// into literal glob patterns.
//
// A glob expression is a list of patterns. Each pattern is either glob
// syntax, which is taken literally, or the name of a task, which stands for
// that task's file patterns joined to its source directory. Either kind may be
// negated with a leading "!". Task references nest: a task's own file
// patterns may name further tasks.
//
// A Resolver is built from one configuration snapshot and caches everything
// it computes. To pick up a changed configuration, build a new Resolver.
package resolver

import (
	"github.com/amonks/wires/config"
	"github.com/amonks/wires/internal/diag"
	"github.com/amonks/wires/tasks"
	"github.com/spf13/afero"
)

// Resolver resolves paths and glob expressions against one configuration
// snapshot. It is safe for concurrent use.
type Resolver struct {
	store *tasks.Store
	log   diag.Logger
	fs    afero.Fs

	paths *cache[string]
	globs *cache[[]string]
}

// An Option configures a Resolver.
type Option func(*options)

type options struct {
	lookup tasks.Lookup
	log    diag.Logger
	fs     afero.Fs
}

// WithLookup sets where task definition files are found. Without it, only
// tasks declared in the configuration exist.
func WithLookup(l tasks.Lookup) Option {
	return func(o *options) { o.lookup = l }
}

// WithLogger sets where diagnostics go. Without it, they are discarded.
func WithLogger(l diag.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithFs sets the filesystem searched by [Resolver.Files]. Patterns are
// matched relative to its root. Without it, the operating system's
// filesystem is used, relative to the working directory.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// New creates a Resolver for the given configuration. The configuration
// should already have its defaults applied; see [config.Config.WithDefaults].
func New(cfg config.Config, opts ...Option) *Resolver {
	o := options{
		log: diag.Discard,
		fs:  afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Resolver{
		store: tasks.NewStore(cfg, o.lookup),
		log:   o.log,
		fs:    o.fs,
		paths: newCache[string](),
		globs: newCache[[]string](),
	}
}

// Store returns the task store the Resolver reads task configurations from.
func (r *Resolver) Store() *tasks.Store { return r.store }

// HasTask returns true if a task with the given name exists, either in the
// configuration or as a task definition file.
func (r *Resolver) HasTask(name string) bool { return r.store.Has(name) }

// TaskConfig returns the normalized configuration of the named task.
func (r *Resolver) TaskConfig(name string) tasks.Config { return r.store.Get(name) }
