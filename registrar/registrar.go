// Package registrar connects the resolver to a build tool: it registers
// configured tasks with the tool, and installs file watches for them.
//
// The build tool is a [Host]. The registrar never reaches into the host; the
// host never reaches into the configuration. [Adapter] is everything that
// passes between them.
package registrar

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/amonks/wires/internal/diag"
	"github.com/amonks/wires/resolver"
	"github.com/amonks/wires/tasks"
)

// Adapter is what a build tool integration calls to register tasks and
// resolve their inputs and outputs.
type Adapter interface {
	// RegisterTask registers the named task with the host. If deps is
	// nil, the task's configured dependencies are used. If fn is nil,
	// the task's definition file is used, if it has one.
	RegisterTask(name string, deps []string, fn tasks.Func) error

	// ResolveSourceGlob resolves expr against tasks' main file sets.
	ResolveSourceGlob(expr resolver.Expr) ([]string, error)

	// InstallWatch watches expr's watch globs on behalf of the named
	// task. It does nothing if a watch is already installed for the
	// task.
	InstallWatch(ctx context.Context, name string, expr resolver.Expr) error

	// ResolveDestPath returns the destination directory of the task named
	// dirOrTask or, if there is no such task, dirOrTask itself.
	ResolveDestPath(dirOrTask string) string
}

// A Host is a build tool that runs tasks.
type Host interface {
	// Task defines a task. Its dependencies run before it does.
	Task(name string, deps []string, fn tasks.Func)

	// Watch reruns the named task whenever a file matching globs
	// changes, until ctx is done.
	Watch(ctx context.Context, name string, globs []string) error

	// Run runs the named tasks and their dependencies.
	Run(ctx context.Context, ids ...string) error
}

// Registrar implements Adapter for a Resolver and a Host.
type Registrar struct {
	res  *resolver.Resolver
	host Host
	log  diag.Logger

	// watch is true in watch mode, where running a task watches its
	// files.
	watch bool

	mu      sync.Mutex
	watched map[string]struct{}
}

var _ Adapter = &Registrar{}

// New creates a Registrar. If watch is true, each registered task installs a
// watch on its watch globs the first time it runs.
func New(res *resolver.Resolver, host Host, log diag.Logger, watch bool) *Registrar {
	if log == nil {
		log = diag.Discard
	}
	return &Registrar{
		res:     res,
		host:    host,
		log:     log,
		watch:   watch,
		watched: map[string]struct{}{},
	}
}

// RegisterTask implements [Adapter].
func (r *Registrar) RegisterTask(name string, deps []string, fn tasks.Func) error {
	if !r.res.HasTask(name) && fn == nil {
		return fmt.Errorf("%w: '%s'", resolver.ErrUnknownTask, name)
	}

	c := r.res.TaskConfig(name)
	if deps == nil {
		deps = c.Deps
	}

	if fn == nil && !c.Group {
		if r.res.Store().Defined(name) {
			loaded, err := r.res.Store().Func(name)
			if err != nil {
				return err
			}
			fn = loaded
		} else {
			r.log.Warn("task has no task definition file; it will only run its dependencies", "task", name)
		}
	}

	r.host.Task(name, deps, r.wrap(name, fn))
	return nil
}

// RegisterAll registers the given tasks, or every task if none are given,
// along with all of their dependencies.
func (r *Registrar) RegisterAll(ids ...string) error {
	store := r.res.Store()
	if len(ids) == 0 {
		ids = store.IDs()
	}
	for _, id := range store.Subtree(ids...) {
		if err := r.RegisterTask(id, nil, nil); err != nil {
			return err
		}
	}
	return nil
}

// Run runs the named tasks on the host.
func (r *Registrar) Run(ctx context.Context, ids ...string) error {
	return r.host.Run(ctx, ids...)
}

// wrap returns the function the host runs for the named task. In watch mode,
// it installs the task's watch before running fn. fn may be nil.
func (r *Registrar) wrap(name string, fn tasks.Func) tasks.Func {
	if !r.watch {
		return fn
	}
	return func(ctx context.Context, w io.Writer) error {
		if r.watch {
			if err := r.InstallWatch(ctx, name, resolver.Pattern(name)); err != nil {
				return err
			}
		}
		if fn == nil {
			return nil
		}
		return fn(ctx, w)
	}
}

// ResolveSourceGlob implements [Adapter].
func (r *Registrar) ResolveSourceGlob(expr resolver.Expr) ([]string, error) {
	return r.res.MainGlob(expr)
}

// InstallWatch implements [Adapter].
func (r *Registrar) InstallWatch(ctx context.Context, name string, expr resolver.Expr) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.watched[name]; ok {
		return nil
	}

	globs, err := r.res.WatchGlob(expr)
	if err != nil {
		return err
	}
	if !hasPositive(globs) {
		r.log.Notice("nothing to watch", "task", name)
		r.watched[name] = struct{}{}
		return nil
	}
	if err := r.host.Watch(ctx, name, globs); err != nil {
		return fmt.Errorf("watching files for '%s': %w", name, err)
	}
	r.watched[name] = struct{}{}
	return nil
}

// ResolveDestPath implements [Adapter].
func (r *Registrar) ResolveDestPath(dirOrTask string) string {
	if !r.res.HasTask(dirOrTask) {
		return dirOrTask
	}
	if dest, ok := r.res.Dest(dirOrTask); ok {
		return dest
	}
	return dirOrTask
}

func hasPositive(globs []string) bool {
	for _, g := range globs {
		if len(g) > 0 && g[0] != '!' {
			return true
		}
	}
	return false
}
