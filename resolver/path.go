package resolver

import (
	"errors"
	"fmt"
	"path"

	"github.com/amonks/wires/tasks"
)

// Path returns the directory of the named task for the given target: its root
// joined with its dir. Base and Watch are aliases for Src.
//
// If there is no such task, Path logs a notice and returns false. If the
// target does not name a directory, Path logs an error and returns false.
// Use [Resolver.PathE] to get these as errors instead.
func (r *Resolver) Path(task string, target tasks.Target) (string, bool) {
	p, err := r.PathE(task, target)
	switch {
	case err == nil:
		return p, true
	case errors.Is(err, ErrUnknownTask):
		r.log.Notice("unknown task", "task", task)
	default:
		r.log.Error(err.Error(), "task", task)
	}
	return "", false
}

// PathE is like Path, but reports failures as errors wrapping
// [ErrUnknownTask] or [ErrInvalidTarget].
func (r *Resolver) PathE(task string, target tasks.Target) (string, error) {
	dir, ok := target.Dir()
	if !ok {
		return "", fmt.Errorf("%w: '%s' is not a directory", ErrInvalidTarget, target)
	}
	if !r.store.Has(task) {
		return "", fmt.Errorf("%w: '%s'", ErrUnknownTask, task)
	}

	k := key(task, dir.String())
	if p, ok := r.paths.get(k); ok {
		return p, nil
	}
	c := r.store.Get(task)
	p := path.Join(c.Root.Get(dir), c.Dir.Get(dir))
	r.paths.set(k, p)
	return p, nil
}

// Base returns the source directory of the named task.
func (r *Resolver) Base(task string) (string, bool) { return r.Path(task, tasks.Src) }

// Dest returns the destination directory of the named task.
func (r *Resolver) Dest(task string) (string, bool) { return r.Path(task, tasks.Dest) }
