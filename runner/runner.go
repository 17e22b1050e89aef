// Package runner is a small build tool: it runs tasks after their
// dependencies and, in keepalive mode, reruns them when their files change.
package runner

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/amonks/wires/internal/styles"
	"github.com/amonks/wires/internal/watcher"
	"github.com/amonks/wires/registrar"
	"github.com/amonks/wires/tasks"
	"github.com/charmbracelet/lipgloss"
)

// Runner runs registered tasks. It implements [registrar.Host].
type Runner struct {
	mode Mode
	dir  string
	mw   *bufferedMultiWriter

	// Take mu to touch tasks or watchers.
	mu       sync.Mutex
	tasks    map[string]task
	watchers map[string]func()

	// exec is held while a task runs, so that reruns triggered by file
	// changes never overlap with each other or with Run.
	exec sync.Mutex
}

type task struct {
	deps []string
	fn   tasks.Func
}

var _ registrar.Host = &Runner{}

// New creates a Runner writing task output to mw. Watched globs are relative
// to dir.
func New(mode Mode, dir string, mw MultiWriter) *Runner {
	return &Runner{
		mode:     mode,
		dir:      dir,
		mw:       wrapMultiWriter(mw),
		tasks:    map[string]task{},
		watchers: map[string]func(){},
	}
}

// Task implements [registrar.Host]. Registering a name again replaces the
// earlier registration. fn may be nil for tasks that only have dependencies.
func (r *Runner) Task(name string, deps []string, fn tasks.Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[name] = task{deps: append([]string{}, deps...), fn: fn}
}

// IDs returns the names of the registered tasks, in alphabetical order.
func (r *Runner) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.tasks))
	for id := range r.tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Plan returns the order in which Run would run the given tasks: each task
// after all of its dependencies, and each only once. Requested tasks are
// visited in the order given, and dependencies in the order declared.
func (r *Runner) Plan(ids ...string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		order []string
		done  = map[string]bool{}
		stack []string
	)
	var visit func(id string) error
	visit = func(id string) error {
		if done[id] {
			return nil
		}
		for i, other := range stack {
			if other == id {
				cycle := append(append([]string{}, stack[i:]...), id)
				return fmt.Errorf("dependency cycle: %s", strings.Join(cycle, " -> "))
			}
		}
		t, ok := r.tasks[id]
		if !ok {
			return r.notFound(id)
		}
		stack = append(stack, id)
		for _, dep := range t.deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		done[id] = true
		order = append(order, id)
		return nil
	}

	for _, id := range ids {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func (r *Runner) notFound(id string) error {
	ids := make([]string, 0, len(r.tasks))
	for id := range r.tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	lines := []string{fmt.Sprintf("Task %s not found. Tasks are,", id)}
	for _, id := range ids {
		lines = append(lines, " - "+id)
	}
	lines = append(lines, "Run `wires -list` for more information about the available tasks.")
	return errors.New(strings.Join(lines, "\n"))
}

// Run runs the given tasks and their dependencies, and does not return until
// it's done. In exit mode, that's once every task has succeeded or one has
// failed. In keepalive mode, Run keeps serving file watches until ctx is
// done, and then returns context.Canceled.
func (r *Runner) Run(ctx context.Context, ids ...string) error {
	defer r.stopWatchers()

	order, err := r.Plan(ids...)
	if err != nil {
		return err
	}

	for _, id := range order {
		if err := ctx.Err(); err != nil {
			r.printf(InternalTaskInterleaved, styles.Notice, "run canceled")
			return err
		}
		if err := r.runTask(ctx, id); err != nil {
			return fmt.Errorf("task '%s' failed: %w", id, err)
		}
	}

	if r.mode == ModeExit {
		r.printf(InternalTaskInterleaved, styles.Notice, "done")
		return nil
	}

	r.printf(InternalTaskInterleaved, styles.Notice, "waiting for changes")
	<-ctx.Done()
	r.printf(InternalTaskInterleaved, styles.Notice, "run canceled")
	return context.Canceled
}

func (r *Runner) runTask(ctx context.Context, id string) error {
	r.exec.Lock()
	defer r.exec.Unlock()

	r.mu.Lock()
	t := r.tasks[id]
	r.mu.Unlock()

	if t.fn == nil {
		return nil
	}

	r.printf(id, styles.Notice, "starting")
	err := t.fn(ctx, r.mw.Writer(id))
	r.mw.flush(id)
	if err != nil {
		r.printf(id, styles.Error, "exit: %s", err)
		return err
	}
	r.printf(id, styles.Notice, "exit ok")
	return nil
}

// Watch implements [registrar.Host]. The task reruns on its own, without its
// dependencies, once per batch of changes. A failed rerun is reported and
// does not stop the watch.
func (r *Runner) Watch(ctx context.Context, name string, globs []string) error {
	r.mu.Lock()
	if _, ok := r.watchers[name]; ok {
		r.mu.Unlock()
		return nil
	}
	c, stop, err := watcher.Watch(r.inDir(globs))
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("file watch error: %w", err)
	}
	r.watchers[name] = stop
	r.mu.Unlock()

	r.printf(InternalTaskWatch, styles.Notice, "watching %s for %s", strings.Join(globs, ", "), name)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evs, ok := <-c:
				if !ok {
					return
				}
				paths := make([]string, len(evs))
				for i, ev := range evs {
					paths[i] = ev.Path
				}
				r.printf(InternalTaskWatch, styles.Notice, "%s changed; rerunning %s", strings.Join(paths, ", "), name)
				_ = r.runTask(ctx, name)
			}
		}
	}()
	return nil
}

// Watching returns the names of the tasks with installed watches, in
// alphabetical order.
func (r *Runner) Watching() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.watchers))
	for name := range r.watchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Runner) inDir(globs []string) []string {
	if r.dir == "" || r.dir == "." {
		return globs
	}
	out := make([]string, len(globs))
	for i, g := range globs {
		if rest, negated := strings.CutPrefix(g, "!"); negated {
			out[i] = "!" + path.Join(r.dir, rest)
		} else {
			out[i] = path.Join(r.dir, g)
		}
	}
	return out
}

func (r *Runner) stopWatchers() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, stop := range r.watchers {
		stop()
		delete(r.watchers, name)
	}
}

func (r *Runner) printf(id string, style lipgloss.Style, f string, args ...any) {
	w := r.mw.base.Writer(id)
	s := fmt.Sprintf(f, args...)
	w.Write([]byte(style.Render(s) + "\n"))
}

const (
	InternalTaskInterleaved = "@wires"
	InternalTaskWatch       = "@watch"
)

//go:generate go run golang.org/x/tools/cmd/stringer -type Mode -trimprefix Mode

// Mode decides what Run does once every requested task has run.
type Mode int

const (
	modeInvalid Mode = iota
	ModeKeepalive
	ModeExit
)
