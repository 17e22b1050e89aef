package resolver

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/amonks/wires/config"
	"github.com/amonks/wires/tasks"
)

// Expr is a glob expression: a list of patterns, each either literal glob
// syntax or a task reference, and each optionally negated with "!".
type Expr []string

// Pattern makes an Expr out of a single pattern.
func Pattern(p string) Expr { return Expr{p} }

// Options control glob resolution.
type Options struct {
	// Target selects which of a referenced task's file sets to use: Src
	// (or its alias Main), Watch, or NoTarget for both, src first.
	Target tasks.Target

	// Base, if set, replaces the source directory of the tasks named
	// directly in the expression, and is joined to the expression's
	// literal patterns. Tasks reached through other tasks keep their own
	// source directory.
	Base string
}

// Glob resolves expr into a list of literal glob patterns.
//
// Literal patterns are kept, joined to opts.Base if it is set. Task
// references are replaced by the task's file patterns, joined to the task's
// source directory; those patterns may in turn reference tasks. A negated
// task reference negates every pattern it contributes, and negating a
// pattern that is already negated un-negates it.
//
// Patterns that are neither glob syntax nor the name of a known task are
// dropped with a notice. If every pattern is dropped, Glob returns nil; a nil
// result means "undefined", and is distinct from an empty one.
//
// Glob returns an error wrapping [ErrInvalidTarget] for targets other than
// NoTarget, Src, Main and Watch, and a [*CycleError] if task references form
// a cycle.
func (r *Resolver) Glob(expr Expr, opts Options) ([]string, error) {
	target, ok := opts.Target.Files()
	if !ok {
		err := fmt.Errorf("%w: '%s' is not a file set", ErrInvalidTarget, opts.Target)
		r.log.Error(err.Error())
		return nil, err
	}
	g := &globber{Resolver: r, target: target, base: opts.Base}
	return g.expr(expr, opts.Base, true)
}

// MainGlob resolves expr against tasks' main file sets.
func (r *Resolver) MainGlob(expr Expr) ([]string, error) {
	return r.Glob(expr, Options{Target: tasks.Main})
}

// WatchGlob resolves expr against tasks' watch file sets.
func (r *Resolver) WatchGlob(expr Expr) ([]string, error) {
	return r.Glob(expr, Options{Target: tasks.Watch})
}

// globber holds the state of a single call to Glob.
type globber struct {
	*Resolver

	target tasks.Target
	base   string

	// stack lists the tasks currently being expanded, outermost first.
	stack []string
}

// expr resolves every pattern in expr, joining literals to base. top is true
// only for the expression passed to Glob itself.
func (g *globber) expr(expr Expr, base string, top bool) ([]string, error) {
	var out []string
	for _, p := range expr {
		resolved, err := g.pattern(p, base, top)
		if err != nil {
			return nil, err
		}
		if resolved == nil {
			continue
		}
		if out == nil {
			out = make([]string, 0, len(expr))
		}
		out = append(out, resolved...)
	}
	return out, nil
}

func (g *globber) pattern(p, base string, top bool) ([]string, error) {
	negated := strings.HasPrefix(p, "!")
	name := strings.TrimPrefix(p, "!")

	if config.IsGlob(name) {
		if base == "" {
			return []string{p}, nil
		}
		joined := path.Join(base, name)
		if negated {
			joined = "!" + joined
		}
		return []string{joined}, nil
	}

	if !g.store.Has(name) {
		g.log.Notice("not a glob or a task; dropping it", "pattern", p)
		return nil, nil
	}

	patterns, err := g.task(name, top)
	if err != nil {
		return nil, err
	}
	if negated {
		return negate(patterns), nil
	}
	return slices.Clone(patterns), nil
}

// task expands a task reference. The result is shared with the cache and
// must not be modified.
func (g *globber) task(name string, top bool) ([]string, error) {
	var override string
	if top {
		override = g.base
	}

	k := key(name, g.target.String(), override)
	if cached, ok := g.globs.get(k); ok {
		return cached, nil
	}

	if i := slices.Index(g.stack, name); i >= 0 {
		cycle := append(slices.Clone(g.stack[i:]), name)
		return nil, &CycleError{Path: cycle}
	}

	base := override
	if base == "" {
		dir, err := g.PathE(name, tasks.Src)
		if err != nil {
			return nil, err
		}
		base = dir
	}

	g.stack = append(g.stack, name)
	expanded, err := g.expr(g.patterns(name), base, false)
	g.stack = g.stack[:len(g.stack)-1]
	if err != nil {
		return nil, err
	}
	if expanded == nil {
		expanded = []string{}
	}

	g.globs.set(k, expanded)
	return expanded, nil
}

// patterns returns the named task's patterns for the globber's target. With
// no target, that's the src patterns followed by whichever watch patterns
// aren't already among them.
func (g *globber) patterns(name string) Expr {
	files := g.store.Get(name).Files
	if g.target != tasks.NoTarget {
		return files.Get(g.target)
	}
	out := make(Expr, 0, len(files.Src)+len(files.Watch))
	seen := map[string]struct{}{}
	for _, p := range append(slices.Clone(files.Src), files.Watch...) {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// negate toggles the negation of every pattern.
func negate(patterns []string) []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		if rest, ok := strings.CutPrefix(p, "!"); ok {
			out[i] = rest
		} else {
			out[i] = "!" + p
		}
	}
	return out
}
