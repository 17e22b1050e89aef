// Package tasks holds the normalized configuration of every task, and looks
// up task definition files for tasks that exist only on disk.
package tasks

import (
	"context"
	"io"

	"github.com/amonks/wires/config"
)

// Config is the normalized configuration of a single task. Every field is
// fully populated: the scalar shortcuts allowed in wires.toml have already
// been broadcast to each target.
type Config struct {
	// Name is the task's name, as used in dependency lists and as a
	// reference inside glob expressions.
	Name string

	// Deps are task names which should run before this task, in order.
	Deps []string

	// Root holds the roots of the task's source and destination trees. It
	// defaults to the global roots.
	Root Dirs

	// Dir holds the sub-directories appended to Root for each target. It
	// defaults to "./" for both.
	Dir Dirs

	// Files holds the glob expressions for the task's main file set and
	// its watch set. Patterns are relative to the task's src directory and
	// may name other tasks. Both default to "**/*".
	//
	// Group tasks have no files.
	Files Files

	// Group is true for dependency-only tasks, declared as a bare array of
	// dependencies.
	Group bool

	// Filename optionally overrides the name of the task definition file.
	Filename string
}

// Dirs holds one directory per directory target.
type Dirs struct {
	Src  string
	Dest string
}

// Get returns the directory for target, which must be Src or Dest.
func (d Dirs) Get(target Target) string {
	if target == Dest {
		return d.Dest
	}
	return d.Src
}

// Files holds one glob expression per file set.
type Files struct {
	Src   []string
	Watch []string
}

// Get returns the patterns for target, which must be Src or Watch.
func (f Files) Get(target Target) []string {
	if target == Watch {
		return f.Watch
	}
	return f.Src
}

// A Func is a task's runnable body.
type Func func(ctx context.Context, w io.Writer) error

const (
	defaultDir   = "./"
	defaultFiles = "**/*"
)

// normalize applies the defaulting and broadcast rules to a raw task
// declaration.
func normalize(name string, root config.Root, in config.TaskInput) Config {
	c := Config{
		Name:     name,
		Deps:     append([]string{}, in.Deps...),
		Root:     Dirs{Src: root.Src, Dest: root.Dest},
		Dir:      Dirs{Src: defaultDir, Dest: defaultDir},
		Group:    in.Group,
		Filename: in.Filename,
	}

	rootSrc, rootDest := in.Root.Split()
	c.Root = Dirs{Src: or(rootSrc, c.Root.Src), Dest: or(rootDest, c.Root.Dest)}

	dirSrc, dirDest := in.Dir.Split()
	c.Dir = Dirs{Src: or(dirSrc, c.Dir.Src), Dest: or(dirDest, c.Dir.Dest)}

	if in.Group {
		c.Files = Files{Src: []string{}, Watch: []string{}}
		return c
	}

	src, watch := in.Files.Split()
	c.Files = Files{
		Src:   orPatterns(src, defaultFiles),
		Watch: orPatterns(watch, defaultFiles),
	}
	return c
}

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orPatterns(ps []string, def string) []string {
	if ps == nil {
		return []string{def}
	}
	return append([]string{}, ps...)
}
