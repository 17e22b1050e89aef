// Package config defines the wires.toml configuration object: the global
// root paths, the locations of task definition files, and the raw,
// un-normalized declaration of every task.
//
// The shortcuts allowed in wires.toml (a scalar where a per-target record is
// expected, a dependency array where a task record is expected) are modeled
// here as small tagged unions. They never leave this package in raw form:
// [tasks.Store] normalizes them into fixed records.
package config

import (
	"path"
	"sort"
)

// Filename is the name of the configuration file read by [Load].
const Filename = "wires.toml"

// Config is the configuration object a resolver is built from. You can load
// one from disk with [Load] or [Parse], or you can create your own in code;
// call [Config.WithDefaults] on a hand-built Config before using it.
type Config struct {
	Root  Root
	Paths Paths
	Tasks map[string]TaskInput
}

// Root holds the global roots of the source and destination trees. Tasks
// without their own root inherit these.
type Root struct {
	Src  string `toml:"src"`
	Dest string `toml:"dest"`
}

// Paths holds the locations wires looks in for build support files.
type Paths struct {
	// Build is the build directory. Tasks and Options default to
	// directories inside it.
	Build string `toml:"build"`

	// Tasks is the directory holding task definition files, one per task,
	// named after the kebab-cased task name.
	Tasks string `toml:"tasks"`

	// Options is the directory holding per-plugin options files.
	Options string `toml:"options"`
}

// Default returns the configuration every loaded Config is merged over.
func Default() Config {
	return Config{
		Root: Root{
			Src:  "./src",
			Dest: "./dest",
		},
		Paths: Paths{
			Build: "./build",
		},
		Tasks: map[string]TaskInput{},
	}
}

// IDs returns, in alphabetical order, the names of the declared tasks.
func (c Config) IDs() []string {
	ids := make([]string, 0, len(c.Tasks))
	for id := range c.Tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Task returns the raw declaration for the given task name, and whether
// there is one.
func (c Config) Task(name string) (TaskInput, bool) {
	t, ok := c.Tasks[name]
	return t, ok
}

// derivePaths fills in the paths which default relative to the build
// directory.
func (c *Config) derivePaths() {
	if c.Paths.Tasks == "" {
		c.Paths.Tasks = path.Join(c.Paths.Build, "tasks")
	}
	if c.Paths.Options == "" {
		c.Paths.Options = path.Join(c.Paths.Build, "options")
	}
}
