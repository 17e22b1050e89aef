package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
)

// file is the on-disk shape of wires.toml. Tasks stay undecoded until
// parseTaskInput, since each one may be an array or a table, and the tasks
// key itself may be something other than a table.
type file struct {
	Root  Root  `toml:"root"`
	Paths Paths `toml:"paths"`
	Tasks any   `toml:"tasks"`
}

// Load reads the wires.toml file in the given directory.
func Load(dir string) (Config, error) {
	bs, err := os.ReadFile(filepath.Join(dir, Filename))
	if err != nil {
		return Config{}, err
	}
	return Parse(bs)
}

// Parse parses the contents of a wires.toml file, injects the defaults, and
// validates the result. If the error is not nil, its [error.Error] will
// return a formatted multiline string describing every problem found.
func Parse(bs []byte) (Config, error) {
	var parsed file
	md, err := toml.Decode(string(bs), &parsed)
	if err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	var problems []error
	for _, key := range md.Undecoded() {
		if len(key) > 0 && key[0] == "tasks" {
			continue
		}
		problems = append(problems, fmt.Errorf("Unknown key '%s'.", key.String()))
	}

	table, ok := parsed.Tasks.(map[string]any)
	if parsed.Tasks != nil && !ok {
		problems = append(problems, fmt.Errorf("'tasks' must be a table, not %s.", describe(parsed.Tasks)))
	}

	cfg := Config{
		Root:  parsed.Root,
		Paths: parsed.Paths,
		Tasks: make(map[string]TaskInput, len(table)),
	}
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t, errs := parseTaskInput(name, table[name])
		problems = append(problems, errs...)
		cfg.Tasks[name] = t
	}

	cfg, err = cfg.WithDefaults()
	if err != nil {
		return Config{}, err
	}

	problems = append(problems, cfg.problems()...)
	if len(problems) != 0 {
		return Config{}, joinProblems(problems)
	}
	return cfg, nil
}

// WithDefaults returns a copy of the Config with every omitted global setting
// set to its default value.
func (c Config) WithDefaults() (Config, error) {
	if err := mergo.Merge(&c, Default()); err != nil {
		return Config{}, err
	}
	c.derivePaths()
	return c, nil
}

// Validate returns an error describing every problem with the Config, or nil
// if there are none.
func (c Config) Validate() error {
	if problems := c.problems(); len(problems) != 0 {
		return joinProblems(problems)
	}
	return nil
}

func (c Config) problems() []error {
	var problems []error

	for _, id := range c.IDs() {
		t := c.Tasks[id]

		if id == "" {
			problems = append(problems, errors.New("Task has no name."))
			continue
		}
		for _, r := range id {
			if unicode.IsSpace(r) {
				problems = append(problems, fmt.Errorf("Task '%s' has whitespace in its name.", id))
				break
			}
		}
		if strings.HasPrefix(id, "!") {
			problems = append(problems, fmt.Errorf("Task '%s' begins with '!', which is reserved for negation.", id))
		}
		if IsGlob(id) {
			problems = append(problems, fmt.Errorf("Task '%s' is a glob, so it can never be referenced by name.", id))
		}

		for _, dep := range t.Deps {
			if dep == id {
				problems = append(problems, fmt.Errorf("Task '%s' lists itself as a dependency.", id))
			}
		}

		src, watch := t.Files.Split()
		for _, p := range append(append([]string{}, src...), watch...) {
			if p == "" || p == "!" {
				problems = append(problems, fmt.Errorf("Task '%s' has an empty file pattern.", id))
				break
			}
		}
	}

	return problems
}

// IsGlob reports whether s is written in glob syntax: it contains a wildcard,
// a character class, an alternation, or an extglob, and it is a well-formed
// pattern. Strings that are not globs may be task names.
func IsGlob(s string) bool {
	if !strings.ContainsAny(s, "*?[{") && !hasExtglob(s) {
		return false
	}
	return doublestar.ValidatePattern(s)
}

func hasExtglob(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i+1] == '(' && strings.IndexByte("?*+@!", s[i]) >= 0 {
			return strings.IndexByte(s[i:], ')') > 0
		}
	}
	return false
}

func joinProblems(problems []error) error {
	lines := []string{"invalid config"}
	for _, p := range problems {
		lines = append(lines, "- "+p.Error())
	}
	return errors.New(strings.Join(lines, "\n"))
}
