package config

import (
	"fmt"
	"sort"
)

// Kind tags which shape a union value was written in.
type Kind int

const (
	// Unset means the field was omitted and should take its default.
	Unset Kind = iota

	// Scalar means a single value was given, to be broadcast to every
	// target.
	Scalar

	// PerTarget means a record with one value per target was given.
	PerTarget
)

// TaskInput is the raw declaration of a single task, as written in the
// [tasks] table of wires.toml. It is either a dependency array,
//
//	build = ["sass", "js"]
//
// which declares a group task, or a record,
//
//	[tasks.sass]
//	deps = ["fonts"]
//	root = "./assets"
//	dir = { src = "./sass", dest = "./css" }
//	files = { src = "*.scss", watch = "**/*.scss" }
type TaskInput struct {
	// Group is true when the task was declared with the dependency-array
	// shorthand. Group tasks have dependencies and nothing else.
	Group bool

	Deps  []string
	Root  PathSpec
	Dir   PathSpec
	Files FilesSpec

	// Filename optionally overrides the name of the task definition file.
	Filename string
}

// GroupTask declares a dependency-only task.
func GroupTask(deps ...string) TaskInput {
	return TaskInput{Group: true, Deps: deps}
}

// PathSpec is a directory given either as a scalar, used for both the src and
// dest targets, or as a per-target record.
type PathSpec struct {
	Kind Kind

	// Value is set when Kind is Scalar.
	Value string

	// Src and Dest are set when Kind is PerTarget. Either may be empty,
	// in which case that target takes its default.
	Src  string
	Dest string
}

// ScalarPath returns a PathSpec broadcasting p to both targets.
func ScalarPath(p string) PathSpec { return PathSpec{Kind: Scalar, Value: p} }

// PerTargetPath returns a PathSpec with separate src and dest values.
func PerTargetPath(src, dest string) PathSpec {
	return PathSpec{Kind: PerTarget, Src: src, Dest: dest}
}

// Split returns the src and dest values of p. Empty results mean
// "use the default".
func (p PathSpec) Split() (src, dest string) {
	switch p.Kind {
	case Scalar:
		return p.Value, p.Value
	case PerTarget:
		return p.Src, p.Dest
	default:
		return "", ""
	}
}

// FilesSpec is a glob expression given either as a scalar or array, used for
// both the src and watch targets, or as a per-target record whose values are
// themselves scalars or arrays.
type FilesSpec struct {
	Kind Kind

	// Patterns is set when Kind is Scalar. A scalar string and an array of
	// strings are both Scalar: either is broadcast to every target.
	Patterns []string

	// Src and Watch are set when Kind is PerTarget. A nil slice means
	// that target takes its default.
	Src   []string
	Watch []string
}

// ScalarFiles returns a FilesSpec broadcasting the given patterns to both
// targets.
func ScalarFiles(patterns ...string) FilesSpec {
	return FilesSpec{Kind: Scalar, Patterns: patterns}
}

// PerTargetFiles returns a FilesSpec with separate src and watch patterns.
func PerTargetFiles(src, watch []string) FilesSpec {
	return FilesSpec{Kind: PerTarget, Src: src, Watch: watch}
}

// Split returns the src and watch patterns of f. Nil results mean
// "use the default".
func (f FilesSpec) Split() (src, watch []string) {
	switch f.Kind {
	case Scalar:
		return f.Patterns, f.Patterns
	case PerTarget:
		return f.Src, f.Watch
	default:
		return nil, nil
	}
}

// parseTaskInput converts a decoded TOML value into a TaskInput, collecting
// every problem rather than stopping at the first.
func parseTaskInput(name string, raw any) (TaskInput, []error) {
	switch v := raw.(type) {
	case []any:
		deps, err := stringList(v)
		if err != nil {
			return TaskInput{}, []error{fmt.Errorf("Task '%s' is a group, but %s.", name, err)}
		}
		return GroupTask(deps...), nil

	case map[string]any:
		return parseTaskRecord(name, v)

	default:
		return TaskInput{}, []error{fmt.Errorf("Task '%s' must be a table or an array of dependencies, not %s.", name, describe(raw))}
	}
}

func parseTaskRecord(name string, rec map[string]any) (TaskInput, []error) {
	var (
		t        TaskInput
		problems []error
	)

	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := rec[k]
		var err error
		switch k {
		case "deps":
			arr, ok := v.([]any)
			if !ok {
				err = fmt.Errorf("must be an array, not %s", describe(v))
				break
			}
			t.Deps, err = stringList(arr)
		case "root":
			t.Root, err = parsePathSpec(v)
		case "dir":
			t.Dir, err = parsePathSpec(v)
		case "files":
			t.Files, err = parseFilesSpec(v)
		case "filename":
			s, ok := v.(string)
			if !ok {
				err = fmt.Errorf("must be a string, not %s", describe(v))
				break
			}
			t.Filename = s
		default:
			err = fmt.Errorf("is not a known field")
		}
		if err != nil {
			problems = append(problems, fmt.Errorf("Task '%s' has invalid '%s': %s.", name, k, err))
		}
	}

	return t, problems
}

func parsePathSpec(v any) (PathSpec, error) {
	switch v := v.(type) {
	case string:
		return ScalarPath(v), nil
	case map[string]any:
		var p PathSpec
		p.Kind = PerTarget
		for k, val := range v {
			s, ok := val.(string)
			if !ok {
				return PathSpec{}, fmt.Errorf("'%s' must be a string, not %s", k, describe(val))
			}
			switch k {
			case "src":
				p.Src = s
			case "dest":
				p.Dest = s
			default:
				return PathSpec{}, fmt.Errorf("'%s' is not a target; use 'src' or 'dest'", k)
			}
		}
		return p, nil
	default:
		return PathSpec{}, fmt.Errorf("must be a string or a table, not %s", describe(v))
	}
}

func parseFilesSpec(v any) (FilesSpec, error) {
	switch v := v.(type) {
	case string, []any:
		patterns, err := patternList(v)
		if err != nil {
			return FilesSpec{}, err
		}
		return ScalarFiles(patterns...), nil
	case map[string]any:
		var f FilesSpec
		f.Kind = PerTarget
		for k, val := range v {
			patterns, err := patternList(val)
			if err != nil {
				return FilesSpec{}, fmt.Errorf("'%s' %s", k, err)
			}
			switch k {
			case "src":
				f.Src = patterns
			case "watch":
				f.Watch = patterns
			default:
				return FilesSpec{}, fmt.Errorf("'%s' is not a target; use 'src' or 'watch'", k)
			}
		}
		return f, nil
	default:
		return FilesSpec{}, fmt.Errorf("must be a string, an array, or a table, not %s", describe(v))
	}
}

func patternList(v any) ([]string, error) {
	switch v := v.(type) {
	case string:
		return []string{v}, nil
	case []any:
		return stringList(v)
	default:
		return nil, fmt.Errorf("must be a string or an array, not %s", describe(v))
	}
}

func stringList(arr []any) ([]string, error) {
	out := make([]string, 0, len(arr))
	for i, v := range arr {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("item %d must be a string, not %s", i, describe(v))
		}
		out = append(out, s)
	}
	return out, nil
}

func describe(v any) string {
	switch v.(type) {
	case string:
		return "a string"
	case []any:
		return "an array"
	case map[string]any:
		return "a table"
	case bool:
		return "a boolean"
	case int64, float64:
		return "a number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
