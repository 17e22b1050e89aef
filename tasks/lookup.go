package tasks

import (
	"context"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/amonks/wires/internal/script"
	"github.com/iancoleman/strcase"
	"github.com/spf13/afero"
)

// A Lookup finds task definition files. The Store consults it for tasks which
// are not declared in the configuration.
type Lookup interface {
	// Exists returns true if there is a task definition file for the
	// named task. If filename is not empty, it names the file instead of
	// the task name.
	Exists(name, filename string) bool

	// Load returns the body of the named task.
	Load(name, filename string) (Func, error)

	// IDs returns, in alphabetical order, the names of the tasks that
	// have task definition files.
	IDs() []string
}

// NoLookup is a Lookup that never finds anything.
type NoLookup struct{}

var _ Lookup = NoLookup{}

func (NoLookup) Exists(string, string) bool { return false }
func (NoLookup) IDs() []string              { return nil }

func (NoLookup) Load(name, _ string) (Func, error) {
	return nil, &lookupError{name}
}

type lookupError struct{ name string }

func (e *lookupError) Error() string { return "no task definition file for '" + e.name + "'" }

// ScriptExt is the extension of task definition files.
const ScriptExt = ".sh"

// FileLookup finds task definition files in a directory. Each file is a bash
// script named after the kebab-cased task name, so the task "buildCSS" is
// defined by "build-css.sh".
type FileLookup struct {
	fs      afero.Fs
	dir     string
	workdir string
}

var _ Lookup = &FileLookup{}

// NewFileLookup creates a FileLookup which searches dir, within fs. Scripts
// run in workdir; if workdir is empty, they run in the current working
// directory.
func NewFileLookup(fs afero.Fs, dir, workdir string) *FileLookup {
	return &FileLookup{fs: fs, dir: dir, workdir: workdir}
}

// Path returns the location of the task definition file for the named task.
func (l *FileLookup) Path(name, filename string) string {
	return path.Join(l.dir, fileStem(name, filename)+ScriptExt)
}

// fileStem is the name of a task's definition file, without its extension.
func fileStem(name, filename string) string {
	if filename == "" {
		return strcase.ToKebab(name)
	}
	return strings.TrimSuffix(filename, ScriptExt)
}

// Exists implements [Lookup].
func (l *FileLookup) Exists(name, filename string) bool {
	if name == "" {
		return false
	}
	info, err := l.fs.Stat(l.Path(name, filename))
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IDs implements [Lookup]. A file is only listed if its stem names a task
// that finds it, so "build_css.sh", which the task "build_css" would not
// find, is left out.
func (l *FileLookup) IDs() []string {
	matches, err := afero.Glob(l.fs, path.Join(l.dir, "*"+ScriptExt))
	if err != nil {
		return nil
	}
	var ids []string
	for _, m := range matches {
		id := strings.TrimSuffix(path.Base(m), ScriptExt)
		if l.Exists(id, "") {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Load implements [Lookup]. The returned Func runs the script with bash, with
// WIRES_TASK set to the task name, writing both stdout and stderr to its
// writer.
func (l *FileLookup) Load(name, filename string) (Func, error) {
	bs, err := afero.ReadFile(l.fs, l.Path(name, filename))
	if err != nil {
		return nil, err
	}
	s := script.New(l.workdir, map[string]string{"WIRES_TASK": name}, string(bs))
	return func(ctx context.Context, w io.Writer) error {
		return s.Start(ctx, w, w)
	}, nil
}
