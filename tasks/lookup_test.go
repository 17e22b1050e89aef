package tasks_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/amonks/wires/tasks"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLookupPath(t *testing.T) {
	l := tasks.NewFileLookup(afero.NewMemMapFs(), "build/tasks", "")

	for _, tc := range []struct {
		name, filename, expect string
	}{
		{"sass", "", "build/tasks/sass.sh"},
		{"buildCSS", "", "build/tasks/build-css.sh"},
		{"lint_js", "", "build/tasks/lint-js.sh"},
		{"sass", "styles", "build/tasks/styles.sh"},
		{"sass", "styles.sh", "build/tasks/styles.sh"},
	} {
		assert.Equal(t, tc.expect, l.Path(tc.name, tc.filename), "%s/%s", tc.name, tc.filename)
	}
}

func TestFileLookupExists(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "tasks/js.sh", []byte("true"), 0o644))
	require.NoError(t, fs.MkdirAll("tasks/dir.sh", 0o755))
	l := tasks.NewFileLookup(fs, "tasks", "")

	assert.True(t, l.Exists("js", ""))
	assert.False(t, l.Exists("css", ""))
	assert.False(t, l.Exists("dir", ""), "directories are not task files")
	assert.False(t, l.Exists("", ""))
}

func TestFileLookupLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "tasks/say-hi.sh", []byte(`echo "hi from $WIRES_TASK"`), 0o644))
	l := tasks.NewFileLookup(fs, "tasks", "")

	fn, err := l.Load("sayHi", "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, fn(context.Background(), &buf))
	assert.Equal(t, "hi from sayHi\n", buf.String())

	_, err = l.Load("missing", "")
	assert.Error(t, err)
}

func TestFileLookupIDs(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, f := range []string{"tasks/sass.sh", "tasks/lint-js.sh", "tasks/build_css.sh", "tasks/README.md", "tasks/nested/deep.sh"} {
		require.NoError(t, afero.WriteFile(fs, f, []byte("true"), 0o644))
	}
	require.NoError(t, fs.MkdirAll("tasks/dir.sh", 0o755))

	l := tasks.NewFileLookup(fs, "tasks", "")
	assert.Equal(t, []string{"lint-js", "sass"}, l.IDs())

	assert.Empty(t, tasks.NewFileLookup(fs, "missing", "").IDs())
}

func TestNoLookup(t *testing.T) {
	var l tasks.NoLookup
	assert.False(t, l.Exists("anything", ""))
	assert.Empty(t, l.IDs())
	_, err := l.Load("anything", "")
	assert.EqualError(t, err, "no task definition file for 'anything'")
}
