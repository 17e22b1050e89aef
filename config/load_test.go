package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := Load("testdata/basic")
	require.NoError(t, err)

	assert.Equal(t, Root{Src: "./src", Dest: "./dest"}, cfg.Root)
	assert.Equal(t, Paths{
		Build:   "./build",
		Tasks:   "build/tasks",
		Options: "build/options",
	}, cfg.Paths)
	assert.Equal(t, []string{"bar", "build", "foo", "nested", "sass", "wiz"}, cfg.IDs())

	assert.Equal(t, map[string]TaskInput{
		"build": GroupTask("sass", "foo"),
		"sass": {
			Dir:   PerTargetPath("./sass", "./css"),
			Files: PerTargetFiles([]string{"*.scss"}, []string{"**/*.scss"}),
		},
		"foo": {
			Root:  ScalarPath("./dest"),
			Dir:   PerTargetPath("./foo/src", "./foo"),
			Files: ScalarFiles("**/*"),
		},
		"bar": {
			Root:  ScalarPath("./some/path"),
			Files: ScalarFiles("**/*.txt"),
		},
		"wiz": {
			Dir: ScalarPath("./dirs/wiz"),
		},
		"nested": {
			Deps:     []string{"sass"},
			Files:    ScalarFiles("**/*.txt", "sass"),
			Filename: "nested-task.sh",
		},
	}, cfg.Tasks)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist")
	assert.Error(t, err)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(``))
	require.NoError(t, err)

	assert.Equal(t, Root{Src: "./src", Dest: "./dest"}, cfg.Root)
	assert.Equal(t, "./build", cfg.Paths.Build)
	assert.Equal(t, "build/tasks", cfg.Paths.Tasks)
	assert.Equal(t, "build/options", cfg.Paths.Options)
	assert.Empty(t, cfg.Tasks)
}

func TestParsePartialDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[root]
dest = "./public"

[paths]
build = "./tools"
options = "./opts"
`))
	require.NoError(t, err)

	assert.Equal(t, Root{Src: "./src", Dest: "./public"}, cfg.Root)
	assert.Equal(t, Paths{
		Build:   "./tools",
		Tasks:   "tools/tasks",
		Options: "./opts",
	}, cfg.Paths)
}

func TestParseProblems(t *testing.T) {
	for _, tc := range []struct {
		name    string
		toml    string
		problem string
	}{
		{
			name:    "task is a scalar",
			toml:    "[tasks]\nsass = 5",
			problem: "Task 'sass' must be a table or an array of dependencies, not a number.",
		},
		{
			name:    "group with non-string deps",
			toml:    "[tasks]\nbuild = [\"a\", 1]",
			problem: "Task 'build' is a group, but item 1 must be a string, not a number.",
		},
		{
			name:    "unknown task field",
			toml:    "[tasks.sass]\nsrc = \"x\"",
			problem: "Task 'sass' has invalid 'src': is not a known field.",
		},
		{
			name:    "unknown dir target",
			toml:    "[tasks.sass]\ndir = { watch = \"x\" }",
			problem: "Task 'sass' has invalid 'dir': 'watch' is not a target; use 'src' or 'dest'.",
		},
		{
			name:    "unknown files target",
			toml:    "[tasks.sass]\nfiles = { dest = \"x\" }",
			problem: "Task 'sass' has invalid 'files': 'dest' is not a target; use 'src' or 'watch'.",
		},
		{
			name:    "deps is a string",
			toml:    "[tasks.sass]\ndeps = \"fonts\"",
			problem: "Task 'sass' has invalid 'deps': must be an array, not a string.",
		},
		{
			name:    "glob task name",
			toml:    "[tasks]\n\"*.js\" = [\"a\"]",
			problem: "Task '*.js' is a glob, so it can never be referenced by name.",
		},
		{
			name:    "negated task name",
			toml:    "[tasks]\n\"!js\" = [\"a\"]",
			problem: "Task '!js' begins with '!', which is reserved for negation.",
		},
		{
			name:    "self dependency",
			toml:    "[tasks.js]\ndeps = [\"js\"]",
			problem: "Task 'js' lists itself as a dependency.",
		},
		{
			name:    "empty pattern",
			toml:    "[tasks.js]\nfiles = [\"\"]",
			problem: "Task 'js' has an empty file pattern.",
		},
		{
			name:    "unknown top-level key",
			toml:    "[roots]\nsrc = \"x\"",
			problem: "Unknown key 'roots.src'.",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.toml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
			assert.Contains(t, err.Error(), "- "+tc.problem)
		})
	}
}

func TestParseMalformedRoot(t *testing.T) {
	for _, tc := range []struct{ toml, problem string }{
		{"tasks = 5", "- 'tasks' must be a table, not a number."},
		{"tasks = \"sass\"", "- 'tasks' must be a table, not a string."},
		{"tasks = [\"sass\"]", "- 'tasks' must be a table, not an array."},
	} {
		cfg, err := Parse([]byte(tc.toml))
		require.Error(t, err, tc.toml)
		assert.Contains(t, err.Error(), tc.problem)
		assert.Empty(t, cfg.Tasks)
	}

	cfg, err := Parse([]byte(`[root]`))
	require.NoError(t, err)
	assert.Empty(t, cfg.Tasks)

	_, err = Parse([]byte(`root = [1, 2]`))
	assert.Error(t, err)
}

func TestIsGlob(t *testing.T) {
	for s, expect := range map[string]bool{
		"**/*.js":      true,
		"*.scss":       true,
		"file?.txt":    true,
		"[abc].txt":    true,
		"{a,b}/*.txt":  true,
		"+(a|b).txt":   true,
		"sass":         false,
		"my-task":      false,
		"src/main.go":  false,
		"[unbalanced":  false,
		"{unbalanced":  false,
		"":             false,
		"trailing(":    false,
		"plain(paren)": false,
	} {
		assert.Equal(t, expect, IsGlob(s), s)
	}
}

func TestSplit(t *testing.T) {
	src, dest := ScalarPath("./a").Split()
	assert.Equal(t, "./a", src)
	assert.Equal(t, "./a", dest)

	src, dest = PathSpec{}.Split()
	assert.Equal(t, "", src)
	assert.Equal(t, "", dest)

	srcFiles, watchFiles := ScalarFiles("a", "b").Split()
	assert.Equal(t, []string{"a", "b"}, srcFiles)
	assert.Equal(t, []string{"a", "b"}, watchFiles)

	srcFiles, watchFiles = PerTargetFiles([]string{"a"}, nil).Split()
	assert.Equal(t, []string{"a"}, srcFiles)
	assert.Nil(t, watchFiles)
}
