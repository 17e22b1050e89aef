package runner_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/amonks/wires/internal/fixtures"
	"github.com/amonks/wires/internal/seq"
	"github.com/amonks/wires/internal/watcher"
	"github.com/amonks/wires/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTime = time.Second

func TestRunner(t *testing.T) {
	t.Run("exit run with no dependencies succeeds", func(t *testing.T) {
		var (
			mw  = fixtures.NewWriter()
			r   = runner.New(runner.ModeExit, ".", mw)
			ctx = context.Background()
		)
		r.Task("task", nil, fixtures.Func("task"))
		err := r.Run(ctx, "task")
		assert.NoError(t, err)
		assert.Equal(t, []string{
			"[task] starting",
			"[task] ! task: execute",
			"[task] exit ok",
			"[@wires] done",
		}, mw.Lines())
	})

	t.Run("exit run with no dependencies fails", func(t *testing.T) {
		var (
			mw  = fixtures.NewWriter()
			r   = runner.New(runner.ModeExit, ".", mw)
			ctx = context.Background()
		)
		r.Task("task", nil, fixtures.Failing("task"))
		err := r.Run(ctx, "task")
		assert.EqualError(t, err, "task 'task' failed: fail")
		assert.Equal(t, []string{
			"[task] starting",
			"[task] ! task: fail",
			"[task] exit: fail",
		}, mw.Lines())
	})

	t.Run("exit run with dependencies succeeds", func(t *testing.T) {
		var (
			mw  = fixtures.NewWriter()
			r   = runner.New(runner.ModeExit, ".", mw)
			ctx = context.Background()
		)
		r.Task("1", nil, fixtures.Func("1"))
		r.Task("2", []string{"1"}, fixtures.Func("2"))
		r.Task("3", []string{"2", "1"}, fixtures.Func("3"))
		err := r.Run(ctx, "3")
		assert.NoError(t, err)
		seq.AssertContainsSequence(t, mw.Lines(),
			"[1] ! 1: execute",
			"[2] ! 2: execute",
			"[3] ! 3: execute",
		)
	})

	t.Run("exit run has failing dependency", func(t *testing.T) {
		var (
			mw  = fixtures.NewWriter()
			r   = runner.New(runner.ModeExit, ".", mw)
			ctx = context.Background()
		)
		r.Task("failing-task", nil, fixtures.Failing("failing-task"))
		r.Task("task", []string{"failing-task"}, fixtures.Func("task"))
		err := r.Run(ctx, "task")
		assert.Error(t, err)
		assert.Empty(t, mw.Filter("[task]"))
	})

	t.Run("tasks without bodies only run their dependencies", func(t *testing.T) {
		var (
			mw  = fixtures.NewWriter()
			r   = runner.New(runner.ModeExit, ".", mw)
			ctx = context.Background()
		)
		r.Task("a", nil, fixtures.Func("a"))
		r.Task("b", nil, fixtures.Func("b"))
		r.Task("build", []string{"a", "b"}, nil)
		require.NoError(t, r.Run(ctx, "build"))
		assert.Empty(t, mw.Filter("[build]"))
		assert.Len(t, mw.Filter("execute"), 2)
	})

	t.Run("canceled before starting", func(t *testing.T) {
		var (
			mw          = fixtures.NewWriter()
			r           = runner.New(runner.ModeExit, ".", mw)
			ctx, cancel = context.WithCancel(context.Background())
		)
		r.Task("task", nil, fixtures.Func("task"))
		cancel()
		err := r.Run(ctx, "task")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, []string{"[@wires] run canceled"}, mw.Lines())
	})
}

func TestPlan(t *testing.T) {
	r := runner.New(runner.ModeExit, ".", fixtures.NewWriter())
	r.Task("fonts", nil, nil)
	r.Task("sass", []string{"fonts"}, nil)
	r.Task("js", nil, nil)
	r.Task("html", []string{"sass", "js"}, nil)
	r.Task("build", []string{"html", "sass", "js"}, nil)
	r.Task("cyc-a", []string{"cyc-b"}, nil)
	r.Task("cyc-b", []string{"cyc-a"}, nil)
	r.Task("broken", []string{"ghost"}, nil)

	t.Run("each task once, after its dependencies", func(t *testing.T) {
		order, err := r.Plan("build")
		require.NoError(t, err)
		assert.Equal(t, []string{"fonts", "sass", "js", "html", "build"}, order)
	})

	t.Run("requested order", func(t *testing.T) {
		order, err := r.Plan("js", "sass", "js")
		require.NoError(t, err)
		assert.Equal(t, []string{"js", "fonts", "sass"}, order)
	})

	t.Run("cycles", func(t *testing.T) {
		_, err := r.Plan("cyc-a")
		assert.EqualError(t, err, "dependency cycle: cyc-a -> cyc-b -> cyc-a")
	})

	t.Run("missing tasks", func(t *testing.T) {
		_, err := r.Plan("nope")
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "Task nope not found. Tasks are,\n - broken\n"))

		_, err = r.Plan("broken")
		assert.ErrorContains(t, err, "Task ghost not found.")
	})
}

func TestWatch(t *testing.T) {
	watcher.Mock()
	defer watcher.Unmock()

	t.Run("keepalive run reruns tasks on change", func(t *testing.T) {
		var (
			mw          = fixtures.NewWriter()
			r           = runner.New(runner.ModeKeepalive, ".", mw)
			counter     = fixtures.NewCounter()
			ctx, cancel = context.WithCancel(context.Background())
			done        = make(chan error)
		)
		r.Task("sass", nil, counter.Func("sass"))
		go func() { done <- r.Run(ctx, "sass") }()

		select {
		case <-counter.Ran():
		case <-time.After(waitTime):
			t.Fatal("sass never ran")
		}

		require.NoError(t, r.Watch(ctx, "sass", []string{"src/sass/**/*.scss"}))
		require.NoError(t, r.Watch(ctx, "sass", []string{"src/sass/**/*.scss"}))
		assert.Equal(t, []string{"sass"}, r.Watching())
		assert.Equal(t, 1, watcher.Watching())

		watcher.Dispatch("src/sass/main.scss")
		select {
		case <-counter.Ran():
		case <-time.After(waitTime):
			t.Fatal("sass never reran")
		}
		assert.Equal(t, 2, counter.Runs())

		cancel()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(waitTime):
			t.Fatal("run never returned")
		}
		assert.Empty(t, r.Watching())
		assert.Equal(t, 0, watcher.Watching())

		seq.AssertContainsSequence(t, mw.Lines(),
			"[sass] ! sass: run 1",
			"[@watch] watching src/sass/**/*.scss for sass",
			"[@watch] src/sass/main.scss changed; rerunning sass",
			"[sass] ! sass: run 2",
		)
	})

	t.Run("globs are relative to the project directory", func(t *testing.T) {
		var (
			mw          = fixtures.NewWriter()
			r           = runner.New(runner.ModeExit, "site", mw)
			ctx, cancel = context.WithCancel(context.Background())
			counter     = fixtures.NewCounter()
		)
		defer cancel()
		r.Task("js", nil, counter.Func("js"))
		require.NoError(t, r.Watch(ctx, "js", []string{"src/js/*.js", "!src/js/vendor.js"}))

		assert.Panics(t, func() { watcher.Dispatch("src/js/app.js") })
		assert.Panics(t, func() { watcher.Dispatch("site/src/js/vendor.js") })
		watcher.Dispatch("site/src/js/app.js")
		select {
		case <-counter.Ran():
		case <-time.After(waitTime):
			t.Fatal("js never ran")
		}
		require.NoError(t, r.Run(ctx))
		assert.Equal(t, 0, watcher.Watching())
	})

	t.Run("exit run stops watches", func(t *testing.T) {
		var (
			mw  = fixtures.NewWriter()
			r   = runner.New(runner.ModeExit, ".", mw)
			ctx = context.Background()
		)
		r.Task("js", nil, func(ctx context.Context, _ io.Writer) error {
			return r.Watch(ctx, "js", []string{"src/js/*.js"})
		})
		require.NoError(t, r.Run(ctx, "js"))
		assert.Empty(t, r.Watching())
		assert.Equal(t, 0, watcher.Watching())
	})

	t.Run("failed run stops watches", func(t *testing.T) {
		var (
			mw  = fixtures.NewWriter()
			r   = runner.New(runner.ModeKeepalive, ".", mw)
			ctx = context.Background()
		)
		r.Task("js", nil, func(ctx context.Context, _ io.Writer) error {
			return r.Watch(ctx, "js", []string{"src/js/*.js"})
		})
		r.Task("lint", nil, fixtures.Failing("lint"))
		err := r.Run(ctx, "js", "lint")
		assert.EqualError(t, err, "task 'lint' failed: fail")
		assert.Empty(t, r.Watching())
		assert.Equal(t, 0, watcher.Watching())
		assert.Panics(t, func() { watcher.Dispatch("src/js/app.js") })
	})
}
