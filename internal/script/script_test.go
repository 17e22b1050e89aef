package script_test

import (
	"context"
	"testing"
	"time"

	"github.com/amonks/wires/internal/safebuffer"
	"github.com/amonks/wires/internal/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart(t *testing.T) {
	for _, tt := range []struct {
		name   string
		dir    string
		env    map[string]string
		text   string
		stdout string
		stderr string
		code   int
	}{
		{name: "streams", dir: ".", text: "echo hello\n>&2 echo world", stdout: "hello\n", stderr: "world\n"},
		{name: "dir", dir: "/", text: "pwd", stdout: "/\n"},
		{name: "env", dir: ".", env: map[string]string{"WIRES_TASK": "sass"}, text: "echo $WIRES_TASK", stdout: "sass\n"},
		{name: "inherited env", dir: ".", text: "test -n \"$PATH\" && echo ok", stdout: "ok\n"},
		{name: "exit code", dir: ".", text: "echo partial; exit 3", stdout: "partial\n", code: 3},
	} {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr := safebuffer.New(), safebuffer.New()
			err := script.New(tt.dir, tt.env, tt.text).Start(context.Background(), stdout, stderr)

			if tt.code == 0 {
				assert.NoError(t, err)
			} else {
				var exitErr *script.ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, tt.code, exitErr.Code)
			}
			assert.Equal(t, tt.stdout, stdout.String())
			assert.Equal(t, tt.stderr, stderr.String())
		})
	}
}

// start runs text in the background, cancels it once it has had time to
// start, and returns the channel its result arrives on.
func start(t *testing.T, text string) (<-chan error, *safebuffer.Buffer) {
	t.Helper()
	stderr := safebuffer.New()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	done := make(chan error, 1)
	go func() { done <- script.New(".", nil, text).Start(ctx, safebuffer.New(), stderr) }()
	time.Sleep(10 * time.Millisecond)
	cancel()
	return done, stderr
}

func TestCancel(t *testing.T) {
	t.Run("sigint", func(t *testing.T) {
		done, stderr := start(t, "sleep 100")
		select {
		case <-time.After(time.Second):
			t.Fatal("script did not exit after sigint")
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
			assert.Contains(t, stderr.String(), "canceled; stopping")
		}
	})

	t.Run("sigkill after the grace period", func(t *testing.T) {
		done, stderr := start(t, "trap '' SIGINT ; sleep 100 ; echo done")
		select {
		case <-done:
			t.Fatal("script exited despite ignoring sigint")
		case <-time.After(time.Second):
		}
		select {
		case <-time.After(script.GracePeriod + time.Second):
			t.Fatal("script did not exit after sigkill")
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
			assert.Contains(t, stderr.String(), "canceled; stopping")
		}
	})
}
