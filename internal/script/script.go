package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/amonks/wires/internal/styles"
)

// Script runs the text of a task definition file in a bash process.
type Script struct {
	Dir  string
	Env  map[string]string
	Text string
}

// New creates a new Script with the given working directory, environment, and
// text. If dir is the empty string, the script is run in the current working
// directory. Env is appended to the current environment. Effectively, running
// a Script is equivalent to
//
//	$ cd $DIR && $ENV bash -c "$TEXT"
func New(dir string, env map[string]string, text string) Script {
	return Script{
		Dir:  dir,
		Env:  env,
		Text: text,
	}
}

// GracePeriod is how long a canceled script has to exit after SIGINT before
// it is killed.
var GracePeriod = 2 * time.Second

// ExitError is returned by Start when the script exits with a non-zero
// status.
type ExitError struct{ Code int }

func (e *ExitError) Error() string { return fmt.Sprintf("exit %d", e.Code) }

// Start executes the script and does not return until it is done. It is safe
// to call Start multiple times, including concurrently.
//
// When ctx is canceled, the script's whole process group receives SIGINT; if
// it is still running after [GracePeriod], it is killed. Start returns an
// error wrapping ctx.Err() if the script is canceled before it completes.
func (s Script) Start(ctx context.Context, stdout, stderr io.Writer) error {
	bash, err := findBash()
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, bash, "-c", s.Text)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Dir = s.Dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = append(os.Environ(), s.environ()...)
	cmd.WaitDelay = GracePeriod + time.Second

	done := make(chan struct{})
	defer close(done)
	cmd.Cancel = func() error {
		fmt.Fprintln(stderr, styles.Notice.Render("canceled; stopping"))
		pgid := -cmd.Process.Pid
		if err := syscall.Kill(pgid, syscall.SIGINT); err != nil && !errors.Is(err, syscall.ESRCH) {
			return fmt.Errorf("sigint error: %w", err)
		}
		go func() {
			select {
			case <-done:
			case <-time.After(GracePeriod):
				syscall.Kill(pgid, syscall.SIGKILL)
			}
		}()
		return nil
	}

	err = cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Join(ctxErr, ignoreSignaled(err))
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode()}
	}
	return err
}

func (s Script) environ() []string {
	env := make([]string, 0, len(s.Env))
	for k, v := range s.Env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}

// ignoreSignaled drops the error produced by the process dying from our own
// signal, since the cancelation already explains it.
func ignoreSignaled(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) || errors.Is(err, exec.ErrWaitDelay) {
		return nil
	}
	return err
}

var (
	bashOnce sync.Once
	bashPath string
	bashErr  error
)

func findBash() (string, error) {
	bashOnce.Do(func() {
		var b bytes.Buffer
		which := exec.Command("/bin/sh", "-c", "which bash")
		which.Stdout = &b
		if err := which.Run(); err != nil {
			bashErr = fmt.Errorf("finding bash: %w", err)
			return
		}
		bashPath = strings.TrimSpace(b.String())
	})
	return bashPath, bashErr
}
