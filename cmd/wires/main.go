package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"reflect"
	"strings"
	"syscall"

	"github.com/amonks/wires"
	"github.com/amonks/wires/config"
	"github.com/amonks/wires/internal/color"
	"github.com/amonks/wires/internal/diag"
	"github.com/amonks/wires/internal/styles"
	"github.com/amonks/wires/printer"
	"github.com/amonks/wires/registrar"
	"github.com/amonks/wires/resolver"
	"github.com/amonks/wires/runner"
	"github.com/amonks/wires/tasks"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
	"github.com/spf13/afero"
	"golang.org/x/term"
)

type options struct {
	dir     string
	target  string
	list    bool
	glob    bool
	files   bool
	path    bool
	watch   bool
	verbose bool
	version bool
	help    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		diag.Default(false).Fatal(err.Error())
	}
}

func flagSet(o *options, stderr io.Writer) *flag.FlagSet {
	f := flag.NewFlagSet("wires", flag.ContinueOnError)
	f.SetOutput(stderr)

	f.StringVar(&o.dir, "dir", ".", "Look for wires.toml in the given directory. Every configured path is relative to it.")
	f.BoolVar(&o.list, "list", false, "Display the task list and exit. If wires is invoked with both -list and task IDs, those tasks and their dependencies are displayed.")
	f.BoolVar(&o.glob, "glob", false, "Print the globs the arguments resolve to, one per line, and exit. Each argument is a glob or a task name, and either may be negated with a leading '!'.")
	f.BoolVar(&o.files, "files", false, "Like -glob, but print the files that the globs match.")
	f.BoolVar(&o.path, "path", false, "Print the directory of each task named by the arguments, and exit.")
	f.StringVar(&o.target, "target", "", "The target for -glob, -files, and -path.\nWith -glob and -files, one of 'main', 'src', or 'watch'; if unset, both of a task's file sets are used.\nWith -path, one of 'src', 'base', 'watch', or 'dest'; if unset, 'src' is used.")
	f.BoolVar(&o.watch, "watch", false, "After running the given tasks, keep running, and rerun each task whenever its watched files change.")
	f.BoolVar(&o.verbose, "verbose", false, "Also report notices, such as references to unknown tasks.")
	f.BoolVar(&o.version, "version", false, "Display the version and exit.")
	f.BoolVar(&o.help, "help", false, "Display the help text and exit.")

	f.Usage = func() {
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, usageText())
		fmt.Fprintln(stderr, flagText(f))
	}
	return f
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var o options
	f := flagSet(&o, stderr)
	if err := f.Parse(args); errors.Is(err, flag.ErrHelp) {
		return nil
	} else if err != nil {
		return err
	}

	if !isTerminal(stdout) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	if o.version {
		fmt.Fprintln(stdout, versionText())
		return nil
	} else if o.help {
		fmt.Fprintln(stdout, "\n"+helpText(f))
		return nil
	}

	cfg, err := config.Load(o.dir)
	if err != nil {
		return fmt.Errorf("loading %s: %w", config.Filename, err)
	}

	abs, err := filepath.Abs(o.dir)
	if err != nil {
		return err
	}
	fs := afero.NewBasePathFs(afero.NewOsFs(), abs)
	log := diag.New(stderr, diag.Options{Verbose: o.verbose})
	res := resolver.New(cfg,
		resolver.WithLookup(tasks.NewFileLookup(fs, cfg.Paths.Tasks, abs)),
		resolver.WithLogger(log),
		resolver.WithFs(fs))

	ids := f.Args()
	switch {
	case o.list:
		fmt.Fprint(stdout, tasklistText(res, ids))
		return nil
	case o.glob, o.files:
		return printGlobs(stdout, res, o, ids)
	case o.path:
		return printPaths(stdout, res, o.target, ids)
	case len(ids) == 0:
		fmt.Fprintln(stdout, helpText(f))
		return nil
	}

	mode := runner.ModeExit
	if o.watch {
		mode = runner.ModeKeepalive
	}
	keys := append(res.Store().Subtree(ids...), runner.InternalTaskInterleaved, runner.InternalTaskWatch)
	p := printer.New(stdout, keys...)
	if !isTerminal(stdout) {
		p.NoColor()
	}
	host := runner.New(mode, watchDir(abs, o.dir), p)
	reg := registrar.New(res, host, log, o.watch)
	if err := reg.RegisterAll(ids...); err != nil {
		return err
	}

	if err := reg.Run(ctx, ids...); errors.Is(err, context.Canceled) {
		fmt.Fprintln(stdout, "Canceled")
		return nil
	} else if err != nil {
		return err
	}
	return nil
}

func printGlobs(w io.Writer, res *resolver.Resolver, o options, expr []string) error {
	if len(expr) == 0 {
		return errors.New("nothing to resolve: give at least one glob or task name")
	}
	target, err := tasks.ParseTarget(o.target)
	if err != nil {
		return err
	}
	opts := resolver.Options{Target: target}

	var out []string
	if o.files {
		out, err = res.Files(expr, opts)
	} else {
		out, err = res.Glob(expr, opts)
	}
	if err != nil {
		return err
	}
	if out == nil {
		return fmt.Errorf("'%s' does not resolve to anything", strings.Join(expr, " "))
	}
	for _, s := range out {
		fmt.Fprintln(w, s)
	}
	return nil
}

func printPaths(w io.Writer, res *resolver.Resolver, targetName string, names []string) error {
	if targetName == "" {
		targetName = "src"
	}
	target, err := tasks.ParseTarget(targetName)
	if err != nil {
		return err
	}
	for _, name := range names {
		p, err := res.PathE(name, target)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, p)
	}
	return nil
}

// watchDir returns the project directory relative to the working directory,
// since that is how the watcher reports changed paths.
func watchDir(abs, dir string) string {
	wd, err := os.Getwd()
	if err != nil {
		return dir
	}
	rel, err := filepath.Rel(wd, abs)
	if err != nil {
		return dir
	}
	return filepath.ToSlash(rel)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func tasklistText(res *resolver.Resolver, ids []string) string {
	store := res.Store()
	if len(ids) == 0 {
		ids = store.IDs()
	} else {
		ids = store.Subtree(ids...)
	}

	b := &strings.Builder{}
	fmt.Fprintln(b, styles.Header.Render("TASKS"))
	for i, id := range ids {
		if i != 0 {
			b.WriteString("\n")
		}
		if !res.HasTask(id) {
			fmt.Fprintf(b, "  %s\n", color.RenderHash(id))
			fmt.Fprintf(b, "    Type: %s\n", styles.Italic.Render("unknown"))
			continue
		}
		c := res.TaskConfig(id)

		typ := "config"
		switch {
		case c.Group:
			typ = "group"
		case store.Defined(id):
			typ = "script"
		}
		fmt.Fprintf(b, "  %s\n", color.RenderHash(id))
		fmt.Fprintf(b, "    Type: %s\n", styles.Italic.Render(typ))
		if len(c.Deps) != 0 {
			fmt.Fprintf(b, "    Dependencies:\n")
			for _, dep := range c.Deps {
				fmt.Fprintf(b, "      - %s\n", dep)
			}
		}
		if c.Group {
			continue
		}
		if src, ok := res.Base(id); ok {
			fmt.Fprintf(b, "    Src: %s\n", src)
		}
		if dest, ok := res.Dest(id); ok {
			fmt.Fprintf(b, "    Dest: %s\n", dest)
		}
		if len(c.Files.Src) != 0 {
			fmt.Fprintf(b, "    Files:\n")
			for _, p := range c.Files.Src {
				fmt.Fprintf(b, "      - %s\n", p)
			}
		}
		if len(c.Files.Watch) != 0 {
			fmt.Fprintf(b, "    Watch:\n")
			for _, p := range c.Files.Watch {
				fmt.Fprintf(b, "      - %s\n", p)
			}
		}
	}
	return b.String()
}

func helpText(f *flag.FlagSet) string {
	b := &strings.Builder{}
	b.WriteString("Wires resolves globs that refer to the tasks defined in wires.toml,\n")
	b.WriteString("and runs those tasks.\n")
	b.WriteString("\n")
	b.WriteString(usageText())
	b.WriteString("\n")
	b.WriteString(flagText(f))
	b.WriteString("\n")
	b.WriteString(versionText())
	return b.String()
}

func usageText() string {
	b := &strings.Builder{}
	fmt.Fprintln(b, styles.Header.Render("USAGE"))
	b.WriteString("  wires [flags] <task>...\n")
	b.WriteString("  wires -glob [-target=<target>] <glob or task>...\n")
	b.WriteString("  wires -files [-target=<target>] <glob or task>...\n")
	b.WriteString("  wires -path [-target=<target>] <task>...\n")
	return b.String()
}

func flagText(f *flag.FlagSet) string {
	var b strings.Builder
	fmt.Fprintln(&b, styles.Header.Render("FLAGS"))

	f.VisitAll(func(f *flag.Flag) {
		fmt.Fprintf(&b, "  -%s", f.Name) // Two spaces before -; see next two comments.
		name, usage := flag.UnquoteUsage(f)
		if len(name) > 0 {
			b.WriteString("=")
			b.WriteString(name)
		}
		// Print the default value only if it differs to the zero value
		// for this flag type.
		if isZero := isZeroValue(f, f.DefValue); !isZero {
			fmt.Fprintf(&b, " (default %q)", f.DefValue)
		}
		b.WriteString("\n")

		usage = wordwrap.String(usage, 52)
		usage = indent.String(usage, 8)
		b.WriteString(usage)

		b.WriteString("\n")
	})
	return b.String()
}

// isZeroValue determines whether the string represents the zero
// value for a flag.
func isZeroValue(f *flag.Flag, value string) (ok bool) {
	// Build a zero value of the flag's Value type, and see if the
	// result of calling its String method equals the value passed in.
	// This works unless the Value type is itself an interface type.
	typ := reflect.TypeOf(f.Value)
	var z reflect.Value
	if typ.Kind() == reflect.Pointer {
		z = reflect.New(typ.Elem())
	} else {
		z = reflect.Zero(typ)
	}
	return value == z.Interface().(flag.Value).String()
}

func versionText() string {
	b := &strings.Builder{}
	fmt.Fprintln(b, styles.Header.Render("VERSION"))
	fmt.Fprintln(b, "  Version:", wires.Version)
	if wires.Revision != "unknown" {
		if wires.DirtyBuild {
			fmt.Fprintln(b, "  Dirty Build")
			fmt.Fprintln(b, "  Last commit:", wires.ReleaseDate)
		} else {
			fmt.Fprintln(b, "  Revision:", wires.Revision)
			fmt.Fprintln(b, "  Committed:", wires.ReleaseDate)
		}
	}
	return b.String()
}
