// Package watcher reports filesystem changes to files matching a set of glob
// patterns.
package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/rjeczalik/notify"
	"github.com/romdo/go-debounce"
)

// EventInfo describes one change. Path is relative to the working directory.
type EventInfo struct {
	Path  string
	Event string
}

// Quiet is how long the filesystem must be quiet before a batch of events is
// delivered. MaxWait bounds how long a batch can be held back by a steady
// stream of events.
var (
	Quiet   = 500 * time.Millisecond
	MaxWait = 5 * time.Second
)

// Watch watches the files matching patterns, which are slash-separated globs
// relative to the working directory, any of which may be negated with "!".
// A changed file is reported if it matches a positive pattern and no negated
// one. Events are delivered in batches; see [Quiet].
//
// Call the returned func to stop watching; it also closes the channel. Watch
// is a variable so that tests can replace it; see [Mock].
var Watch = func(patterns []string) (<-chan []EventInfo, func(), error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, err
	}

	m, err := compile(patterns)
	if err != nil {
		return nil, nil, err
	}

	c := make(chan notify.EventInfo, 16)
	for _, dir := range m.dirs {
		if err := notify.Watch(dir, c, notify.All); err != nil {
			notify.Stop(c)
			return nil, nil, fmt.Errorf("watching '%s': %w", dir, err)
		}
	}

	b := newBatcher()
	go func() {
		for ev := range c {
			p := strings.TrimPrefix(ev.Path(), cwd+string(filepath.Separator))
			p = filepath.ToSlash(p)
			if !m.match(p) {
				continue
			}
			b.add(EventInfo{
				Path:  p,
				Event: strings.TrimPrefix(ev.Event().String(), "notify."),
			})
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			notify.Stop(c)
			close(c)
			b.stop()
		})
	}
	return b.out, stop, nil
}

// batcher collects events and delivers them once things go quiet.
type batcher struct {
	out  chan []EventInfo
	done chan struct{}

	mu   sync.Mutex
	coll []EventInfo

	// Hold sendmu for reading while sending on out, and for writing to
	// close it.
	sendmu sync.RWMutex
	closed bool

	flush  func()
	cancel func()
}

func newBatcher() *batcher {
	b := &batcher{
		out:  make(chan []EventInfo),
		done: make(chan struct{}),
	}
	b.flush, b.cancel = debounce.NewWithMaxWait(Quiet, MaxWait, b.deliver)
	return b
}

func (b *batcher) add(ev EventInfo) {
	b.mu.Lock()
	b.coll = append(b.coll, ev)
	b.mu.Unlock()
	b.flush()
}

func (b *batcher) deliver() {
	b.sendmu.RLock()
	defer b.sendmu.RUnlock()
	if b.closed {
		return
	}

	b.mu.Lock()
	coll := b.coll
	b.coll = nil
	b.mu.Unlock()
	if len(coll) == 0 {
		return
	}
	select {
	case b.out <- coll:
	case <-b.done:
	}
}

// stop closes out once no delivery can still be sending on it.
func (b *batcher) stop() {
	b.cancel()
	close(b.done)

	b.sendmu.Lock()
	defer b.sendmu.Unlock()
	b.closed = true
	close(b.out)
}

// matcher decides which events are interesting.
type matcher struct {
	// dirs are the notify paths to watch, recursive ones ending in
	// "...".
	dirs []string

	include []entry
	exclude []entry
}

// entry matches paths against a glob or, if glob is nil, against everything
// at or under prefix.
type entry struct {
	prefix string
	glob   glob.Glob
}

func (e entry) match(p string) bool {
	if e.glob != nil {
		return e.glob.Match(p)
	}
	return e.prefix == "." || p == e.prefix || strings.HasPrefix(p, e.prefix+"/")
}

func compile(patterns []string) (*matcher, error) {
	m := &matcher{}
	seen := map[string]struct{}{}
	for _, p := range patterns {
		negated := strings.HasPrefix(p, "!")
		dir, g, err := split(strings.TrimPrefix(p, "!"))
		if err != nil {
			return nil, err
		}
		e := entry{prefix: strings.TrimSuffix(dir, "/..."), glob: g}
		if negated {
			m.exclude = append(m.exclude, e)
			continue
		}
		m.include = append(m.include, e)
		if _, ok := seen[dir]; !ok {
			seen[dir] = struct{}{}
			m.dirs = append(m.dirs, dir)
		}
	}
	if len(m.include) == 0 {
		return nil, errors.New("nothing to watch")
	}
	return m, nil
}

func (m *matcher) match(p string) bool {
	for _, e := range m.exclude {
		if e.match(p) {
			return false
		}
	}
	for _, e := range m.include {
		if e.match(p) {
			return true
		}
	}
	return false
}

// split breaks a given input path (which may contain a glob) into two parts: a
// watcher part and a glob part.
//
// For example, given the input "src/website/**/*.js",
//   - we will set up a recursive watch at src/website
//   - we will match events from that watch against the glob "src/website/**/*.js"
//
// so the values returned from split will be ("src/website/...", Glob["src/website/**/*.js"]).
// An input with no glob syntax is watched as-is, recursively if it is a
// directory, and matches everything under it.
func split(input string) (string, glob.Glob, error) {
	input = filepath.ToSlash(filepath.Clean(input))
	segments := strings.Split(input, "/")
	for i, seg := range segments {
		if strings.ContainsAny(seg, "*?[{") {
			w := strings.Join(segments[:i], "/")
			if w == "" {
				w = "."
			}
			var g globs
			for _, v := range optionalDoubleStars(input) {
				compiled, err := glob.Compile(v, '/')
				if err != nil {
					return "", nil, fmt.Errorf("invalid glob '%s': %w", input, err)
				}
				g = append(g, compiled)
			}
			return w + "/...", g, nil
		}
	}
	if info, err := os.Stat(input); err == nil && info.IsDir() {
		return input + "/...", nil, nil
	}
	return input, nil, nil
}

// globs matches a path if any of its globs do.
type globs []glob.Glob

func (gs globs) Match(p string) bool {
	for _, g := range gs {
		if g.Match(p) {
			return true
		}
	}
	return false
}

// optionalDoubleStars returns pattern along with every variant of it that
// has some of its "**/" segments removed, so that "a/**/b" also matches
// "a/b" and "**/*.js" also matches "x.js".
func optionalDoubleStars(pattern string) []string {
	i := strings.Index(pattern, "**/")
	if i < 0 {
		return []string{pattern}
	}
	var out []string
	for _, rest := range optionalDoubleStars(pattern[i+3:]) {
		out = append(out, pattern[:i+3]+rest, pattern[:i]+rest)
	}
	return out
}
