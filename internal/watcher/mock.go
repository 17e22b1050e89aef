package watcher

import (
	"fmt"
	"sync"
)

// OriginalWatch is the real implementation of Watch, restored by Unmock.
var OriginalWatch = Watch

type mock struct {
	m    *matcher
	c    chan []EventInfo
	once sync.Once
}

var (
	mocks   []*mock
	mocksmu sync.Mutex
)

// Mock replaces Watch with a fake that never touches the filesystem. Events
// are produced by calling Dispatch.
func Mock() {
	mocksmu.Lock()
	defer mocksmu.Unlock()

	mocks = nil
	Watch = func(patterns []string) (<-chan []EventInfo, func(), error) {
		m, err := compile(patterns)
		if err != nil {
			return nil, nil, err
		}

		mocksmu.Lock()
		defer mocksmu.Unlock()

		mk := &mock{m: m, c: make(chan []EventInfo)}
		mocks = append(mocks, mk)
		stop := func() {
			mk.once.Do(func() {
				mocksmu.Lock()
				defer mocksmu.Unlock()
				for i, other := range mocks {
					if other == mk {
						mocks = append(mocks[:i], mocks[i+1:]...)
						break
					}
				}
				close(mk.c)
			})
		}
		return mk.c, stop, nil
	}
}

// Dispatch sends a change to path to every mocked watch whose patterns
// select it, blocking until each has received it. It panics if no watch
// selects path.
func Dispatch(path string) {
	mocksmu.Lock()
	var targets []*mock
	for _, mk := range mocks {
		if mk.m.match(path) {
			targets = append(targets, mk)
		}
	}
	mocksmu.Unlock()

	if len(targets) == 0 {
		panic(fmt.Errorf("can't dispatch on unwatched path '%s'", path))
	}
	for _, mk := range targets {
		mk.c <- []EventInfo{{Path: path, Event: "Write"}}
	}
}

// Watching returns the number of mocked watches that have not been stopped.
func Watching() int {
	mocksmu.Lock()
	defer mocksmu.Unlock()
	return len(mocks)
}

// Unmock restores the real Watch.
func Unmock() {
	mocksmu.Lock()
	defer mocksmu.Unlock()
	mocks = nil
	Watch = OriginalWatch
}
