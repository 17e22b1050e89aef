// Package seq checks that lines of output appear in a given order.
package seq

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertContainsSequence fails the test unless ContainsSequence passes.
func AssertContainsSequence(t *testing.T, lines []string, seq ...string) bool {
	t.Helper()
	return assert.NoError(t, ContainsSequence(lines, seq...))
}

// ContainsSequence returns an error unless every line of seq appears in
// lines, in order. Lines of seq may not appear in lines anywhere else; other
// lines are ignored.
func ContainsSequence(lines []string, seq ...string) error {
	wanted := map[string]bool{}
	for _, l := range seq {
		wanted[l] = true
	}

	var found []string
	for _, l := range lines {
		if wanted[l] {
			found = append(found, l)
		}
	}

	for i, expect := range seq {
		switch {
		case i >= len(found):
			return mismatch("missing item %d: '%s'", seq, lines, i+1, expect)
		case found[i] != expect:
			return mismatch("item %d: expected '%s', found '%s'", seq, lines, i+1, expect, found[i])
		}
	}
	if len(found) > len(seq) {
		return mismatch("found '%s' after the end of the sequence", seq, lines, found[len(seq)])
	}
	return nil
}

func mismatch(f string, seq, lines []string, args ...any) error {
	return fmt.Errorf("%s\n\nSequence:\n%s\n\nActual:\n%s",
		fmt.Sprintf(f, args...),
		strings.Join(seq, "\n"),
		strings.Join(lines, "\n"),
	)
}
