package seq_test

import (
	"testing"

	"github.com/amonks/wires/internal/seq"
	"github.com/stretchr/testify/assert"
)

func TestContainsSequence(t *testing.T) {
	lines := []string{"a", "-", "b", "-", "c", "c"}

	for _, tc := range []struct {
		name  string
		match []string
		ok    bool
	}{
		{"contiguous", []string{"a", "-"}, false},
		{"spread out", []string{"a", "b"}, true},
		{"repeated item", []string{"-", "-"}, true},
		{"out of order", []string{"b", "a"}, false},
		{"missing item", []string{"a", "z"}, false},
		{"item recurs after the sequence", []string{"b", "c"}, false},
		{"empty", nil, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := seq.ContainsSequence(lines, tc.match...)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
