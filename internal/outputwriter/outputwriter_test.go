package outputwriter_test

import (
	"testing"

	"github.com/amonks/wires/internal/outputwriter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct{ writes []string }

func (r *recorder) Write(bs []byte) (int, error) {
	r.writes = append(r.writes, string(bs))
	return len(bs), nil
}

func TestLineBuffering(t *testing.T) {
	rec := &recorder{}
	w := outputwriter.New(rec)

	_, err := w.Write([]byte("hel"))
	require.NoError(t, err)
	assert.Empty(t, rec.writes)

	_, err = w.Write([]byte("lo\nwor"))
	require.NoError(t, err)
	assert.Equal(t, []string{"hello\n"}, rec.writes)

	require.NoError(t, w.Flush())
	assert.Equal(t, []string{"hello\n", "wor"}, rec.writes)
}
