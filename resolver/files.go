package resolver

import (
	"fmt"

	"github.com/amonks/wires/internal/finder"
)

// Files resolves expr, as [Resolver.Glob] does, and lists the files that
// match it. Negated patterns exclude files matched by the others. The result
// is sorted; an expression that resolves to nothing lists no files.
func (r *Resolver) Files(expr Expr, opts Options) ([]string, error) {
	patterns, err := r.Glob(expr, opts)
	if err != nil {
		return nil, err
	}
	files, err := finder.Find(r.fs, patterns)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	return files, nil
}
