package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/kinfolk/pkg/family"
	"github.com/matzehuels/kinfolk/pkg/kin"
	"github.com/matzehuels/kinfolk/pkg/layout"
	"github.com/matzehuels/kinfolk/pkg/observability"
)

// =============================================================================
// Layout Generation
// =============================================================================

// ComputeLayout builds the relation graph for people and lays it out. The
// layout itself cannot fail; the error reports a cancelled context.
func ComputeLayout(ctx context.Context, people []family.Person, opts layout.Options) (layout.Result, error) {
	if err := ctx.Err(); err != nil {
		return layout.Result{}, err
	}
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(people))
	start := time.Now()

	g := kin.Build(people)
	l := layout.Compute(g, opts)

	hooks.OnLayoutComplete(ctx, len(l.Nodes), time.Since(start), nil)
	return l, nil
}
