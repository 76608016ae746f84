// Package enrich runs load-time enrichment over dataset records. Independent
// steps of a stage run in parallel for a record; stages run one after the
// other.
package enrich

import (
	"context"
)

// Step enriches one item in place. Steps of the same stage run
// concurrently on the same item and must not write the same fields.
// A failed step returns an error; the pipeline logs it and moves on, so
// enrichment never prevents a record from being loaded.
type Step[T any] func(ctx context.Context, item *T) error

// Stage groups steps that may run in parallel for a single item.
type Stage[T any] struct {
	steps []Step[T]
}

func NewStage[T any](steps ...Step[T]) Stage[T] {
	return Stage[T]{steps: steps}
}
