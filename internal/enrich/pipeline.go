package enrich

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Pipeline applies its stages to every item it is given.
type Pipeline[T any] struct {
	stages []Stage[T]
	logger *zap.Logger
}

func NewPipeline[T any](logger *zap.Logger, stages ...Stage[T]) *Pipeline[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline[T]{stages: stages, logger: logger}
}

// Process consumes items until in is closed. Within a stage all steps start
// together and the stage waits for all of them before the next one begins.
// Step errors are logged and do not stop processing; once ctx is done the
// remaining items are drained untouched.
func (p *Pipeline[T]) Process(ctx context.Context, in <-chan *T) {
	for item := range in {
		if ctx.Err() != nil {
			continue
		}
		for _, stage := range p.stages {
			var wg sync.WaitGroup
			for _, step := range stage.steps {
				wg.Add(1)
				go func(step Step[T]) {
					defer wg.Done()
					if err := step(ctx, item); err != nil {
						p.logger.Warn("enrichment step failed", zap.Error(err))
					}
				}(step)
			}
			wg.Wait()
		}
	}
}

// Run processes items in order and returns when all of them went through
// every stage.
func (p *Pipeline[T]) Run(ctx context.Context, items []*T) {
	in := make(chan *T)
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Process(ctx, in)
	}()
	for _, item := range items {
		in <- item
	}
	close(in)
	<-done
}
