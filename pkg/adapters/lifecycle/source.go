// Package lifecycle exposes engine event streams as a lifecycle.Source.
package lifecycle

import (
	"context"
	"sync"

	"github.com/aretw0/lifecycle"

	"github.com/nootverse/noot/pkg/core"
)

type engineSource struct {
	streams []<-chan core.Event
	out     chan lifecycle.Event
}

// NewSource merges the event streams of one or more engines into a single
// lifecycle.Source. The output closes once every input has closed or the
// context passed to Start is done.
func NewSource(streams ...<-chan core.Event) lifecycle.Source {
	return &engineSource{
		streams: streams,
		out:     make(chan lifecycle.Event),
	}
}

func (s *engineSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *engineSource) Start(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(len(s.streams))
	for _, stream := range s.streams {
		lifecycle.Go(ctx, func(ctx context.Context) error {
			defer wg.Done()
			return forward(ctx, stream, s.out)
		})
	}
	lifecycle.Go(ctx, func(ctx context.Context) error {
		wg.Wait()
		close(s.out)
		return nil
	})
	return nil
}

// forward copies events until in closes or ctx is done.
// core.Event satisfies lifecycle.Event through its String method.
func forward(ctx context.Context, in <-chan core.Event, out chan<- lifecycle.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-in:
			if !ok {
				return nil
			}
			select {
			case out <- e:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
