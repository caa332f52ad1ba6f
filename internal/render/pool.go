package render

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/nao1215/contentscale/internal/model"
)

// DefaultPoolSize is the default number of concurrent renders.
const DefaultPoolSize = 5

// Pool bounds the number of concurrent renders of the wrapped Renderer.
// Callers wait for a free lease; waiting honours context cancellation.
type Pool struct {
	next   Renderer
	sem    *semaphore.Weighted
	size   int64
	active atomic.Int64
}

// NewPool wraps next with size leases. A size below 1 uses DefaultPoolSize.
func NewPool(next Renderer, size int) *Pool {
	if size < 1 {
		size = DefaultPoolSize
	}
	return &Pool{
		next: next,
		sem:  semaphore.NewWeighted(int64(size)),
		size: int64(size),
	}
}

// Name returns the wrapped renderer's name.
func (p *Pool) Name() string {
	return p.next.Name()
}

// Size returns the number of leases.
func (p *Pool) Size() int {
	return int(p.size)
}

// Active returns the number of leases currently held.
func (p *Pool) Active() int {
	return int(p.active.Load())
}

// Acquire blocks until a lease is free or ctx is done. The returned release
// function must be called exactly once.
func (p *Pool) Acquire(ctx context.Context) (release func(), err error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	p.active.Add(1)

	var released atomic.Bool
	return func() {
		if released.CompareAndSwap(false, true) {
			p.active.Add(-1)
			p.sem.Release(1)
		}
	}, nil
}

// Render renders rawURL while holding a lease.
func (p *Pool) Render(ctx context.Context, rawURL string) (*model.Page, error) {
	release, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return p.next.Render(ctx, rawURL)
}
