package render

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/contentscale/internal/model"
)

// fakeRenderer returns a fixed page and records concurrency.
type fakeRenderer struct {
	delay   time.Duration
	err     error
	calls   atomic.Int32
	current atomic.Int32
	peak    atomic.Int32
}

func (f *fakeRenderer) Name() string { return "fake" }

func (f *fakeRenderer) Render(ctx context.Context, rawURL string) (*model.Page, error) {
	f.calls.Add(1)
	n := f.current.Add(1)
	defer f.current.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	page := &model.Page{URL: rawURL, StatusCode: 200, HTML: "<p>" + rawURL + "</p>", Renderer: "fake"}
	page.ComputeHash()
	return page, nil
}

// TestPool tests that the pool bounds concurrent renders.
func TestPool(t *testing.T) {
	t.Parallel()

	t.Run("should not exceed the pool size", func(t *testing.T) {
		t.Parallel()
		fake := &fakeRenderer{delay: 20 * time.Millisecond}
		pool := NewPool(fake, 2)

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := pool.Render(context.Background(), "https://example.com"); err != nil {
					t.Errorf("Render failed: %v", err)
				}
			}()
		}
		wg.Wait()

		if fake.calls.Load() != 8 {
			t.Errorf("got %d calls, expected 8", fake.calls.Load())
		}
		if fake.peak.Load() > 2 {
			t.Errorf("peak concurrency %d exceeds pool size 2", fake.peak.Load())
		}
		if pool.Active() != 0 {
			t.Errorf("got %d active leases after completion", pool.Active())
		}
	})

	t.Run("should stop waiting when the context ends", func(t *testing.T) {
		t.Parallel()
		pool := NewPool(&fakeRenderer{}, 1)
		release, err := pool.Acquire(context.Background())
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		defer release()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if _, err := pool.Render(ctx, "https://example.com"); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("got error %v", err)
		}
	})

	t.Run("should ignore a second release", func(t *testing.T) {
		t.Parallel()
		pool := NewPool(&fakeRenderer{}, 1)
		release, err := pool.Acquire(context.Background())
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		release()
		release()
		if pool.Active() != 0 {
			t.Errorf("got %d active leases", pool.Active())
		}
	})

	t.Run("should default the size", func(t *testing.T) {
		t.Parallel()
		pool := NewPool(&fakeRenderer{}, 0)
		if pool.Size() != DefaultPoolSize || pool.Name() != "fake" {
			t.Errorf("got size %d name %q", pool.Size(), pool.Name())
		}
	})
}
