package shopify

import (
	"context"
	"sync"

	"go.uber.org/multierr"
)

// forEach calls fn for every index in [0, n) on at most s.workers goroutines.
// All indexes are attempted; failures are combined in index order.
func (s *Service) forEach(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return nil
	}
	workers := s.workers
	if workers > n {
		workers = n
	}

	errs := make([]error, n)
	queue := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				errs[i] = fn(ctx, i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		select {
		case queue <- i:
		case <-ctx.Done():
			errs[i] = ctx.Err()
		}
	}
	close(queue)
	wg.Wait()

	return multierr.Combine(errs...)
} // ./forEach
