// Package retry provides the single retry-with-backoff helper used for all
// storage writes that may fail transiently.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Do invokes fn up to attempts times, sleeping base, 2*base, 4*base, ...
// between failures. It returns nil on the first success, the context error
// if the context ends while waiting, and the last failure otherwise.
func Do(ctx context.Context, attempts int, base time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	delay := base
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("after %d attempts: %w", attempts, err)
}
