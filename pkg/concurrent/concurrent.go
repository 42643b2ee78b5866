package concurrent

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// ForEach runs the action function for each element of the slice in a
// separate goroutine. It waits for all goroutines to finish. If action
// returns an error, it returns the first error encountered.
func ForEach[T any](items []T, action func(T) error) error {
	errGroup := errgroup.Group{}
	for _, value := range items {
		value := value
		errGroup.Go(func() error {
			return action(value)
		})
	}
	return errGroup.Wait()
}

// ForEachLimit is ForEach with at most workers goroutines in flight.
func ForEachLimit[T any](items []T, workers int, action func(T) error) error {
	errGroup := errgroup.Group{}
	if workers > 0 {
		errGroup.SetLimit(workers)
	}
	for _, value := range items {
		value := value
		errGroup.Go(func() error {
			return action(value)
		})
	}
	return errGroup.Wait()
}

// ForEachMute runs the action function for each element of the slice in
// a separate goroutine, waits for all of them, and discards errors.
func ForEachMute[T any](items []T, action func(T) error) {
	wg := sync.WaitGroup{}
	for _, value := range items {
		wg.Add(1)
		go func(value T) {
			defer wg.Done()
			_ = action(value)
		}(value)
	}
	wg.Wait()
}
