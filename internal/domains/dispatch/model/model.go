package model

import (
	"errors"
	"sync"
)

// Result is the outcome of one asynchronous send. Key identifies the notification.
type Result struct {
	Key      string
	Response string
	Err      error
}

func (r Result) Failed() bool {
	return r.Err != nil
}

// Resolved returns a closed channel that already holds result.
func Resolved(result Result) <-chan Result {
	ch := make(chan Result, 1)
	ch <- result
	close(ch)

	return ch
}

// Batch collects asynchronous results of one booking submission.
type Batch struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	results []Result
}

func NewBatch() *Batch {
	return &Batch{}
}

// Add starts collecting the single result delivered on ch.
func (b *Batch) Add(ch <-chan Result) {
	b.wg.Add(1)

	go func() {
		defer b.wg.Done()

		result, ok := <-ch
		if !ok {
			return
		}

		b.mu.Lock()
		b.results = append(b.results, result)
		b.mu.Unlock()
	}()
}

// Wait blocks until every added result arrived and returns them in arrival order.
func (b *Batch) Wait() []Result {
	b.wg.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]Result(nil), b.results...)
}

// Failures waits and returns only failed results.
func (b *Batch) Failures() []Result {
	var failures []Result

	for _, result := range b.Wait() {
		if result.Failed() {
			failures = append(failures, result)
		}
	}

	return failures
}

// Err waits and joins every failure.
func (b *Batch) Err() error {
	var errs []error

	for _, result := range b.Failures() {
		errs = append(errs, result.Err)
	}

	return errors.Join(errs...)
}
