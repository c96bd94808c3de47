package sift

import (
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Executor runs a batch of n independent tasks and returns once all of
// them finished or one failed. Tasks write their output into slots indexed
// by i, so results keep submission order whatever the scheduling.
type Executor interface {
	Run(n int, task func(i int) error) error
}

// Sequential runs tasks one after another in index order
type Sequential struct{}

// Run executes task(0) … task(n-1) and stops at the first error
func (Sequential) Run(n int, task func(i int) error) error {
	for i := range n {
		if err := task(i); err != nil {
			return err
		}
	}
	return nil
}

// Pool runs tasks on a bounded number of goroutines
type Pool struct {
	workers int
}

// NewPool returns an executor with the given worker count. One worker
// (or fewer) yields Sequential.
func NewPool(workers int) Executor {
	if workers <= 1 {
		return Sequential{}
	}
	return &Pool{workers: workers}
}

// Workers returns the pool size
func (p *Pool) Workers() int {
	return p.workers
}

// Run fans the batch out and joins on it. After the first failure no new
// task starts; that failure is returned.
func (p *Pool) Run(n int, task func(i int) error) error {
	var g errgroup.Group
	g.SetLimit(p.workers)

	var failed atomic.Bool
	for i := range n {
		if failed.Load() {
			break
		}
		g.Go(func() error {
			if failed.Load() {
				return nil
			}
			if err := task(i); err != nil {
				failed.Store(true)
				return err
			}
			return nil
		})
	}

	return g.Wait()
}
