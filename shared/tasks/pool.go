// Package tasks provides the bounded fan-out pool shared by the pipeline's
// topic-level and attribute-level parallelism.
package tasks

import "golang.org/x/sync/errgroup"

// Pool runs submitted functions concurrently, at most limit at a time, and
// joins them with Wait. It is a thin wrapper over errgroup so both fan-out
// scopes in the pipeline use the same submit-many, await-all mechanism.
type Pool struct {
	group *errgroup.Group
}

// NewPool returns a pool that runs at most limit tasks concurrently.
// A limit of zero or less means unbounded.
func NewPool(limit int) *Pool {
	group := &errgroup.Group{}
	if limit > 0 {
		group.SetLimit(limit)
	}
	return &Pool{group: group}
}

// Go submits a task. When the pool is at its limit, Go blocks until a slot
// frees up, which keeps worst-case in-flight work capped even with nested
// pools.
func (p *Pool) Go(fn func() error) {
	p.group.Go(fn)
}

// Wait blocks until every submitted task has returned and reports the first
// error, if any.
func (p *Pool) Wait() error {
	return p.group.Wait()
}
