package generator

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// ErrPoolClosed reports a submission against a pool that has shut down.
var ErrPoolClosed = errors.New("generator: compute pool closed")

type computeResult struct {
	value float64
	err   error
}

type computeTask struct {
	ctx context.Context
	run func(context.Context) (float64, error)
	out chan computeResult
}

// ComputePool bounds how many metric computations run at once. HTTP
// handlers hand their work to the pool instead of burning CPU on the
// serving goroutine, so a burst of metric requests queues here rather
// than starving the listener.
type ComputePool struct {
	tasks chan computeTask
	stop  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

// NewComputePool starts size workers. A non-positive size falls back to
// the number of schedulable CPUs.
func NewComputePool(size int) *ComputePool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	p := &ComputePool{
		tasks: make(chan computeTask),
		stop:  make(chan struct{}),
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *ComputePool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			return
		case t := <-p.tasks:
			if err := t.ctx.Err(); err != nil {
				t.out <- computeResult{err: err}
				continue
			}
			v, err := t.run(t.ctx)
			t.out <- computeResult{value: v, err: err}
		}
	}
}

// Submit blocks until a worker finishes run, the context expires, or the
// pool closes. The task channel is unbuffered: a submission parks until
// a worker is free, which is what keeps concurrent load bounded.
func (p *ComputePool) Submit(ctx context.Context, run func(context.Context) (float64, error)) (float64, error) {
	out := make(chan computeResult, 1)
	select {
	case p.tasks <- computeTask{ctx: ctx, run: run, out: out}:
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-p.stop:
		return 0, ErrPoolClosed
	}
	select {
	case res := <-out:
		return res.value, res.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Close stops accepting work and waits for workers to drain. Safe to
// call more than once.
func (p *ComputePool) Close() {
	p.once.Do(func() { close(p.stop) })
	p.wg.Wait()
}
