package dynamic

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// WorkerPool runs one batch of tasks. Wait blocks until every task of the batch returned.
type WorkerPool interface {
	Go(task func() error)
	Wait() error
}

type groupPool struct {
	limit int
	group *errgroup.Group
}

// NewWorkerPool limits a batch to limit concurrent tasks, limit <= 0 uses one task per CPU. The pool is
// reusable once Wait returned.
func NewWorkerPool(limit int) WorkerPool {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &groupPool{limit: limit}
}

func (this *groupPool) Go(task func() error) {
	if this.group == nil {
		this.group = &errgroup.Group{}
		this.group.SetLimit(this.limit)
	}
	this.group.Go(task)
}

func (this *groupPool) Wait() error {
	if this.group == nil {
		return nil
	}
	err := this.group.Wait()
	this.group = nil
	return err
}
