package worker

import (
	"sync"

	"github.com/rf-tools/chanspector/inspector"
	"github.com/rf-tools/chanspector/mq"
)

// Pool is a minimal shared worker pool: one goroutine per task, re-invoking
// Callback until it reports false (drop). It exists to give
// control.Handler's TaskRegistrar a concrete implementation; a production
// deployment can swap in any pool honoring the same reschedule contract.
type Pool struct {
	Out      sampleWriter
	Consumer Consumer

	wg sync.WaitGroup
}

// NewPool builds a pool writing batches to out and pulling from consumer.
func NewPool(out *mq.Queue, consumer Consumer) *Pool {
	return &Pool{Out: out, Consumer: consumer}
}

// Submit starts a goroutine that repeatedly runs Callback for insp until it
// is dropped. It satisfies control.TaskRegistrar.
//
// Before every Callback invocation it calls Consumer.Wait so that a task's
// very first dispatch never races the upstream source's first buffer:
// Callback's own "no samples available" drop path is a permanent decision,
// so it must only fire once the consumer itself reports there is nothing
// left to wait for, not whenever the callback happens to run before the
// real-time producer has caught up.
func (p *Pool) Submit(insp *inspector.Inspector) error {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			if !p.Consumer.Wait(cursorOf(insp)) {
				Callback(p.Out, p.Consumer, insp)
				return
			}
			if !Callback(p.Out, p.Consumer, insp) {
				return
			}
		}
	}()
	return nil
}

// Wait blocks until every task this pool ever submitted has dropped.
// Intended for tests and graceful shutdown.
func (p *Pool) Wait() {
	p.wg.Wait()
}
