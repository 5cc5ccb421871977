package batch

import "sync"

// Executor runs state mutations on the single context that owns the batch.
// Functions submitted by one goroutine run in submission order.
type Executor interface {
	Do(fn func())
}

// ExecutorFunc adapts a function such as fyne.Do to an Executor.
type ExecutorFunc func(fn func())

func (f ExecutorFunc) Do(fn func()) { f(fn) }

// SerialExecutor drains submitted functions on one goroutine. It is the owner
// context for headless callers.
type SerialExecutor struct {
	updates chan func()
	done    chan struct{}
	exited  chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

func NewSerialExecutor() *SerialExecutor {
	e := &SerialExecutor{
		updates: make(chan func(), 64),
		done:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
	e.wg.Add(1)
	go e.run()
	return e
}

// Do queues fn. It blocks while the queue is full and never drops work; after
// Stop, fn is discarded.
func (e *SerialExecutor) Do(fn func()) {
	select {
	case e.updates <- fn:
	case <-e.done:
	}
}

func (e *SerialExecutor) run() {
	defer e.wg.Done()
	defer close(e.exited)
	for {
		select {
		case fn := <-e.updates:
			fn()
		case <-e.done:
			return
		}
	}
}

// Stop ends the drain loop and waits for the running function to return.
func (e *SerialExecutor) Stop() {
	e.once.Do(func() { close(e.done) })
	e.wg.Wait()
}

// Exited is closed once the drain loop has returned. Functions that have not
// run by then never will.
func (e *SerialExecutor) Exited() <-chan struct{} {
	return e.exited
}

// Close satisfies the shutdown manager's component contract.
func (e *SerialExecutor) Close() error {
	e.Stop()
	return nil
}

// doOrDrop submits fn to e. When e can stop and does so before fn runs,
// dropped is called on a separate goroutine instead.
func doOrDrop(e Executor, fn, dropped func()) {
	s, ok := e.(interface{ Exited() <-chan struct{} })
	if !ok {
		e.Do(fn)
		return
	}

	ran := make(chan struct{})
	e.Do(func() {
		defer close(ran)
		fn()
	})
	go func() {
		select {
		case <-ran:
		case <-s.Exited():
			select {
			case <-ran:
			default:
				dropped()
			}
		}
	}()
}
