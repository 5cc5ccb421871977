package dnn

import (
	"context"
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

var errPoolClosed = errors.New("network pool closed")

// netPool hands out loaded network instances for exclusive use. OpenCV does
// not promise that one Net may run Forward from several goroutines, so each
// concurrent tile inference checks out its own instance.
type netPool struct {
	nets chan *gocv.Net
	all  []*gocv.Net

	mu     sync.RWMutex
	closed bool
}

func newNetPool(nets []*gocv.Net) *netPool {
	p := &netPool{
		nets: make(chan *gocv.Net, len(nets)),
		all:  nets,
	}
	for _, net := range nets {
		p.nets <- net
	}
	return p
}

func (p *netPool) acquire(ctx context.Context) (*gocv.Net, error) {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return nil, errPoolClosed
	}

	select {
	case net, ok := <-p.nets:
		if !ok {
			return nil, errPoolClosed
		}
		return net, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *netPool) release(net *gocv.Net) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	p.nets <- net
}

func (p *netPool) size() int {
	return len(p.all)
}

// close waits for every instance to be returned, then frees them.
func (p *netPool) close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	var errs []error
	for range p.all {
		net := <-p.nets
		if err := net.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	p.mu.Lock()
	p.closed = true
	close(p.nets)
	p.mu.Unlock()
	return errors.Join(errs...)
}
