package shutdown

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestShutdownClosesInReverseOrder(t *testing.T) {
	m := NewManager(nil)

	var mu sync.Mutex
	var order []string
	for _, name := range []string{"model", "history", "watcher"} {
		m.Register(name, closerFunc(func() error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}))
	}
	m.Register("nil", nil)

	m.Shutdown()
	m.Shutdown()

	assert.Equal(t, []string{"watcher", "history", "model"}, order)
	assert.Error(t, m.Context().Err())

	select {
	case <-m.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestShutdownContinuesPastFailuresAndTimeouts(t *testing.T) {
	m := NewManager(nil)
	m.SetTimeout(20 * time.Millisecond)

	closed := false
	block := make(chan struct{})
	defer close(block)

	m.Register("first", closerFunc(func() error { closed = true; return nil }))
	m.Register("hung", closerFunc(func() error { <-block; return nil }))
	m.Register("broken", closerFunc(func() error { return errors.New("close failed") }))

	m.Shutdown()
	assert.True(t, closed)
}
