package view

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("view loop closed")

// Loop runs a Machine on its own goroutine. Commands submitted with Do and
// autoplay ticks are handled one at a time, so the Machine needs no locks.
type Loop struct {
	m    *Machine
	cmds chan command
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

type command struct {
	fn    func(*Machine)
	reply chan struct{}
}

// NewLoop starts the goroutine driving m.
func NewLoop(m *Machine) *Loop {
	l := &Loop{
		m:    m,
		cmds: make(chan command),
		done: make(chan struct{}),
	}
	l.wg.Add(1)
	go l.run()
	return l
}

func (l *Loop) run() {
	defer l.wg.Done()
	for {
		select {
		case <-l.done:
			l.m.Close()
			return
		case cmd := <-l.cmds:
			cmd.fn(l.m)
			close(cmd.reply)
		case <-l.m.carousel.Ticks():
			l.m.Tick()
		}
	}
}

// Do runs fn on the loop goroutine and waits for it to finish. fn must not
// keep references to the Machine after returning.
func (l *Loop) Do(ctx context.Context, fn func(*Machine)) error {
	cmd := command{fn: fn, reply: make(chan struct{})}
	select {
	case l.cmds <- cmd:
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	// Once accepted the command always completes.
	<-cmd.reply
	return nil
}

// Snapshot returns a copy of the current state.
func (l *Loop) Snapshot(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	err := l.Do(ctx, func(m *Machine) { s = m.Snapshot() })
	return s, err
}

// Close stops autoplay and the goroutine. It is safe to call more than once.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.done) })
	l.wg.Wait()
}
