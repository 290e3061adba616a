package chunkbuild

import "sync"

// mailbox runs messages one at a time on a dedicated goroutine. The queue is
// unbounded so that senders, including the actor itself, never block.
type mailbox struct {
	mu     sync.Mutex
	msgs   []func()
	closed bool
	signal chan struct{}
	done   chan struct{}
}

func newMailbox() *mailbox {
	m := &mailbox{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go m.loop()
	return m
}

// tell queues fn and reports false when the mailbox is closed.
func (m *mailbox) tell(fn func()) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.msgs = append(m.msgs, fn)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
	return true
}

func (m *mailbox) loop() {
	defer close(m.done)
	for {
		m.mu.Lock()
		for len(m.msgs) == 0 && !m.closed {
			m.mu.Unlock()
			<-m.signal
			m.mu.Lock()
		}
		if len(m.msgs) == 0 {
			m.mu.Unlock()
			return
		}
		batch := m.msgs
		m.msgs = nil
		m.mu.Unlock()

		for _, fn := range batch {
			fn()
		}
	}
}

// close rejects further messages, runs the queued ones and waits for the
// loop to exit. Must not be called from a message.
func (m *mailbox) close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	select {
	case m.signal <- struct{}{}:
	default:
	}
	<-m.done
}
