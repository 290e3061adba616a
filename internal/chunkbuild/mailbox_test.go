package chunkbuild

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMailboxRunsMessagesInOrder(t *testing.T) {
	m := newMailbox()
	var got []int
	for i := 0; i < 100; i++ {
		i := i
		assert.True(t, m.tell(func() { got = append(got, i) }))
	}
	m.close()

	assert.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestMailboxSelfTellDoesNotBlock(t *testing.T) {
	m := newMailbox()
	var wg sync.WaitGroup
	wg.Add(1)
	depth := 0
	var step func()
	step = func() {
		depth++
		if depth == 50 {
			wg.Done()
			return
		}
		m.tell(step)
	}
	m.tell(step)
	wg.Wait()
	m.close()
	assert.Equal(t, 50, depth)
}

func TestMailboxRejectsAfterClose(t *testing.T) {
	m := newMailbox()
	m.close()
	assert.False(t, m.tell(func() { t.Error("ran after close") }))
}
