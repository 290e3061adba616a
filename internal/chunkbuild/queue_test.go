package chunkbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func queuedTask(distance float64, seq uint64) *SortTask {
	t := &SortTask{}
	t.distance = distance
	t.seq = seq
	return t
}

func TestTaskQueueOrdersByDistanceThenArrival(t *testing.T) {
	var q taskQueue
	far := queuedTask(900, 1)
	nearLate := queuedTask(4, 5)
	nearEarly := queuedTask(4, 2)
	mid := queuedTask(100, 3)

	for _, task := range []Task{far, nearLate, mid, nearEarly} {
		q.push(task)
	}
	assert.Equal(t, 4, q.Len())

	var got []Task
	for q.Len() > 0 {
		got = append(got, q.pop())
	}
	assert.Equal(t, []Task{nearEarly, nearLate, mid, far}, got)
}
