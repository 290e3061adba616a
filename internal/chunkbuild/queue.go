package chunkbuild

import "container/heap"

// taskQueue is a min-heap of tasks by distance, FIFO among equal distances.
// Owned by the actor.
type taskQueue []Task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	a, b := q[i].base(), q[j].base()
	if a.distance != b.distance {
		return a.distance < b.distance
	}
	return a.seq < b.seq
}

func (q taskQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *taskQueue) Push(x any) { *q = append(*q, x.(Task)) }

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}

func (q *taskQueue) push(t Task) { heap.Push(q, t) }

func (q *taskQueue) pop() Task { return heap.Pop(q).(Task) }
