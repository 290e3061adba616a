package chunkbuild

import (
	"sync"

	"github.com/pkg/errors"
)

// pendingUpload is answered exactly once with the result of its closure.
type pendingUpload struct {
	fn   func() error
	done chan error
}

func newPendingUpload(fn func() error) *pendingUpload {
	return &pendingUpload{fn: fn, done: make(chan error, 1)}
}

func (u *pendingUpload) finish(err error) {
	u.done <- err
}

// Wait blocks until the upload ran or was dropped. There is no timeout: the
// pack backing the upload must not be reused while the render thread may
// still read it. Stop answers every queued upload.
func (u *pendingUpload) Wait() error {
	return <-u.done
}

// uploader runs upload closures in the context that owns the GPU buffers.
type uploader interface {
	enqueue(fn func() error) *pendingUpload
}

// UploadQueue is a FIFO of upload closures filled by workers and drained by
// the render thread.
type UploadQueue struct {
	mu     sync.Mutex
	items  []*pendingUpload
	closed bool
}

func (q *UploadQueue) enqueue(fn func() error) *pendingUpload {
	u := newPendingUpload(fn)
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		u.finish(ErrCancelled)
		return u
	}
	q.items = append(q.items, u)
	q.mu.Unlock()
	return u
}

// drain runs queued uploads in order, including uploads queued while
// draining, and reports whether anything ran.
func (q *UploadQueue) drain() bool {
	ran := false
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.mu.Unlock()
			return ran
		}
		u := q.items[0]
		q.items[0] = nil
		q.items = q.items[1:]
		q.mu.Unlock()

		u.finish(safeCall(u.fn))
		ran = true
	}
}

// close drops every queued upload with ErrCancelled and rejects new ones.
func (q *UploadQueue) close() {
	q.mu.Lock()
	q.closed = true
	items := q.items
	q.items = nil
	q.mu.Unlock()

	for _, u := range items {
		u.finish(ErrCancelled)
	}
}

// Len returns the number of queued uploads.
func (q *UploadQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// inlineUploader runs uploads immediately on the calling goroutine.
type inlineUploader struct{}

func (inlineUploader) enqueue(fn func() error) *pendingUpload {
	u := newPendingUpload(fn)
	u.finish(safeCall(fn))
	return u
}

// awaitUploads waits for every upload and returns the most severe error:
// any failure wins over a cancellation.
func awaitUploads(uploads []*pendingUpload) error {
	var result error
	for _, u := range uploads {
		err := u.Wait()
		switch {
		case err == nil:
		case result == nil:
			result = err
		case errors.Is(result, ErrCancelled) && !errors.Is(err, ErrCancelled):
			result = err
		}
	}
	return result
}
