package chunkbuild

import (
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadQueueDrainsInOrder(t *testing.T) {
	q := &UploadQueue{}
	var got []int
	var uploads []*pendingUpload
	for i := 0; i < 3; i++ {
		i := i
		uploads = append(uploads, q.enqueue(func() error {
			got = append(got, i)
			return nil
		}))
	}
	assert.Equal(t, 3, q.Len())
	assert.False(t, (&UploadQueue{}).drain())

	assert.True(t, q.drain())
	assert.Equal(t, []int{0, 1, 2}, got)
	assert.Zero(t, q.Len())
	require.NoError(t, awaitUploads(uploads))
}

func TestUploadQueueDrainIncludesLateArrivals(t *testing.T) {
	q := &UploadQueue{}
	var second *pendingUpload
	first := q.enqueue(func() error {
		second = q.enqueue(func() error { return nil })
		return nil
	})
	q.drain()
	require.NoError(t, first.Wait())
	require.NoError(t, second.Wait())
}

func TestUploadQueueCloseCancelsWaiters(t *testing.T) {
	q := &UploadQueue{}
	u := q.enqueue(func() error {
		t.Error("ran after close")
		return nil
	})

	var wg sync.WaitGroup
	var err error
	wg.Add(1)
	go func() {
		defer wg.Done()
		err = u.Wait()
	}()
	q.close()
	wg.Wait()
	assert.ErrorIs(t, err, ErrCancelled)

	late := q.enqueue(func() error { return nil })
	assert.ErrorIs(t, late.Wait(), ErrCancelled)
	assert.False(t, q.drain())
}

func TestUploadPanicBecomesError(t *testing.T) {
	u := inlineUploader{}.enqueue(func() error { panic("driver") })
	err := u.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "driver")
}

func TestAwaitUploadsPrefersFailures(t *testing.T) {
	failure := errors.New("failed")
	run := func(errs ...error) error {
		var uploads []*pendingUpload
		for _, err := range errs {
			err := err
			uploads = append(uploads, inlineUploader{}.enqueue(func() error { return err }))
		}
		return awaitUploads(uploads)
	}

	assert.NoError(t, run(nil, nil))
	assert.ErrorIs(t, run(nil, ErrCancelled), ErrCancelled)
	assert.Equal(t, failure, run(ErrCancelled, failure, ErrCancelled))
	assert.Equal(t, failure, run(failure, ErrCancelled))
}
