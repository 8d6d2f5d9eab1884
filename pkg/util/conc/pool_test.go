package conc

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestPool(t *testing.T) {
	pool := NewPool[int](4, WithPreAlloc(true), WithExpiryDuration(time.Minute))
	defer pool.Release()
	assert.Equal(t, 4, pool.Cap())

	futures := make([]*Future[int], 0, 16)
	for i := 0; i < 16; i++ {
		i := i
		futures = append(futures, pool.Submit(func() (int, error) {
			return i * i, nil
		}))
	}
	assert.NoError(t, AwaitAll(futures...))
	for i, f := range futures {
		assert.True(t, f.Done())
		assert.Equal(t, i*i, f.Value())
	}
}

func TestPoolError(t *testing.T) {
	pool := NewPool[string](0)
	defer pool.Release()

	errBoom := errors.New("boom")
	ok := pool.Submit(func() (string, error) { return "ok", nil })
	failed := pool.Submit(func() (string, error) { return "", errBoom })

	v, err := ok.Await()
	assert.NoError(t, err)
	assert.Equal(t, "ok", v)

	assert.False(t, failed.OK())
	assert.ErrorIs(t, failed.Err(), errBoom)
	assert.ErrorIs(t, AwaitAll(ok, failed), errBoom)

	<-failed.Inner()
}

func TestPoolPreHandler(t *testing.T) {
	called := make(chan struct{}, 1)
	pool := NewPool[struct{}](1, WithPreHandler(func() { called <- struct{}{} }), WithConcealPanic(true))
	defer pool.Release()

	_, err := pool.Submit(func() (struct{}, error) { return struct{}{}, nil }).Await()
	assert.NoError(t, err)
	select {
	case <-called:
	default:
		t.Fatal("pre handler not called")
	}
}
