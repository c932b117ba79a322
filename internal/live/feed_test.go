package live

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv[T any](t *testing.T, s *Subscription[T]) Snapshot[T] {
	t.Helper()
	select {
	case snap, ok := <-s.C:
		require.True(t, ok, "subscription closed")
		return snap
	case <-time.After(time.Second):
		t.Fatal("no snapshot received")
	}
	return Snapshot[T]{}
}

func TestFeed_SubscribeGetsLatest(t *testing.T) {
	f := NewFeed[int]()
	f.Publish([]int{1, 2})

	sub := f.Subscribe(context.Background())
	defer sub.Cancel()

	snap := recv(t, sub)
	assert.Equal(t, []int{1, 2}, snap.Items)
	assert.Equal(t, uint64(1), snap.Version)
}

func TestFeed_SlowSubscriberSeesNewest(t *testing.T) {
	f := NewFeed[string]()
	sub := f.Subscribe(context.Background())
	defer sub.Cancel()

	f.Publish([]string{"a"})
	f.Publish([]string{"a", "b"})
	f.Publish([]string{"c"})

	snap := recv(t, sub)
	assert.Equal(t, []string{"c"}, snap.Items)
	assert.Equal(t, uint64(3), snap.Version)

	select {
	case <-sub.C:
		t.Fatal("stale snapshot should have been replaced")
	default:
	}
}

func TestFeed_SnapshotIsACopy(t *testing.T) {
	f := NewFeed[int]()
	items := []int{1, 2, 3}
	f.Publish(items)
	items[0] = 99

	latest, ok := f.Latest()
	require.True(t, ok)
	assert.Equal(t, 1, latest.Items[0])
}

func TestFeed_CancelAndContext(t *testing.T) {
	f := NewFeed[int]()

	sub := f.Subscribe(context.Background())
	sub.Cancel()
	sub.Cancel()
	_, ok := <-sub.C
	assert.False(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	sub2 := f.Subscribe(ctx)
	assert.Equal(t, 1, f.Subscribers())
	cancel()

	select {
	case _, ok := <-sub2.C:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("context cancel did not close subscription")
	}
	assert.Equal(t, 0, f.Subscribers())

	// publishing after every subscriber left must not block or panic
	f.Publish([]int{1})
}

func TestFeed_LatestEmpty(t *testing.T) {
	_, ok := NewFeed[int]().Latest()
	assert.False(t, ok)
}
