package channels_test

import (
	"context"
	"testing"
	"time"

	"github.com/alkime/audioscribe/pkg/channels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster(t *testing.T) {
	t.Run("error cases", func(t *testing.T) {
		t.Run("subscribe with nil channel", func(t *testing.T) {
			fo := channels.NewBroadcaster[int]()
			err := fo.Subscribe(nil)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "cannot be nil")
		})

		t.Run("subscribe with timeout and nil channel", func(t *testing.T) {
			fo := channels.NewBroadcaster[int]()
			err := fo.SubscribeWithTimeout(nil, 1*time.Second)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "cannot be nil")
		})

		t.Run("subscribe with timeout and zero timeout", func(t *testing.T) {
			fo := channels.NewBroadcaster[int]()
			ch := make(chan int, 10)
			err := fo.SubscribeWithTimeout(ch, 0)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "must be positive")
		})

		t.Run("run twice", func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			fo := channels.NewBroadcaster[int]()

			_, err := fo.Run(ctx)
			require.NoError(t, err)

			_, err = fo.Run(ctx)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "already started")
		})
	})

	t.Run("basic broadcasting", func(t *testing.T) {
		t.Run("multiple subscribers receive same messages", func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			fo := channels.NewBroadcaster[int]()
			sub1 := make(chan int, 10)
			sub2 := make(chan int, 10)
			require.NoError(t, fo.Subscribe(sub1))
			require.NoError(t, fo.Subscribe(sub2))

			input, err := fo.Run(ctx)
			require.NoError(t, err)

			input <- 1
			input <- 2
			input <- 3

			// Shutdown and collect
			cancel()
			fo.Wait()
			close(sub1)
			close(sub2)

			assert.Equal(t, []int{1, 2, 3}, channels.ReceiveAll(sub1, 10*time.Millisecond, 0))
			assert.Equal(t, []int{1, 2, 3}, channels.ReceiveAll(sub2, 10*time.Millisecond, 0))
		})

		t.Run("subscriber added after run receives later messages", func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			fo := channels.NewBroadcaster[int]()
			input, err := fo.Run(ctx)
			require.NoError(t, err)

			sub := make(chan int, 10)
			require.NoError(t, fo.Subscribe(sub))

			input <- 7

			received := channels.ReceiveAll(sub, 100*time.Millisecond, 1)
			assert.Equal(t, []int{7}, received)
		})

		t.Run("unsubscribed channel stops receiving", func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			fo := channels.NewBroadcaster[int]()
			stay := make(chan int, 10)
			leave := make(chan int, 10)
			require.NoError(t, fo.Subscribe(stay))
			require.NoError(t, fo.Subscribe(leave))

			input, err := fo.Run(ctx)
			require.NoError(t, err)

			assert.True(t, fo.Unsubscribe(leave))
			assert.False(t, fo.Unsubscribe(leave), "second unsubscribe is a no-op")

			input <- 1

			cancel()
			fo.Wait()
			close(stay)
			close(leave)

			assert.Equal(t, []int{1}, channels.ReceiveAll(stay, 10*time.Millisecond, 0))
			assert.Empty(t, channels.ReceiveAll(leave, 10*time.Millisecond, 0))
		})
	})

	t.Run("message dropping", func(t *testing.T) {
		t.Run("full subscriber drops while ready subscriber receives", func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			fo := channels.NewBroadcaster[int]()
			fullSub := make(chan int, 1)
			fullSub <- 99 // Pre-fill to make it full
			readySub := make(chan int, 10)

			require.NoError(t, fo.Subscribe(fullSub))
			require.NoError(t, fo.Subscribe(readySub))

			input, err := fo.Run(ctx)
			require.NoError(t, err)

			for i := 1; i <= 5; i++ {
				input <- i
			}

			cancel()
			fo.Wait()

			stats := fo.Stats()
			require.Len(t, stats, 2)
			assert.Equal(t, 5, stats[0].Dropped, "full subscriber should drop all 5 messages")
			assert.Equal(t, 0, stats[1].Dropped, "ready subscriber should drop no messages")

			close(readySub)
			assert.Equal(t, []int{1, 2, 3, 4, 5}, channels.ReceiveAll(readySub, 10*time.Millisecond, 0))
		})

		t.Run("closed subscriber is marked inactive", func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			fo := channels.NewBroadcaster[int]()
			sub := make(chan int, 10)
			require.NoError(t, fo.Subscribe(sub))

			input, err := fo.Run(ctx)
			require.NoError(t, err)

			close(sub)
			input <- 1
			input <- 2

			cancel()
			fo.Wait()

			stats := fo.Stats()
			require.Len(t, stats, 1)
			assert.Equal(t, 2, stats[0].Dropped)
			assert.True(t, stats[0].Inactive)
		})
	})

	t.Run("lifecycle", func(t *testing.T) {
		t.Run("messages in flight are drained", func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())

			fo := channels.NewBroadcaster[int]()
			sub := make(chan int, 10)
			require.NoError(t, fo.Subscribe(sub))

			input, err := fo.Run(ctx)
			require.NoError(t, err)

			input <- 1
			input <- 2
			input <- 3

			// Cancel immediately
			cancel()
			fo.Wait()
			close(sub)

			assert.Equal(t, []int{1, 2, 3}, channels.ReceiveAll(sub, 10*time.Millisecond, 0))
		})
	})
}

func TestReceiveAll_Limit(t *testing.T) {
	ch := make(chan int, 5)
	for i := range 5 {
		ch <- i
	}

	assert.Equal(t, []int{0, 1}, channels.ReceiveAll(ch, 10*time.Millisecond, 2))
}
