package runtime

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PY0226H/aicomm/domain/event"
)

func TestRegistry_ConcurrentGetOrCreate_SingleWinner(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(16)

	const goroutines = 64
	results := make([]*Broadcaster, goroutines)

	// When many goroutines race to create the same absent entry
	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer done.Done()
			start.Wait()
			results[i] = registry.GetOrCreate(42)
		}(i)
	}
	start.Done()
	done.Wait()

	// Then every caller got the same underlying channel
	for i := 1; i < goroutines; i++ {
		req.Same(results[0], results[i])
	}
	req.Equal(1, registry.Stats().Users)
}

func TestRegistry_PublishWithoutEntry_IsNoop(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(16)

	// Publishing to a user nobody ever subscribed for neither errors
	// nor blocks nor creates an entry.
	req.False(registry.Publish(7, msg(1)))
	req.Zero(registry.Stats().Users)
}

func TestRegistry_SubscribeThenPublish_Delivers(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(16)

	sub := registry.Subscribe(42)
	defer sub.Close()
	other := registry.Subscribe(43)
	defer other.Close()

	req.True(registry.Publish(42, msg(9)))

	select {
	case evt := <-sub.Events():
		req.Equal(event.NewMessageKind, evt.Kind())
	case <-time.After(time.Second):
		req.Fail("event never delivered")
	}

	// The other user's subscriber saw nothing.
	select {
	case evt := <-other.Events():
		req.Failf("unexpected event", "%v", evt)
	default:
	}
}

func TestRegistry_EntrySurvivesLastUnsubscribe(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(16)

	sub := registry.Subscribe(42)
	sub.Close()

	// The entry stays: publish still finds it, and a resubscribe
	// reuses the same broadcaster.
	req.True(registry.Publish(42, msg(1)))
	stats := registry.Stats()
	req.Equal(1, stats.Users)
	req.Zero(stats.Subscribers)
	req.Same(registry.GetOrCreate(42), registry.GetOrCreate(42))
}
