package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker(t *testing.T) {
	t.Run("fans out to all subscribers", func(t *testing.T) {
		b := NewBroker()
		a := b.Subscribe()
		c := b.Subscribe()
		defer b.Unsubscribe(a)
		defer b.Unsubscribe(c)

		b.Publish(Event{RequestID: "r1", Stage: StageStarted})

		got := <-a
		assert.Equal(t, "r1", got.RequestID)
		assert.False(t, got.At.IsZero())
		assert.Equal(t, "r1", (<-c).RequestID)
	})

	t.Run("slow subscribers drop events", func(t *testing.T) {
		b := NewBroker()
		ch := b.Subscribe()
		for i := 0; i < 20; i++ {
			b.Publish(Event{Stage: StageFinished})
		}
		assert.Len(t, ch, cap(ch))
		b.Unsubscribe(ch)
	})

	t.Run("unsubscribe closes once", func(t *testing.T) {
		b := NewBroker()
		ch := b.Subscribe()
		b.Unsubscribe(ch)
		b.Unsubscribe(ch)
		_, open := <-ch
		require.False(t, open)
	})

	t.Run("nil broker publish is a no-op", func(t *testing.T) {
		var b *Broker
		assert.NotPanics(t, func() { b.Publish(Event{}) })
	})
}
