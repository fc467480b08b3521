package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
)

func TestFanout_BroadcastReachesEverySubscriber(t *testing.T) {
	f := newFanout()
	a, _ := f.add("park:updates")
	b, count := f.add("park:updates")
	other, _ := f.add("other")
	require.Equal(t, 2, count)

	event := entities.NewParkEvent("p1", entities.ParkEventTypeUpdated)
	f.broadcast("park:updates", event)

	assert.Equal(t, event, <-a)
	assert.Equal(t, event, <-b)
	assert.Len(t, other, 0)
}

func TestFanout_FullSubscriberDoesNotBlock(t *testing.T) {
	f := newFanout()
	ch, _ := f.add("park:updates")

	for i := 0; i < subscriberBuffer+5; i++ {
		f.broadcast("park:updates", entities.NewParkEvent("p1", entities.ParkEventTypeRatingUpdated))
	}

	assert.Len(t, ch, subscriberBuffer)
}

func TestFanout_RemoveClosesChannel(t *testing.T) {
	f := newFanout()
	a, _ := f.add("park:updates")
	b, _ := f.add("park:updates")

	assert.Equal(t, 1, f.remove("park:updates", a))
	_, open := <-a
	assert.False(t, open)

	assert.Equal(t, 0, f.remove("park:updates", b))
	assert.Equal(t, 0, f.remove("park:updates", b))
}

func TestFanout_CloseAll(t *testing.T) {
	f := newFanout()
	a, _ := f.add("park:updates")

	f.closeAll()

	_, open := <-a
	assert.False(t, open)
}
