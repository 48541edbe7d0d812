package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBusEmit(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(2)

	var mu sync.Mutex
	var received []Event
	handler := func(ctx context.Context, event Event) {
		mu.Lock()
		received = append(received, event)
		mu.Unlock()
		wg.Done()
	}
	bus.Subscribe(EventTypeRoomCreated, handler)
	bus.Subscribe(EventTypeRoomCreated, handler)

	// Only the subscribed type is delivered
	bus.Emit(context.Background(), MemberJoinedEvent{RoomID: "room-1", UserID: "bob"})
	bus.Emit(context.Background(), RoomCreatedEvent{RoomID: "room-1", OwnerID: "alice"})

	waitTimeout(t, &wg)
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, received, 2)
	assert.Equal(t, EventTypeRoomCreated, received[0].Type())
}

func TestBusRecoversFromPanickingHandler(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(1)
	bus.Subscribe(EventTypeMemberKicked, func(ctx context.Context, event Event) {
		defer wg.Done()
		panic("handler bug")
	})

	assert.NotPanics(t, func() {
		bus.Emit(context.Background(), MemberKickedEvent{RoomID: "room-1", UserID: "bob"})
	})
	waitTimeout(t, &wg)
}

func TestTransactionalBusFlush(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(1)
	var got Event
	bus.Subscribe(EventTypeRoundSubmitted, func(ctx context.Context, event Event) {
		got = event
		wg.Done()
	})

	txBus := NewTransactionalBus(bus)
	txBus.Publish(RoundSubmittedEvent{GameSessionID: "session-1", EntryCount: 2})

	// Nothing is emitted until the flush
	time.Sleep(20 * time.Millisecond)
	assert.Nil(t, got)

	txBus.Flush(context.Background())
	waitTimeout(t, &wg)
	assert.Equal(t, RoundSubmittedEvent{GameSessionID: "session-1", EntryCount: 2}, got)
}

func TestTransactionalBusDiscard(t *testing.T) {
	bus := NewBus()

	delivered := make(chan Event, 1)
	bus.Subscribe(EventTypeRoundSubmitted, func(ctx context.Context, event Event) {
		delivered <- event
	})

	txBus := NewTransactionalBus(bus)
	txBus.Publish(RoundSubmittedEvent{GameSessionID: "session-1"})
	txBus.Discard()
	txBus.Flush(context.Background())

	select {
	case <-delivered:
		t.Fatal("discarded event was delivered")
	case <-time.After(50 * time.Millisecond):
	}
}

func waitTimeout(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for handlers")
	}
}
