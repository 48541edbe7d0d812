package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"tally/models"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeRoomCreated    EventType = "room_created"
	EventTypeMemberJoined   EventType = "member_joined"
	EventTypeMemberKicked   EventType = "member_kicked"
	EventTypeRoundSubmitted EventType = "round_submitted"
	EventTypeUserRegistered EventType = "user_registered"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change applied to a membership
type BalanceChangeEvent struct {
	UserID        string
	RoomID        string
	GameSessionID string
	ChangeAmount  int64
	Result        models.Result
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// RoomCreatedEvent represents a newly created room
type RoomCreatedEvent struct {
	RoomID     string
	Name       string
	OwnerID    string
	InviteCode string
}

func (e RoomCreatedEvent) Type() EventType {
	return EventTypeRoomCreated
}

// MemberJoinedEvent represents a user joining a room by invite code
type MemberJoinedEvent struct {
	RoomID string
	UserID string
	Role   models.Role
}

func (e MemberJoinedEvent) Type() EventType {
	return EventTypeMemberJoined
}

// MemberKickedEvent represents a membership removed by the room owner
type MemberKickedEvent struct {
	RoomID   string
	UserID   string
	KickedBy string
}

func (e MemberKickedEvent) Type() EventType {
	return EventTypeMemberKicked
}

// RoundSubmittedEvent represents a completed round submission
type RoundSubmittedEvent struct {
	GameSessionID string
	RoomID        string
	EntryCount    int
}

func (e RoundSubmittedEvent) Type() EventType {
	return EventTypeRoundSubmitted
}

// UserRegisteredEvent represents a new account
type UserRegisteredEvent struct {
	UserID string
	Email  string
}

func (e UserRegisteredEvent) Type() EventType {
	return EventTypeUserRegistered
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus stashes events published during a unit of work until the
// transaction commits. Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush is called after a successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Events are processed independently of the transaction lifecycle, so a
	// background context is used instead of the possibly-expired request one
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard is called after a rollback to drop pending events
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
