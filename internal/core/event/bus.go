package event

// Callback receives the payload of a published event. The payload is passed
// by reference and shared between all subscribers; callbacks must not assume
// exclusive ownership.
type Callback func(payload any)

// Handle identifies a single subscription for later removal.
type Handle struct {
	event string
	id    uint64
}

type subscription struct {
	id uint64
	fn Callback
}

// Bus is a named-channel publish/subscribe dispatcher. Delivery is
// synchronous and in subscription order. The bus is owned by the engine and
// only touched from the frame goroutine.
type Bus struct {
	subs   map[string][]subscription
	nextID uint64
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[string][]subscription),
	}
}

// Subscribe registers a callback for an event name and returns a handle for
// Unsubscribe.
func (b *Bus) Subscribe(event string, fn Callback) Handle {
	b.nextID++
	b.subs[event] = append(b.subs[event], subscription{id: b.nextID, fn: fn})
	return Handle{event: event, id: b.nextID}
}

// Once registers a callback that unsubscribes itself after its first
// invocation.
func (b *Bus) Once(event string, fn Callback) Handle {
	var h Handle
	h = b.Subscribe(event, func(payload any) {
		b.Unsubscribe(h)
		fn(payload)
	})
	return h
}

// Unsubscribe removes the subscription identified by the handle. Unknown or
// already removed handles are ignored.
func (b *Bus) Unsubscribe(h Handle) {
	subs := b.subs[h.event]
	for i, s := range subs {
		if s.id == h.id {
			b.subs[h.event] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish invokes every callback currently subscribed to the event, in
// subscription order. Publishing with zero subscribers is a no-op. Dispatch
// iterates a snapshot of the subscriber list, so a callback may unsubscribe
// itself (or any other subscription) mid-dispatch; removed callbacks are not
// invoked for the remainder of the dispatch. Re-entrant publishes run
// synchronously to completion before the outer dispatch continues.
func (b *Bus) Publish(event string, payload any) {
	subs := b.subs[event]
	if len(subs) == 0 {
		return
	}
	snapshot := make([]subscription, len(subs))
	copy(snapshot, subs)
	for _, s := range snapshot {
		if !b.alive(event, s.id) {
			continue
		}
		s.fn(payload)
	}
}

// SubscriberCount returns the number of live subscriptions for an event.
func (b *Bus) SubscriberCount(event string) int {
	return len(b.subs[event])
}

func (b *Bus) alive(event string, id uint64) bool {
	for _, s := range b.subs[event] {
		if s.id == id {
			return true
		}
	}
	return false
}
