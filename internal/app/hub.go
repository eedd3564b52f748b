package app

import (
	"log"
	"sync"

	"roboburger/internal/models"
	"roboburger/internal/orders"
	"roboburger/internal/robot"
	"roboburger/internal/stats"
	"roboburger/internal/store"
)

// Hub owns the store subscriptions and the reduce loop. Events from
// snapshot callbacks and from the HTTP surface are serialized through a
// single channel; listeners receive the state after every transition.
type Hub struct {
	events chan Event
	stop   chan struct{}
	done   chan struct{}

	mu        sync.Mutex
	state     State
	listeners map[int]chan State
	nextID    int

	subs []store.Subscription
}

// NewHub starts the reduce loop.
func NewHub() *Hub {
	h := &Hub{
		events:    make(chan Event, 64),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		state:     Initial(),
		listeners: map[int]chan State{},
	}
	go h.run()
	return h
}

// Attach wires the hub to the store-facing controllers. Subscription
// lifetimes are owned by the hub and released on Close.
func (h *Hub) Attach(st store.Store, oc *orders.Controller, rc *robot.Controller, agg *stats.Aggregator) error {
	sub, err := oc.Watch(func(list []models.Order) {
		h.Dispatch(OrdersSnapshot{Orders: list})
	})
	if err != nil {
		return err
	}
	h.subs = append(h.subs, sub)

	sub, err = rc.Watch(func(status models.RobotStatus, attached bool) {
		h.Dispatch(RobotStatusChanged{Status: status, Attached: attached})
	})
	if err != nil {
		return err
	}
	h.subs = append(h.subs, sub)

	sub, err = agg.Watch(func(ds models.DailyStats) {
		h.Dispatch(StatsSnapshot{Stats: ds})
	})
	if err != nil {
		return err
	}
	h.subs = append(h.subs, sub)

	sub, err = st.Watch(store.PathConnected, func(snap store.Snapshot) {
		h.Dispatch(ConnectionChanged{Connected: snap.Exists && string(snap.Data) == "true"})
	})
	if err != nil {
		return err
	}
	h.subs = append(h.subs, sub)
	return nil
}

// Dispatch queues an event for the reduce loop. Dropping is preferable
// to blocking a store callback; the next snapshot supersedes anyway.
func (h *Hub) Dispatch(ev Event) {
	select {
	case h.events <- ev:
	case <-h.stop:
	default:
		log.Printf("app: event queue full, dropping %T", ev)
	}
}

// State returns the current state.
func (h *Hub) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Listen registers a state listener. The current state is delivered
// first; cancel releases the listener.
func (h *Hub) Listen() (<-chan State, func()) {
	ch := make(chan State, 8)
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = ch
	ch <- h.state
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.listeners[id]; ok {
			delete(h.listeners, id)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Close releases the subscriptions and stops the reduce loop.
func (h *Hub) Close() {
	for _, sub := range h.subs {
		sub.Unsubscribe()
	}
	close(h.stop)
	<-h.done
}

func (h *Hub) run() {
	defer close(h.done)
	for {
		select {
		case <-h.stop:
			return
		case ev := <-h.events:
			h.mu.Lock()
			h.state = Reduce(h.state, ev)
			for _, ch := range h.listeners {
				select {
				case ch <- h.state:
				default:
					// Slow listener; it will catch up on the next event.
				}
			}
			h.mu.Unlock()
		}
	}
}
