package notify

import (
	"slices"
	"sync"

	"github.com/nekogravitycat/driverlink-backend/internal/booking"
)

// PoolFunc receives the latest available-to-claim list of one driver.
type PoolFunc func(available []booking.Booking)

type subscription struct {
	actorID string
	fn      PoolFunc
	lastIDs []string
}

// Watcher tracks the pool as seen by each subscribed driver and calls back
// whenever a driver's available-to-claim list changes. It implements
// booking.Listener.
type Watcher struct {
	// deliverMu serializes callbacks so a subscriber never sees an older list
	// after a newer one.
	deliverMu sync.Mutex

	mu       sync.Mutex
	version  uint64
	bookings []booking.Booking
	subs     map[uint64]*subscription
	nextID   uint64
}

func NewWatcher() *Watcher {
	return &Watcher{
		subs: make(map[uint64]*subscription),
	}
}

// Subscribe registers fn for actorID and immediately calls it with the current
// list. fn runs on the goroutine that committed the change, must not block, and
// must not call Subscribe. The returned function cancels the subscription.
func (w *Watcher) Subscribe(actorID string, fn PoolFunc) (cancel func()) {
	w.deliverMu.Lock()
	defer w.deliverMu.Unlock()

	w.mu.Lock()
	w.nextID++
	id := w.nextID
	current := booking.AvailableToClaim(w.bookings, actorID)
	w.subs[id] = &subscription{
		actorID: actorID,
		fn:      fn,
		lastIDs: bookingIDs(current),
	}
	w.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.subs, id)
			w.mu.Unlock()
		})
	}
}

// BookingsChanged implements booking.Listener. Snapshots older than the last
// one seen are ignored.
func (w *Watcher) BookingsChanged(s booking.Snapshot) {
	w.deliverMu.Lock()
	defer w.deliverMu.Unlock()

	type delivery struct {
		fn   PoolFunc
		list []booking.Booking
	}

	w.mu.Lock()
	if s.Version <= w.version {
		w.mu.Unlock()
		return
	}
	w.version = s.Version
	w.bookings = s.Bookings

	var deliveries []delivery
	for _, sub := range w.subs {
		list := booking.AvailableToClaim(s.Bookings, sub.actorID)
		ids := bookingIDs(list)
		if slices.Equal(ids, sub.lastIDs) {
			continue
		}
		sub.lastIDs = ids
		deliveries = append(deliveries, delivery{fn: sub.fn, list: list})
	}
	w.mu.Unlock()

	for _, d := range deliveries {
		d.fn(d.list)
	}
}

// Subscribers returns the number of active subscriptions.
func (w *Watcher) Subscribers() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subs)
}

// NewEntries returns the IDs in curr that were not in prev, in curr order.
func NewEntries(prev, curr []booking.Booking) []string {
	seen := make(map[string]struct{}, len(prev))
	for _, b := range prev {
		seen[b.ID] = struct{}{}
	}
	added := make([]string, 0)
	for _, b := range curr {
		if _, ok := seen[b.ID]; !ok {
			added = append(added, b.ID)
		}
	}
	return added
}

func bookingIDs(list []booking.Booking) []string {
	ids := make([]string, len(list))
	for i, b := range list {
		ids[i] = b.ID
	}
	return ids
}
