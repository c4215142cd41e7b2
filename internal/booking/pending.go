package booking

import "context"

// Pending is the eventual result of a create or update whose commit is delayed.
// The commit happens whether or not anyone waits for it.
type Pending struct {
	done    chan struct{}
	booking *Booking
	err     error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) resolve(b *Booking, err error) {
	p.booking = b
	p.err = err
	close(p.done)
}

// Done is closed once the operation has been committed or rejected.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the operation resolves or ctx ends. A ctx error only stops
// the wait; the operation itself still applies.
func (p *Pending) Wait(ctx context.Context) (*Booking, error) {
	select {
	case <-p.done:
		return p.booking, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
