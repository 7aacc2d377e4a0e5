package adscan

import "sync"

// Subscription is a registered callback that can be withdrawn.
type Subscription interface {
	// Cancel prevents the callback from running if it has not run yet.
	Cancel()
}

// Signal is a single-fire event such as a load completion. Each subscriber
// runs at most once. Subscribing after the signal fired runs the callback
// immediately, since the event it waits for already happened.
//
// Signal is safe for concurrent use.
type Signal struct {
	mu    sync.Mutex
	fired bool
	subs  []*subscription
}

type subscription struct {
	once sync.Once
	fn   func()
}

// Cancel implements Subscription.
func (s *subscription) Cancel() {
	s.once.Do(func() {})
}

func (s *subscription) run() {
	s.once.Do(s.fn)
}

// Subscribe registers fn to run when the signal fires.
func (sig *Signal) Subscribe(fn func()) Subscription {
	sub := &subscription{fn: fn}

	sig.mu.Lock()
	if sig.fired {
		sig.mu.Unlock()
		sub.run()
		return sub
	}
	sig.subs = append(sig.subs, sub)
	sig.mu.Unlock()

	return sub
}

// Fire runs every pending subscriber in registration order.
// Calling Fire again has no effect.
func (sig *Signal) Fire() {
	sig.mu.Lock()
	if sig.fired {
		sig.mu.Unlock()
		return
	}
	sig.fired = true
	subs := sig.subs
	sig.subs = nil
	sig.mu.Unlock()

	for _, sub := range subs {
		sub.run()
	}
}

// Fired reports whether Fire has been called.
func (sig *Signal) Fired() bool {
	sig.mu.Lock()
	defer sig.mu.Unlock()
	return sig.fired
}

// SubscriptionFunc adapts a cancel function to the Subscription interface.
type SubscriptionFunc func()

// Cancel calls f.
func (f SubscriptionFunc) Cancel() {
	f()
}
