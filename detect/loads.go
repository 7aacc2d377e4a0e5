package detect

import (
	"context"
	"sync"

	"github.com/fwojciec/adscan"
)

// loadTracker counts load callbacks that have been subscribed but have not
// run yet.
type loadTracker struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	pending map[*pendingLoad]struct{}
	closed  bool
}

type pendingLoad struct {
	once sync.Once
	sub  adscan.Subscription
	t    *loadTracker
}

func (l *pendingLoad) done() {
	l.once.Do(func() {
		l.t.mu.Lock()
		delete(l.t.pending, l)
		l.t.mu.Unlock()
		l.t.wg.Done()
	})
}

// subscribe registers fn through on and tracks it until it has run.
// Nothing is subscribed once the tracker is closed.
func (t *loadTracker) subscribe(on func(func()) adscan.Subscription, fn func()) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	if t.pending == nil {
		t.pending = make(map[*pendingLoad]struct{})
	}
	l := &pendingLoad{t: t}
	t.pending[l] = struct{}{}
	t.wg.Add(1)
	t.mu.Unlock()

	sub := on(func() {
		defer l.done()
		fn()
	})

	t.mu.Lock()
	l.sub = sub
	closed := t.closed
	t.mu.Unlock()
	if closed {
		sub.Cancel()
		l.done()
	}
}

// wait blocks until every tracked callback has run or ctx is done. When
// ctx ends first the remaining subscriptions are cancelled, the tracker
// closes and ctx's error is returned.
func (t *loadTracker) wait(ctx context.Context) error {
	idle := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(idle)
	}()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
	}

	t.mu.Lock()
	t.closed = true
	abandoned := make([]*pendingLoad, 0, len(t.pending))
	subs := make([]adscan.Subscription, 0, len(t.pending))
	for l := range t.pending {
		abandoned = append(abandoned, l)
		subs = append(subs, l.sub)
	}
	t.mu.Unlock()

	for i, l := range abandoned {
		// A nil subscription is still being registered; subscribe
		// cancels it once it sees the tracker closed.
		if subs[i] != nil {
			subs[i].Cancel()
		}
		l.done()
	}
	<-idle
	return ctx.Err()
}
