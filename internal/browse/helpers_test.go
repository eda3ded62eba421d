package browse

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rickdex/internal/directory"
	"rickdex/pkg/models"
)

// manualScheduler fires timers only when the test advances its clock.
type manualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	s       *manualScheduler
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, at: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired && t.at <= s.now {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

func (s *manualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type fetchReply struct {
	page *models.CharacterPage
	err  error
}

type fetchCall struct {
	q     directory.Query
	reply chan fetchReply
}

func (c *fetchCall) respond(page *models.CharacterPage, err error) {
	c.reply <- fetchReply{page: page, err: err}
}

// gatedFetcher blocks every request until the test answers it or stops the
// fetcher. It ignores ctx on purpose so stale answers still reach the
// controller.
type gatedFetcher struct {
	calls chan *fetchCall
	stop  chan struct{}
	once  sync.Once
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{
		calls: make(chan *fetchCall, 32),
		stop:  make(chan struct{}),
	}
}

func (f *gatedFetcher) ListCharacters(ctx context.Context, q directory.Query) (*models.CharacterPage, error) {
	call := &fetchCall{q: q, reply: make(chan fetchReply, 1)}
	f.calls <- call
	select {
	case r := <-call.reply:
		return r.page, r.err
	case <-f.stop:
		return nil, errors.New("fetcher stopped")
	}
}

func (f *gatedFetcher) Stop() {
	f.once.Do(func() { close(f.stop) })
}

func (f *gatedFetcher) next(t *testing.T) *fetchCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("Expected a fetch to be issued, got none")
		return nil
	}
}

func (f *gatedFetcher) expectNone(t *testing.T) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("Expected no fetch, got %+v", c.q)
	case <-time.After(50 * time.Millisecond):
	}
}

func pageOf(pages int, names ...string) *models.CharacterPage {
	p := &models.CharacterPage{Info: models.PageInfo{Count: len(names), Pages: pages}}
	for i, n := range names {
		p.Results = append(p.Results, models.Character{ID: i + 1, Name: n, Status: "Alive"})
	}
	return p
}

func waitForState(t *testing.T, c *Controller, cond func(State) bool) State {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s := c.State(); cond(s) {
			return s
		}
		time.Sleep(5 * time.Millisecond)
	}
	s := c.State()
	t.Fatalf("Timed out waiting for state, last: %+v", s)
	return s
}
