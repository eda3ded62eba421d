package browse

import (
	"context"
	"log"
	"sync"
	"time"

	"rickdex/internal/directory"
	"rickdex/pkg/models"
)

// DefaultDebounce is the quiet period after the last keystroke before a
// search is issued.
const DefaultDebounce = 500 * time.Millisecond

// PageFetcher retrieves one page of the character listing.
type PageFetcher interface {
	ListCharacters(ctx context.Context, q directory.Query) (*models.CharacterPage, error)
}

// Phase is the controller's position in Idle -> Loading -> {Ready, Empty}.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseEmpty
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is a snapshot of the list screen's query state.
type State struct {
	SearchText  string // pending filter, updated on every keystroke
	Query       string // filter of the results currently applied
	CurrentPage int
	TotalPages  int
	IsLoading   bool
	Phase       Phase
	Results     []models.Character
	SelectedID  int
	Err         error // cause of the last Empty, nil for a genuine empty page

	Generation uint64 // generation of the latest issued fetch
	Revision   uint64 // bumped on every mutation
}

type Options struct {
	Debounce  time.Duration
	Scheduler Scheduler
}

// Controller owns one State and is its only mutator. All methods are safe
// for concurrent use; mu serializes them the way a single UI thread would.
type Controller struct {
	fetcher PageFetcher
	sched   Scheduler
	delay   time.Duration

	mu       sync.Mutex
	state    State
	gen      uint64
	inflight context.CancelFunc
	timer    Timer
	seq      uint64 // debounce token; a timer whose token is stale does nothing
	closed   bool

	subsMu  sync.Mutex
	subs    map[uint64]func(State)
	nextSub uint64

	notifyMu     sync.Mutex
	lastNotified uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewController(fetcher PageFetcher, opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		fetcher: fetcher,
		sched:   opts.Scheduler,
		delay:   opts.Debounce,
		state: State{
			CurrentPage: 1,
			TotalPages:  1,
			Phase:       PhaseIdle,
			Results:     []models.Character{},
		},
		subs:   make(map[uint64]func(State)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to receive a snapshot after every mutation.
// Snapshots arrive in revision order; an older one is never delivered after
// a newer one. fn runs on the mutating goroutine and must not call the
// Controller's mutating methods synchronously.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.subsMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subsMu.Unlock()

	return func() {
		c.subsMu.Lock()
		delete(c.subs, id)
		c.subsMu.Unlock()
	}
}

// SetSearchText records text for display and schedules a search for it
// once typing has been quiet for the debounce delay. A search scheduled by
// an earlier call that has not fired yet is cancelled.
func (c *Controller) SetSearchText(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state.SearchText = text
	c.stopTimerLocked()
	seq := c.seq
	c.timer = c.sched.AfterFunc(c.delay, func() { c.fireSearch(seq, text) })
	c.unlockAndNotify()
}

func (c *Controller) fireSearch(seq uint64, text string) {
	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.state.CurrentPage = 1
	c.startFetchLocked(text, 1)
	c.unlockAndNotify()
}

// FetchPage requests page of the listing filtered by text and makes text
// the current search text. It returns the
// generation of the request; only the response for the latest generation
// is ever applied.
func (c *Controller) FetchPage(text string, page int) uint64 {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0
	}
	gen := c.startFetchLocked(text, page)
	c.unlockAndNotify()
	return gen
}

// GoToPage fetches page for the current search text. Pages outside
// [1, TotalPages] are ignored and leave the state untouched.
func (c *Controller) GoToPage(page int) bool {
	c.mu.Lock()
	if c.closed || page < 1 || page > c.state.TotalPages {
		c.mu.Unlock()
		return false
	}
	c.state.CurrentPage = page
	c.startFetchLocked(c.state.SearchText, page)
	c.unlockAndNotify()
	return true
}

// Refresh re-issues the request for the results on screen.
func (c *Controller) Refresh() uint64 {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0
	}
	text, page := c.state.Query, c.state.CurrentPage
	if c.state.Phase == PhaseIdle {
		text, page = c.state.SearchText, 1
	}
	gen := c.startFetchLocked(text, page)
	c.unlockAndNotify()
	return gen
}

// Select marks the character with id as chosen. It reports false when id
// is not among the current results.
func (c *Controller) Select(id int) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	found := false
	for _, ch := range c.state.Results {
		if ch.ID == id {
			found = true
			break
		}
	}
	if !found {
		c.mu.Unlock()
		return false
	}
	c.state.SelectedID = id
	c.unlockAndNotify()
	return true
}

// Close cancels pending work and waits for in-flight fetches to return.
// The controller ignores every call afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopTimerLocked()
	if c.inflight != nil {
		c.inflight()
		c.inflight = nil
	}
	c.cancel()
	c.mu.Unlock()

	c.subsMu.Lock()
	c.subs = make(map[uint64]func(State))
	c.subsMu.Unlock()

	c.wg.Wait()
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.seq++
}

// startFetchLocked issues a new generation for text, which becomes the
// search text that later page changes use. Any pending debounce and the
// previous in-flight request are cancelled.
func (c *Controller) startFetchLocked(text string, page int) uint64 {
	if page < 1 {
		page = 1
	}
	c.stopTimerLocked()
	if c.inflight != nil {
		c.inflight()
	}

	c.gen++
	gen := c.gen
	ctx, cancel := context.WithCancel(c.ctx)
	c.inflight = cancel

	c.state.SearchText = text
	c.state.IsLoading = true
	c.state.Phase = PhaseLoading
	c.state.Generation = gen

	c.wg.Add(1)
	go c.run(ctx, cancel, gen, text, page)
	return gen
}

func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, gen uint64, text string, page int) {
	defer c.wg.Done()
	defer cancel()

	res, err := c.fetcher.ListCharacters(ctx, directory.Query{Name: text, Page: page})

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.inflight = nil
	c.applyLocked(text, page, res, err)
	c.unlockAndNotify()
}

func (c *Controller) applyLocked(text string, page int, res *models.CharacterPage, err error) {
	c.state.IsLoading = false
	c.state.Query = text
	c.state.SelectedID = 0

	if err != nil || res == nil || len(res.Results) == 0 {
		if err != nil && !directory.IsNotFound(err) {
			log.Printf("[browse] fetch %q page %d: %v", text, page, err)
		}
		c.state.Results = []models.Character{}
		c.state.TotalPages = 1
		c.state.CurrentPage = 1
		c.state.Phase = PhaseEmpty
		c.state.Err = err
		return
	}

	c.state.Results = res.Results
	c.state.TotalPages = max(1, res.Info.Pages)
	c.state.CurrentPage = min(max(1, page), c.state.TotalPages)
	c.state.Phase = PhaseReady
	c.state.Err = nil
}

// unlockAndNotify bumps the revision, releases mu and hands the snapshot
// to subscribers.
func (c *Controller) unlockAndNotify() {
	c.state.Revision++
	snap := c.state
	c.mu.Unlock()

	c.subsMu.Lock()
	fns := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subsMu.Unlock()

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if snap.Revision <= c.lastNotified {
		return
	}
	c.lastNotified = snap.Revision
	for _, fn := range fns {
		fn(snap)
	}
}
