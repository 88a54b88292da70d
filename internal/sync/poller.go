// Package sync runs background flushing of pending checklist changes.
package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/checklist-sync/internal/checklist"
)

// State represents the current state of a flush cycle for one store.
type State int

const (
	Idle State = iota
	Running
	Failed
)

// Status holds the flush state for a single checklist store.
type Status struct {
	Slug      string
	State     State
	LastFlush time.Time
	Error     error
}

// ResultMsg is a tea.Msg sent when a flush cycle completes.
type ResultMsg struct {
	Slug        string
	SyncedItems int
	Errors      []error
	Err         error
}

// flushTimeout is the maximum time allowed for a single flush cycle.
const flushTimeout = 30 * time.Second

// Poller periodically flushes pending changes on registered stores.
type Poller struct {
	interval time.Duration
	logger   *zap.Logger

	mu       gosync.Mutex
	stores   []*checklist.Store
	statuses map[string]*Status
	running  bool

	resultCh  chan ResultMsg
	triggerCh chan string
	stopCh    chan struct{}
}

// New creates a Poller flushing at the given interval.
func New(interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 120 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		interval:  interval,
		logger:    logger,
		statuses:  make(map[string]*Status),
		resultCh:  make(chan ResultMsg, 16),
		triggerCh: make(chan string, 16),
		stopCh:    make(chan struct{}),
	}
}

// Register adds a checklist store to the flush rotation.
func (p *Poller) Register(s *checklist.Store) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stores = append(p.stores, s)
	p.statuses[s.Slug()] = &Status{Slug: s.Slug(), State: Idle}
}

// Start launches one flushing goroutine per registered store and
// returns a tea.Cmd that delivers the next ResultMsg.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	stores := make([]*checklist.Store, len(p.stores))
	copy(stores, p.stores)
	p.mu.Unlock()

	for _, s := range stores {
		go p.pollStore(s)
	}

	return p.waitForResult()
}

// Stop halts all flushing goroutines.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Flush triggers an immediate flush of a single store by slug.
func (p *Poller) Flush(slug string) tea.Cmd {
	select {
	case p.triggerCh <- slug:
	default:
	}
	return nil
}

// FlushAll triggers an immediate flush of every registered store.
func (p *Poller) FlushAll() tea.Cmd {
	p.mu.Lock()
	stores := make([]*checklist.Store, len(p.stores))
	copy(stores, p.stores)
	p.mu.Unlock()

	for _, s := range stores {
		select {
		case p.triggerCh <- s.Slug():
		default:
			// Channel full; skip to avoid blocking.
		}
	}
	return nil
}

// Statuses returns the current flush status of all registered stores.
func (p *Poller) Statuses() []Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	statuses := make([]Status, 0, len(p.statuses))
	for _, s := range p.statuses {
		statuses = append(statuses, *s)
	}
	return statuses
}

// pollStore runs the flush loop for a single store.
func (p *Poller) pollStore(s *checklist.Store) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.flush(s)
		case slug := <-p.triggerCh:
			if slug == s.Slug() {
				p.flush(s)
			}
		}
	}
}

// flush runs one SyncPendingChanges cycle and reports the outcome.
func (p *Poller) flush(s *checklist.Store) {
	if !s.SyncStatus().Pending {
		return
	}

	p.setStatus(s.Slug(), Running, nil)

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	result, err := s.SyncPendingChanges(ctx)
	if err != nil {
		p.setStatus(s.Slug(), Failed, err)
		p.logger.Warn("flush failed",
			zap.String("slug", s.Slug()),
			zap.Error(err),
		)
		p.sendResult(ResultMsg{Slug: s.Slug(), Errors: result.Errors, Err: err})
		return
	}

	p.setStatus(s.Slug(), Idle, nil)
	p.sendResult(ResultMsg{Slug: s.Slug(), SyncedItems: result.SyncedItems})
}

// setStatus updates the flush status for a store.
func (p *Poller) setStatus(slug string, state State, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status, ok := p.statuses[slug]
	if !ok {
		return
	}

	status.State = state
	status.Error = err
	if state == Idle && err == nil {
		status.LastFlush = time.Now()
	}
}

// sendResult sends a ResultMsg without blocking.
func (p *Poller) sendResult(msg ResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if the channel is full to avoid blocking the poller.
	}
}

// waitForResult returns a tea.Cmd that waits for the next result.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult continues the result subscription after a
// ResultMsg has been processed.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
