package feed

import (
	"context"
	"sync"
	"time"
)

const (
	// PollInterval is how often the monitor re-checks the head of the feed.
	PollInterval = 45 * time.Second

	// FocusStaleAfter is the backgrounded-time threshold above which
	// regaining focus triggers an immediate out-of-band poll.
	FocusStaleAfter = 2 * time.Minute
)

// Monitor runs the background staleness poll for one paginator. It only
// ever raises the paginator's new-content flag; the visible list is never
// touched, so scroll position and optimistic post state survive the poll.
//
// A monitor is tied to one filter: on filter change stop it and start a
// fresh one instead of retargeting the running loop.
type Monitor struct {
	Interval   time.Duration
	StaleAfter time.Duration

	paginator *Paginator
	focus     chan struct{}
	stop      chan struct{}
	done      chan struct{}
	once      sync.Once
}

func NewMonitor(p *Paginator) *Monitor {
	return &Monitor{
		Interval:   PollInterval,
		StaleAfter: FocusStaleAfter,
		paginator:  p,
		focus:      make(chan struct{}, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (m *Monitor) Start(ctx context.Context) {
	go m.run(ctx)
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.paginator.CheckForNew(ctx)
		case <-m.focus:
			if time.Since(m.paginator.LastRefresh()) > m.StaleAfter {
				m.paginator.CheckForNew(ctx)
			}
		case <-m.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Focus signals that the view regained foreground focus. Coalesces when a
// signal is already pending.
func (m *Monitor) Focus() {
	select {
	case m.focus <- struct{}{}:
	default:
	}
}

// Stop tears the poll loop and focus handling down as a unit and waits
// for the loop to exit. Call only after Start.
func (m *Monitor) Stop() {
	m.once.Do(func() { close(m.stop) })
	<-m.done
}
