package frameloop

import (
	"context"
	"sync"
	"time"
)

// FrameInfo describes one tick of the loop.
type FrameInfo struct {
	// Seq counts frames from 1.
	Seq uint64
	// Time is the wall-clock instant of the tick.
	Time time.Time
	// Delta is the elapsed time since the previous tick.
	Delta time.Duration
}

type listener struct {
	id int
	fn func(FrameInfo)
}

// Loop drives per-frame work on a fixed wall-clock interval. It stands in
// for a renderer's animation callback: listeners run on the loop goroutine
// in registration order, so per-frame state needs no extra locking as long
// as it is touched only from listeners.
type Loop struct {
	interval time.Duration

	mu        sync.Mutex
	listeners []listener
	nextID    int
	frames    uint64
	running   bool
}

// New constructs a loop ticking at the given interval.
func New(interval time.Duration) *Loop {
	return &Loop{interval: interval}
}

// AddListener registers a per-frame callback and returns an unsubscribe
// function. Listeners added while the loop runs take effect on the next
// frame.
func (l *Loop) AddListener(fn func(FrameInfo)) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.listeners = append(l.listeners, listener{id: id, fn: fn})
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, entry := range l.listeners {
			if entry.id == id {
				l.listeners = append(l.listeners[:i], l.listeners[i+1:]...)
				return
			}
		}
	}
}

// Frames returns how many frames have ticked so far.
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// Run ticks until ctx is cancelled. It blocks; callers wanting a
// background loop start it in a goroutine. A second concurrent Run
// returns immediately.
func (l *Loop) Run(ctx context.Context) {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
	}()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now

			l.mu.Lock()
			l.frames++
			info := FrameInfo{Seq: l.frames, Time: now, Delta: delta}
			subs := make([]func(FrameInfo), 0, len(l.listeners))
			for _, entry := range l.listeners {
				subs = append(subs, entry.fn)
			}
			l.mu.Unlock()

			for _, fn := range subs {
				fn(info)
			}
		}
	}
}
