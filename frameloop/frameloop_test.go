package frameloop

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLoopTicksAndCancels(t *testing.T) {
	l := New(5 * time.Millisecond)

	var mu sync.Mutex
	var frames []FrameInfo
	got := make(chan struct{}, 16)
	l.AddListener(func(f FrameInfo) {
		mu.Lock()
		frames = append(frames, f)
		mu.Unlock()
		got <- struct{}{}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()

	for i := 0; i < 3; i++ {
		select {
		case <-got:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for frame %d", i+1)
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit on cancellation")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(frames) < 3 {
		t.Fatalf("saw %d frames, want at least 3", len(frames))
	}
	for i, f := range frames {
		if f.Seq != uint64(i+1) {
			t.Fatalf("frame %d has seq %d", i, f.Seq)
		}
		if f.Delta <= 0 {
			t.Fatalf("frame %d has non-positive delta %v", i, f.Delta)
		}
	}
	if l.Frames() < 3 {
		t.Fatalf("Frames() = %d, want at least 3", l.Frames())
	}
}

func TestLoopListenerOrderAndUnsubscribe(t *testing.T) {
	l := New(5 * time.Millisecond)

	var mu sync.Mutex
	var order []string
	first := make(chan struct{}, 16)
	l.AddListener(func(FrameInfo) {
		mu.Lock()
		order = append(order, "a")
		mu.Unlock()
	})
	unsubscribeB := l.AddListener(func(FrameInfo) {
		mu.Lock()
		order = append(order, "b")
		mu.Unlock()
		first <- struct{}{}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	select {
	case <-first:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the first frame")
	}

	mu.Lock()
	if order[0] != "a" || order[1] != "b" {
		mu.Unlock()
		t.Fatalf("listeners ran out of registration order: %v", order)
	}
	mu.Unlock()

	unsubscribeB()
	mu.Lock()
	countB := 0
	for _, s := range order {
		if s == "b" {
			countB++
		}
	}
	mu.Unlock()

	// After a couple more frames, b must have stopped firing. One extra
	// invocation is tolerated: a frame snapshot may already be in flight
	// when the unsubscribe lands.
	time.Sleep(25 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	finalB := 0
	for _, s := range order {
		if s == "b" {
			finalB++
		}
	}
	if finalB > countB+1 {
		t.Fatalf("unsubscribed listener kept firing: %d -> %d", countB, finalB)
	}
}

func TestLoopSecondRunReturnsImmediately(t *testing.T) {
	l := New(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go l.Run(ctx)
	// Give the first Run a moment to take ownership.
	time.Sleep(10 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second Run did not return while the first was active")
	}
}
