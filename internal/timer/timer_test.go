package timer

import (
	"testing"
	"time"
)

func TestPeriodicFiresRepeatedly(t *testing.T) {
	p := NewPeriodic()
	defer p.Stop()

	if p.Running() {
		t.Error("new periodic should be stopped")
	}

	p.Start(5 * time.Millisecond)
	for i := 0; i < 3; i++ {
		select {
		case <-p.C():
		case <-time.After(time.Second):
			t.Fatalf("tick %d: timed out", i)
		}
	}
}

func TestPeriodicStopDiscardsPending(t *testing.T) {
	p := NewPeriodic()
	p.Start(time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	p.Stop()

	select {
	case <-p.C():
		t.Error("received tick after Stop")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestOneShotFiresOnce(t *testing.T) {
	o := NewOneShot()
	o.Start(5 * time.Millisecond)

	select {
	case <-o.C():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for fire")
	}

	select {
	case <-o.C():
		t.Error("one-shot fired twice")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestOneShotStopPreventsFire(t *testing.T) {
	o := NewOneShot()
	o.Start(5 * time.Millisecond)
	o.Stop()

	select {
	case <-o.C():
		t.Error("fired after Stop")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestOneShotRestart(t *testing.T) {
	o := NewOneShot()
	o.Start(time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	// Restart discards the pending fire from the first arm.
	o.Start(time.Hour)
	select {
	case <-o.C():
		t.Error("stale fire delivered after restart")
	case <-time.After(20 * time.Millisecond):
	}
	o.Stop()
}

func TestManualFire(t *testing.T) {
	m := NewManual()
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if m.Fire(at) {
		t.Error("stopped source should not fire")
	}

	m.Start(DefaultHold)
	if m.Duration() != DefaultHold {
		t.Errorf("duration: got %v, want %v", m.Duration(), DefaultHold)
	}

	done := make(chan bool)
	go func() { done <- m.Fire(at) }()

	got := <-m.C()
	if !got.Equal(at) {
		t.Errorf("fire time: got %v, want %v", got, at)
	}
	if !<-done {
		t.Error("Fire should report delivery")
	}

	m.Stop()
	if m.Running() {
		t.Error("expected stopped after Stop")
	}
	if m.Starts != 1 || m.Stops != 1 {
		t.Errorf("starts/stops: got %d/%d, want 1/1", m.Starts, m.Stops)
	}
}
