package gpio

import (
	"errors"
	"log"
	"sync"
	"time"
)

// blinker runs a Pattern on a goroutine, driving the output through set.
type blinker struct {
	mu   sync.Mutex
	set  func(on bool) error
	stop chan struct{}
	done chan struct{}
}

func newBlinker(set func(on bool) error) *blinker {
	return &blinker{set: set}
}

func (b *blinker) start(p Pattern) error {
	if p.On <= 0 || p.Off <= 0 {
		return errors.New("gpio: blink pattern needs positive on and off times")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()

	b.stop = make(chan struct{})
	b.done = make(chan struct{})
	go b.run(p, b.stop, b.done)
	return nil
}

// halt stops the pattern and waits for the goroutine to exit.
func (b *blinker) halt() {
	b.mu.Lock()
	b.stopLocked()
	b.mu.Unlock()
}

func (b *blinker) running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stop != nil
}

func (b *blinker) stopLocked() {
	if b.stop == nil {
		return
	}
	close(b.stop)
	<-b.done
	b.stop = nil
	b.done = nil
}

func (b *blinker) run(p Pattern, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	on := true
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.C:
			if err := b.set(on); err != nil {
				log.Printf("gpio: blink write error: %v", err)
			}
			if on {
				timer.Reset(p.On)
			} else {
				timer.Reset(p.Off)
			}
			on = !on
		}
	}
}
