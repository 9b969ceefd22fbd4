package main

import (
	"context"
	"errors"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/sweeney/heartworm/internal/config"
	"github.com/sweeney/heartworm/internal/gpio"
	"github.com/sweeney/heartworm/internal/logic"
	"github.com/sweeney/heartworm/internal/mqtt"
	"github.com/sweeney/heartworm/internal/status"
	"github.com/sweeney/heartworm/internal/timer"
)

// errButtonClosed is returned when the push channel closes under the loop.
var errButtonClosed = errors.New("button closed")

// loop holds the collaborators driven by runLoop. Only runLoop's goroutine
// touches the controller and timers.
type loop struct {
	cfg        config.Config
	button     gpio.Button
	led        gpio.LED
	tick       timer.Source
	hold       timer.Source
	advertise  <-chan time.Time
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	selector   *logic.Selector
	now        func() time.Time
	sleep      func(time.Duration)
}

// runLoop owns the controller. It blocks in select until an event source
// fires and returns on a signal or when ctx is cancelled.
func runLoop(ctx context.Context, l *loop, sig <-chan os.Signal) error {
	ctrl := logic.NewController(l.now())
	l.apply(ctrl.Start(l.now()))
	l.sync(ctrl)

	for {
		select {
		case <-ctx.Done():
			l.shutdown(ctrl, "CANCELLED")
			return ctx.Err()

		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			l.shutdown(ctrl, signalName(s))
			return nil

		case t, ok := <-l.button.Pushes():
			if !ok {
				l.shutdown(ctrl, "BUTTON_CLOSED")
				return errButtonClosed
			}
			l.dispatch(ctrl, logic.Event{Type: logic.EventButtonPush, Time: t})

		case t := <-l.tick.C():
			l.dispatch(ctrl, logic.Event{Type: logic.EventTick, Time: t})

		case t := <-l.hold.C():
			held, err := l.button.Held()
			if err != nil {
				// An unreadable button counts as released: snooze, never reset.
				log.Printf("button read error: %v", err)
				held = false
			}
			l.dispatch(ctrl, logic.Event{Type: logic.EventHoldExpired, Time: t, Held: held})

		case t := <-l.advertise:
			ad := l.selector.Next(ctrl.State(), ctrl.Elapsed())
			if err := l.publisher.Advertise(t, ad); err != nil {
				log.Printf("advertise error: %v", err)
			}
			l.tracker.SetLastBeacon(ad.Kind)
			l.heartbeat(ctrl, t)
			l.sync(ctrl)
		}
	}
}

func (l *loop) dispatch(ctrl *logic.Controller, ev logic.Event) {
	l.apply(ctrl.HandleEvent(ev))
	l.sync(ctrl)
}

// apply executes commands in order, then publishes the transitions.
func (l *loop) apply(r logic.Result) {
	for _, tr := range r.Transitions {
		log.Printf("transition: %s -> %s (cause=%s elapsed=%s)", tr.From, tr.To, causeOrStart(tr.Cause), tr.Elapsed)
	}
	for _, cmd := range r.Commands {
		l.execute(cmd)
	}
	for _, tr := range r.Transitions {
		if err := l.publisher.PublishTransition(tr); err != nil {
			log.Printf("publish error: %v", err)
		}
	}
}

func (l *loop) execute(cmd logic.Command) {
	switch cmd {
	case logic.CmdAckBlink:
		l.ackBlink()
	case logic.CmdStartTick:
		l.tick.Start(l.cfg.Tick)
	case logic.CmdStopTick:
		l.tick.Stop()
	case logic.CmdStartHoldTimer:
		l.hold.Start(l.cfg.Hold)
	case logic.CmdStopHoldTimer:
		l.hold.Stop()
	case logic.CmdStartSoftBlink:
		if err := l.led.StartBlink(l.cfg.SoftBlink()); err != nil {
			log.Printf("led blink error: %v", err)
		}
	case logic.CmdStopSoftBlink:
		if err := l.led.StopBlink(); err != nil {
			log.Printf("led stop error: %v", err)
		}
	default:
		log.Printf("unknown command %q", cmd)
	}
}

// ackBlink toggles the LED AckToggles times, leaving it as it was.
func (l *loop) ackBlink() {
	for i := 0; i < gpio.AckToggles; i++ {
		if err := l.led.Toggle(); err != nil {
			log.Printf("led toggle error: %v", err)
			return
		}
		l.sleep(gpio.AckInterval)
	}
}

func (l *loop) heartbeat(ctrl *logic.Controller, t time.Time) {
	hb := ctrl.CheckHeartbeat(t, l.cfg.Heartbeat)
	if hb == nil {
		return
	}
	log.Printf("heartbeat: uptime=%v state=%s elapsed=%s resets=%d snoozes=%d",
		hb.Uptime, hb.State, hb.Elapsed, hb.Counts.Resets, hb.Counts.Snoozes)

	l.refreshConnection()
	if net := readNetworkInfo(); net != nil {
		l.tracker.SetNetwork(net)
	}
	l.tracker.Update(hb.State, hb.Elapsed, ctrl.IsStarted(), hb.Counts)

	event := mqtt.SystemEvent{
		Timestamp:  hb.Timestamp,
		Event:      "HEARTBEAT",
		RawPayload: status.FormatStatusEvent(l.tracker.Snapshot(), "HEARTBEAT", ""),
	}
	if err := l.publisher.PublishSystem(event); err != nil {
		log.Printf("heartbeat publish error: %v", err)
	}
}

func (l *loop) shutdown(ctrl *logic.Controller, reason string) {
	l.tick.Stop()
	l.hold.Stop()
	if err := l.led.StopBlink(); err != nil {
		log.Printf("led stop error: %v", err)
	}

	l.sync(ctrl)
	event := mqtt.SystemEvent{
		Timestamp:  l.now(),
		Event:      "SHUTDOWN",
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(l.tracker.Snapshot(), "SHUTDOWN", reason),
	}
	if err := l.publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
}

// sync copies controller state into the tracker for HTTP readers.
func (l *loop) sync(ctrl *logic.Controller) {
	l.tracker.Update(ctrl.State(), ctrl.Elapsed(), ctrl.IsStarted(), ctrl.CountsSnapshot())
	l.refreshConnection()
}

func (l *loop) refreshConnection() {
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
		l.tracker.SetMQTTBacklog(l.mqttStatus.Buffered(), l.mqttStatus.Dropped())
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

func causeOrStart(c logic.EventType) string {
	if c == "" {
		return "START"
	}
	return string(c)
}
