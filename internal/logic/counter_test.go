package logic

import (
	"testing"
	"time"
)

// ticksToComplete is the number of one-minute ticks in the tracked period.
const ticksToComplete = PeriodDays * HoursPerDay * MinutesPerHour

func TestAdvanceMinuteRollover(t *testing.T) {
	var e ElapsedTime
	for i := 0; i < 59; i++ {
		if e.Advance() {
			t.Fatalf("tick %d: unexpected period elapsed", i)
		}
	}
	if e != (ElapsedTime{Minutes: 59}) {
		t.Fatalf("after 59 ticks: got %+v", e)
	}

	e.Advance()
	if e != (ElapsedTime{Hours: 1}) {
		t.Errorf("after 60 ticks: got %+v, want 1 hour", e)
	}
}

func TestAdvanceHourRollover(t *testing.T) {
	var e ElapsedTime
	for i := 0; i < HoursPerDay*MinutesPerHour; i++ {
		e.Advance()
	}
	if e != (ElapsedTime{Days: 1}) {
		t.Errorf("after one day of ticks: got %+v, want 1 day", e)
	}
}

func TestPeriodElapsedExactlyOnce(t *testing.T) {
	var e ElapsedTime
	for i := 0; i < ticksToComplete-1; i++ {
		if e.Advance() {
			t.Fatalf("tick %d: period elapsed early (%v)", i, e)
		}
	}

	want := ElapsedTime{Minutes: 59, Hours: 23, Days: 29}
	if e != want {
		t.Fatalf("before final tick: got %+v, want %+v", e, want)
	}

	if !e.Advance() {
		t.Fatal("final tick should signal period elapsed")
	}
	if e != (ElapsedTime{Days: PeriodDays}) {
		t.Errorf("after final tick: got %+v, want {0 0 30}", e)
	}
	if !e.Complete() {
		t.Error("expected Complete() after final tick")
	}

	// Further ticks neither signal again nor move the counter.
	for i := 0; i < 10; i++ {
		if e.Advance() {
			t.Fatal("period elapsed signalled twice")
		}
	}
	if e != (ElapsedTime{Days: PeriodDays}) {
		t.Errorf("completed counter moved: %+v", e)
	}
}

func TestAdvanceStrictlyIncreases(t *testing.T) {
	var e ElapsedTime
	prev := e.Total()
	for i := 0; i < ticksToComplete; i++ {
		e.Advance()
		cur := e.Total()
		if cur != prev+time.Minute {
			t.Fatalf("tick %d: total went from %v to %v", i, prev, cur)
		}
		prev = cur
	}
	if prev != PeriodDays*24*time.Hour {
		t.Errorf("final total: got %v, want %v", prev, PeriodDays*24*time.Hour)
	}
}

func TestResetZeroes(t *testing.T) {
	e := ElapsedTime{Minutes: 12, Hours: 7, Days: 3}
	e.Reset()
	if e != (ElapsedTime{}) {
		t.Errorf("after Reset: got %+v", e)
	}

	// After reset the full period is needed again.
	for i := 0; i < ticksToComplete-1; i++ {
		if e.Advance() {
			t.Fatalf("tick %d: period elapsed early after reset", i)
		}
	}
	if !e.Advance() {
		t.Error("expected period elapsed on final tick after reset")
	}
}

func TestRemaining(t *testing.T) {
	tests := []struct {
		name string
		in   ElapsedTime
		want ElapsedTime
	}{
		{"zero", ElapsedTime{}, ElapsedTime{Minutes: 59, Hours: 23, Days: 29}},
		{"mid", ElapsedTime{Minutes: 5, Hours: 2, Days: 1}, ElapsedTime{Minutes: 54, Hours: 21, Days: 28}},
		{"last minute", ElapsedTime{Minutes: 59, Hours: 23, Days: 29}, ElapsedTime{}},
		{"complete", ElapsedTime{Days: PeriodDays}, ElapsedTime{Minutes: 59, Hours: 23}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Remaining(); got != tt.want {
				t.Errorf("Remaining(%+v): got %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestElapsedString(t *testing.T) {
	e := ElapsedTime{Minutes: 5, Hours: 2, Days: 1}
	if got := e.String(); got != "1d 02h 05m" {
		t.Errorf("String: got %q, want %q", got, "1d 02h 05m")
	}
}
