package logic

import (
	"bytes"
	"testing"
)

func TestStatusPayload(t *testing.T) {
	got := StatusPayload(ElapsedTime{Minutes: 5, Hours: 2, Days: 1})
	want := [StatusPayloadLen]byte{28, 21, 54}
	if got != want {
		t.Errorf("StatusPayload: got %v, want %v", got, want)
	}
}

func TestStatusPayloadSaturates(t *testing.T) {
	got := StatusPayload(ElapsedTime{Days: PeriodDays})
	want := [StatusPayloadLen]byte{0, 23, 59}
	if got != want {
		t.Errorf("StatusPayload at completion: got %v, want %v", got, want)
	}
}

func TestSelectorAlternates(t *testing.T) {
	s := NewSelector(DefaultIdentityURL, DefaultCompanyID, true)
	e := ElapsedTime{Minutes: 5, Hours: 2, Days: 1}

	ad := s.Next(StateWaiting, e)
	if ad.Kind != AdIdentity || ad.URL != DefaultIdentityURL {
		t.Errorf("slot 0: got %+v, want identity", ad)
	}

	ad = s.Next(StateWaiting, e)
	if ad.Kind != AdStatus {
		t.Fatalf("slot 1: got %s, want STATUS", ad.Kind)
	}
	if ad.CompanyID != DefaultCompanyID {
		t.Errorf("company id: got %#04x, want %#04x", ad.CompanyID, DefaultCompanyID)
	}
	if !bytes.Equal(ad.Data, []byte{28, 21, 54}) {
		t.Errorf("data: got %v, want [28 21 54]", ad.Data)
	}

	ad = s.Next(StateWaiting, e)
	if ad.Kind != AdIdentity {
		t.Errorf("slot 2: got %s, want IDENTITY", ad.Kind)
	}
}

func TestSelectorRecomputesStatus(t *testing.T) {
	s := NewSelector(DefaultIdentityURL, DefaultCompanyID, true)
	e := ElapsedTime{}

	s.Next(StateWaiting, e)
	first := s.Next(StateWaiting, e)

	e.Advance()
	s.Next(StateWaiting, e)
	second := s.Next(StateWaiting, e)

	if !bytes.Equal(first.Data, []byte{29, 23, 59}) {
		t.Errorf("first: got %v", first.Data)
	}
	if !bytes.Equal(second.Data, []byte{29, 23, 58}) {
		t.Errorf("second: got %v", second.Data)
	}
}

func TestSelectorIdentityOutsideWaiting(t *testing.T) {
	for _, state := range []State{StateIdle, StateFlashing, StateConfirmingReset} {
		s := NewSelector(DefaultIdentityURL, DefaultCompanyID, true)
		s.Next(state, ElapsedTime{})
		ad := s.Next(state, ElapsedTime{})
		if ad.Kind != AdIdentity {
			t.Errorf("%s: status slot got %s, want IDENTITY", state, ad.Kind)
		}
	}
}

func TestSelectorStatic(t *testing.T) {
	s := NewSelector("example.com/x", DefaultCompanyID, false)
	for i := 0; i < 4; i++ {
		ad := s.Next(StateWaiting, ElapsedTime{})
		if ad.Kind != AdIdentity || ad.URL != "example.com/x" {
			t.Errorf("slot %d: got %+v, want static identity", i, ad)
		}
	}
}
