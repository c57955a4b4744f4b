package models

import (
	"testing"
	"time"
)

func TestHackathonCurrentStatus(t *testing.T) {
	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	h := &Hackathon{
		RegistrationStart: base,
		RegistrationEnd:   base.Add(7 * 24 * time.Hour),
		StartDate:         base.Add(10 * 24 * time.Hour),
		EndDate:           base.Add(12 * 24 * time.Hour),
		JudgingEnd:        base.Add(14 * 24 * time.Hour),
	}

	tests := []struct {
		name string
		now  time.Time
		want HackathonStatus
	}{
		{"before registration opens", base.Add(-time.Hour), HackathonUpcoming},
		{"registration opens exactly", base, HackathonRegistration},
		{"mid registration", base.Add(3 * 24 * time.Hour), HackathonRegistration},
		{"registration closes exactly", h.RegistrationEnd, HackathonUpcoming},
		{"gap between registration and start", base.Add(8 * 24 * time.Hour), HackathonUpcoming},
		{"event starts exactly", h.StartDate, HackathonOngoing},
		{"mid event", base.Add(11 * 24 * time.Hour), HackathonOngoing},
		{"event ends exactly", h.EndDate, HackathonJudging},
		{"mid judging", base.Add(13 * 24 * time.Hour), HackathonJudging},
		{"judging ends exactly", h.JudgingEnd, HackathonCompleted},
		{"long after", base.Add(60 * 24 * time.Hour), HackathonCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.CurrentStatus(tt.now); got != tt.want {
				t.Errorf("CurrentStatus(%s) = %s, want %s", tt.now, got, tt.want)
			}
		})
	}
}

func TestHackathonRegistrationOpen(t *testing.T) {
	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	h := &Hackathon{
		RegistrationStart: base,
		RegistrationEnd:   base.Add(24 * time.Hour),
		StartDate:         base.Add(48 * time.Hour),
		EndDate:           base.Add(72 * time.Hour),
		JudgingEnd:        base.Add(96 * time.Hour),
	}

	if !h.RegistrationOpen(base.Add(time.Hour)) {
		t.Error("registration should be open during the window")
	}
	if h.RegistrationOpen(base.Add(-time.Hour)) {
		t.Error("registration should be closed before the window")
	}
	if h.RegistrationOpen(base.Add(36 * time.Hour)) {
		t.Error("registration should be closed in the gap before the start date")
	}
}
