package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func appt(start time.Time, minutes int, status AppointmentStatus) *Appointment {
	return &Appointment{
		StartTime: start,
		EndTime:   start.Add(time.Duration(minutes) * time.Minute),
		Status:    status,
	}
}

func TestHasConflict(t *testing.T) {
	ten := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	existing := []*Appointment{appt(ten, 60, StatusConfirmed)}

	tests := []struct {
		name  string
		start time.Time
		want  bool
	}{
		{"same slot", ten, true},
		{"starts inside", ten.Add(30 * time.Minute), true},
		{"ends inside", ten.Add(-30 * time.Minute), true},
		{"adjacent after", ten.Add(time.Hour), false},
		{"adjacent before", ten.Add(-time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasConflict(tt.start, tt.start.Add(time.Hour), existing))
		})
	}
}

func TestHasConflict_IgnoresInactive(t *testing.T) {
	ten := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	assert.False(t, HasConflict(ten, ten.Add(time.Hour), []*Appointment{
		appt(ten, 60, StatusCanceled),
		appt(ten, 60, StatusRefunded),
	}))
	assert.True(t, HasConflict(ten, ten.Add(time.Hour), []*Appointment{appt(ten, 60, StatusCompleted)}))
	assert.True(t, HasConflict(ten, ten.Add(time.Hour), []*Appointment{appt(ten, 60, StatusPending)}))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusConfirmed))
	assert.True(t, CanTransition(StatusConfirmed, StatusRefunded))
	assert.True(t, CanTransition(StatusConfirmed, StatusCompleted))
	assert.False(t, CanTransition(StatusPending, StatusCompleted))
	assert.False(t, CanTransition(StatusCanceled, StatusConfirmed))
	assert.False(t, CanTransition(StatusRefunded, StatusCanceled))
	assert.False(t, CanTransition(StatusCompleted, StatusCanceled))

	assert.ElementsMatch(t, []AppointmentStatus{StatusPending, StatusConfirmed}, SourcesFor(StatusCanceled))
	assert.Equal(t, []AppointmentStatus{StatusPending}, SourcesFor(StatusConfirmed))
}

func TestDemoContent(t *testing.T) {
	demo := DemoContent{
		ServiceTitles: []string{"Wash & Style"},
		ImageMarker:   "via.placeholder.com",
		EmailDomain:   "meechlocs.test",
	}

	assert.True(t, demo.IsDemoService(&Service{Title: "Wash & Style"}))
	assert.True(t, demo.IsDemoService(&Service{Title: "Braids", Images: []string{"https://via.placeholder.com/300"}}))
	assert.False(t, demo.IsDemoService(&Service{Title: "Braids", Images: []string{"https://cdn.example.com/a.png"}}))

	assert.True(t, demo.IsDemoEmail(" Jane@MeechLocs.test "))
	assert.False(t, demo.IsDemoEmail("jane@example.com"))
}
