package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/timerange"
)

// HasConflict reports whether [start, end) overlaps any active appointment.
// Canceled and refunded appointments never conflict; completed ones do.
// Touching ranges (one ends exactly when the other starts) do not conflict.
func HasConflict(start, end time.Time, appointments []*Appointment) bool {
	candidate := timerange.New(start, end)
	for _, a := range appointments {
		if a == nil || !a.IsActive() {
			continue
		}
		if candidate.Overlaps(a.Range()) {
			return true
		}
	}
	return false
}
