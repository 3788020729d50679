package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/timerange"
)

// AvailabilityWindow a period during which appointments may be booked.
// Windows may overlap each other.
type AvailabilityWindow struct {
	ID        int64
	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time
}

// Range returns the window's half-open time range
func (w *AvailabilityWindow) Range() timerange.Range {
	return timerange.New(w.StartTime, w.EndTime)
}
