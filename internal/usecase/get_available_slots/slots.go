package get_available_slots

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/timerange"
)

// GenerateSlots возвращает начала свободных слотов длительностью durationMinutes на день (UTC).
//
// Каждое окно обрезается границами дня и нарезается с шагом, равным длительности,
// начиная с начала обрезанного окна; слот берется, пока он целиком помещается в окно.
// Слоты, пересекающиеся с активными записями, отбрасываются. Пересекающиеся окна
// дают одинаковые начала, результат дедуплицируется и сортируется.
//
// Примеры (длительность 60 мин, окно 09:00-12:00):
// - записей нет → 09:00, 10:00, 11:00
// - запись 10:00-11:00 → 09:00, 11:00
// - запись 10:30-11:30 → 09:00
func GenerateSlots(
	durationMinutes int,
	day time.Time,
	windows []*domain.AvailabilityWindow,
	appointments []*domain.Appointment,
) ([]time.Time, error) {
	if durationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}

	duration := time.Duration(durationMinutes) * time.Minute
	dayRange := timerange.Day(day)

	seen := make(map[int64]struct{})
	slots := make([]time.Time, 0)

	for _, w := range windows {
		clipped, ok := dayRange.Intersect(w.Range())
		if !ok {
			continue
		}

		for start := clipped.Start; !start.Add(duration).After(clipped.End); start = start.Add(duration) {
			end := start.Add(duration)
			if domain.HasConflict(start, end, appointments) {
				continue
			}

			key := start.UnixNano()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			slots = append(slots, start.UTC())
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })

	return slots, nil
}

// dropPast отбрасывает слоты, начало которых уже наступило
func dropPast(slots []time.Time, now time.Time) []time.Time {
	upcoming := make([]time.Time, 0, len(slots))
	for _, s := range slots {
		if s.After(now) {
			upcoming = append(upcoming, s)
		}
	}
	return upcoming
}
