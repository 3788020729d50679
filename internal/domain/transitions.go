package domain

// allowedTransitions переходы конечного автомата записи
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCanceled, StatusRefunded},
	StatusConfirmed: {StatusCanceled, StatusRefunded, StatusCompleted},
}

// CanTransition допустим ли переход from -> to
func CanTransition(from, to AppointmentStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// SourcesFor статусы, из которых допустим переход в to
func SourcesFor(to AppointmentStatus) []AppointmentStatus {
	sources := make([]AppointmentStatus, 0, 2)
	for _, from := range []AppointmentStatus{StatusPending, StatusConfirmed} {
		if CanTransition(from, to) {
			sources = append(sources, from)
		}
	}
	return sources
}
