package get_available_slots

import "time"

// Request модель запроса на получение свободных слотов
type Request struct {
	ServiceID int64     // ID услуги
	Date      time.Time // День (UTC), время игнорируется
}

// Response модель ответа со списком свободных слотов
type Response struct {
	Date            time.Time   // День, на который запрашивались слоты
	ServiceID       int64       // ID услуги
	DurationMinutes int         // Длительность слота
	Slots           []time.Time // Начала свободных слотов по возрастанию, UTC
}
