package create_appointment

import "time"

// Options настройки use case
type Options struct {
	// SerializeConflictCheck выполнять проверку пересечений и вставку в SERIALIZABLE транзакции.
	// При false между проверкой и вставкой остается окно гонки.
	SerializeConflictCheck bool
}

// Request модель запроса на создание записи
type Request struct {
	UserID    int64     // ID пользователя
	ServiceID int64     // ID услуги
	StartTime time.Time // Начало записи
}

// Response модель ответа с созданной записью
type Response struct {
	ID           int64     // ID созданной записи
	UserID       int64     // ID пользователя
	ServiceID    int64     // ID услуги
	StartTime    time.Time // Начало
	EndTime      time.Time // Окончание (начало + длительность услуги)
	Status       string    // Статус записи
	ServiceTitle string    // Название услуги
	DepositCents int64     // Размер депозита

	// Заполнено, если требуется оплата депозита
	CheckoutURL       *string
	PaymentSessionRef *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
