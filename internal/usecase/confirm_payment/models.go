package confirm_payment

// Outcome результат обработки уведомления об оплате
type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed" // запись переведена в CONFIRMED
	OutcomeDuplicate Outcome = "duplicate" // повторная доставка, состояние не менялось
	OutcomeIgnored   Outcome = "ignored"   // ссылка не распознана или запись не ждет оплаты
)

// Completion уведомление провайдера о завершенной оплате
type Completion struct {
	Provider         string // Имя провайдера для журнала событий (stripe)
	ProviderEventID  string // ID события у провайдера, пустой для синхронных путей
	EventType        string
	ClientReference  string // ID записи в виде строки, как передавался в checkout
	PaymentReference string
	SessionReference string
	CustomerEmail    string
}

// Result итог обработки
type Result struct {
	Outcome       Outcome
	AppointmentID int64
	Reason        string
}
