package complete_appointments

// DefaultLimit размер пачки, если он не указан в запросе
const DefaultLimit = 100

// MaxLimit верхняя граница размера пачки
const MaxLimit = 1000

// Request запрос на завершение прошедших записей
type Request struct {
	Limit int
}

// Response результат прохода
type Response struct {
	Completed []int64
	Skipped   []int64
}
