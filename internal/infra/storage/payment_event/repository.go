package payment_event

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// pgUniqueViolation код ошибки PostgreSQL unique_violation
const pgUniqueViolation = "23505"

// Repository реестр уже обработанных событий платежного провайдера
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// MarkProcessed фиксирует событие. Повторное событие возвращает ErrDuplicateEvent.
func (r *Repository) MarkProcessed(ctx context.Context, provider, eventID, eventType string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("processed_payment_events").
		Columns("provider", "provider_event_id", "event_type").
		Values(provider, eventID, eventType).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkProcessed - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return ErrDuplicateEvent
		}
		return fmt.Errorf("%w: MarkProcessed - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// Forget снимает отметку о событии, чтобы повторная доставка была обработана заново
func (r *Repository) Forget(ctx context.Context, provider, eventID string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("processed_payment_events").
		Where(squirrel.Eq{"provider": provider, "provider_event_id": eventID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Forget - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Forget - execute delete: %v", ErrExecQuery, err)
	}

	return nil
}
