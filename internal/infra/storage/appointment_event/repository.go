package appointment_event

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

const table = "appointment_events"

// Repository журнал смены статусов записей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория журнала
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create добавляет событие в журнал
func (r *Repository) Create(ctx context.Context, e *domain.AppointmentEvent) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	var from *string
	if e.FromStatus != nil {
		s := string(*e.FromStatus)
		from = &s
	}

	query, args, err := psqlbuilder.Insert(table).
		Columns("appointment_id", "from_status", "to_status", "reason", "actor").
		Values(e.AppointmentID, from, e.ToStatus, e.Reason, e.Actor).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&e.ID, &createdAt); err != nil {
		return fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}
	e.CreatedAt = createdAt.Time

	return nil
}

// ListByAppointment получает журнал записи в хронологическом порядке
func (r *Repository) ListByAppointment(ctx context.Context, appointmentID int64) ([]*domain.AppointmentEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "appointment_id", "from_status", "to_status", "reason", "actor", "created_at").
		From(table).
		Where(squirrel.Eq{"appointment_id": appointmentID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByAppointment - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByAppointment - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	events := make([]*domain.AppointmentEvent, 0)
	for rows.Next() {
		var (
			e    domain.AppointmentEvent
			from sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.AppointmentID, &from, &e.ToStatus, &e.Reason, &e.Actor, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: ListByAppointment - scan row: %v", ErrScanRow, err)
		}
		if from.Valid {
			s := domain.AppointmentStatus(from.String)
			e.FromStatus = &s
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByAppointment - rows error: %v", ErrScanRow, err)
	}

	return events, nil
}
