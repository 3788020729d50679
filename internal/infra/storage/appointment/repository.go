package appointment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/timerange"
)

const table = "appointments"

var columns = []string{
	"id",
	"user_id",
	"service_id",
	"start_time",
	"end_time",
	"status",
	"payment_reference",
	"payment_session_reference",
	"service_title",
	"deposit_cents",
	"refunded_cents",
	"canceled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий записей на услуги
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает запись.
// Если в контексте передана активная транзакция, использует её.
func (r *Repository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"user_id",
			"service_id",
			"start_time",
			"end_time",
			"status",
			"payment_reference",
			"payment_session_reference",
			"service_title",
			"deposit_cents",
		).
		Values(
			a.UserID,
			a.ServiceID,
			a.StartTime.UTC(),
			a.EndTime.UTC(),
			a.Status,
			a.PaymentReference,
			a.PaymentSessionReference,
			a.ServiceTitle,
			a.DepositCents,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&a.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return a, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id})
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	a, err := scanAppointment(executor.QueryRowContext(ctx, query, args...), false)
	if err == sql.ErrNoRows {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %v", ErrScanRow, err)
	}

	return a, nil
}

// List получает записи по фильтру, новые сверху
func (r *Repository) List(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	var builder squirrel.SelectBuilder
	if filter.WithUser {
		qualified := make([]string, 0, len(columns)+1)
		for _, c := range columns {
			qualified = append(qualified, "a."+c)
		}
		qualified = append(qualified, "COALESCE(u.email, '')")
		builder = psqlbuilder.Select(qualified...).
			From(table + " a").
			LeftJoin("users u ON u.id = a.user_id")
	} else {
		builder = psqlbuilder.Select(columns...).From(table + " a")
	}

	if filter.UserID != nil {
		builder = builder.Where(squirrel.Eq{"a.user_id": *filter.UserID})
	}
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"a.status": *filter.Status})
	}
	if filter.From != nil {
		builder = builder.Where(squirrel.GtOrEq{"a.start_time": filter.From.UTC()})
	}
	if filter.To != nil {
		builder = builder.Where(squirrel.Lt{"a.start_time": filter.To.UTC()})
	}

	query, args, err := builder.OrderBy("a.start_time DESC", "a.id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows, filter.WithUser)
}

// ListActiveInRange получает активные записи, пересекающиеся с интервалом.
// Внутри транзакции строки блокируются (FOR UPDATE).
func (r *Repository) ListActiveInRange(ctx context.Context, rng timerange.Range) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.NotEq{"status": statusStrings(domain.InactiveStatuses)}).
		Where(squirrel.Lt{"start_time": rng.End.UTC()}).
		Where(squirrel.Gt{"end_time": rng.Start.UTC()}).
		OrderBy("start_time ASC")
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveInRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveInRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows, false)
}

// ListOpenWithin получает незавершенные записи, целиком лежащие внутри интервала
func (r *Repository) ListOpenWithin(ctx context.Context, rng timerange.Range) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"status": statusStrings(domain.OpenStatuses)}).
		Where(squirrel.GtOrEq{"start_time": rng.Start.UTC()}).
		Where(squirrel.LtOrEq{"end_time": rng.End.UTC()}).
		OrderBy("start_time ASC")
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListOpenWithin - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOpenWithin - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows, false)
}

// ListConfirmedEndedBefore получает подтвержденные записи, закончившиеся до момента t
func (r *Repository) ListConfirmedEndedBefore(ctx context.Context, t time.Time, limit uint64) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"status": string(domain.StatusConfirmed)}).
		Where(squirrel.LtOrEq{"end_time": t.UTC()}).
		OrderBy("end_time ASC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListConfirmedEndedBefore - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListConfirmedEndedBefore - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows, false)
}

// UpdateStatus условно меняет статус: только если текущий статус входит в change.From.
// Возвращает ErrStatusConflict, если ни одна строка не изменилась.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, change domain.StatusChange) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Update(table).
		Set("status", change.To).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": statusStrings(change.From)})

	if change.To == domain.StatusCanceled || change.To == domain.StatusRefunded {
		builder = builder.Set("canceled_at", squirrel.Expr("COALESCE(canceled_at, NOW())"))
	}
	if change.PaymentReference != nil {
		builder = builder.Set("payment_reference", *change.PaymentReference)
	}
	if change.PaymentSessionReference != nil {
		builder = builder.Set("payment_session_reference", *change.PaymentSessionReference)
	}
	if change.RefundedCents != nil {
		builder = builder.Set("refunded_cents", *change.RefundedCents)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, "UpdateStatus", query, args, ErrStatusConflict)
}

// SetPaymentSession сохраняет ссылку на checkout-сессию провайдера
func (r *Repository) SetPaymentSession(ctx context.Context, id int64, sessionRef string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("payment_session_reference", sessionRef).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetPaymentSession - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, "SetPaymentSession", query, args, ErrAppointmentNotFound)
}

// AddRefundedCents увеличивает сумму возвратов без смены статуса (частичный возврат)
func (r *Repository) AddRefundedCents(ctx context.Context, id int64, cents int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("refunded_cents", squirrel.Expr("refunded_cents + ?", cents)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: AddRefundedCents - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, "AddRefundedCents", query, args, ErrAppointmentNotFound)
}

func (r *Repository) execExpectingRow(ctx context.Context, executor DBExecutor, method, query string, args []any, notFound error) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, method, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}

	if rowsAffected == 0 {
		return notFound
	}
	return nil
}

func scanAppointment(row rowScanner, withEmail bool) (*domain.Appointment, error) {
	var (
		a                    domain.Appointment
		createdAt, updatedAt sql.NullTime
		canceledAt           sql.NullTime
	)

	dest := []any{
		&a.ID,
		&a.UserID,
		&a.ServiceID,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&a.PaymentReference,
		&a.PaymentSessionReference,
		&a.ServiceTitle,
		&a.DepositCents,
		&a.RefundedCents,
		&canceledAt,
		&createdAt,
		&updatedAt,
	}
	if withEmail {
		dest = append(dest, &a.CustomerEmail)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	a.StartTime = a.StartTime.UTC()
	a.EndTime = a.EndTime.UTC()
	if canceledAt.Valid {
		t := canceledAt.Time.UTC()
		a.CanceledAt = &t
	}
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return &a, nil
}

func scanAppointments(rows *sql.Rows, withEmail bool) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		a, err := scanAppointment(rows, withEmail)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}

func statusStrings(statuses []domain.AppointmentStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
