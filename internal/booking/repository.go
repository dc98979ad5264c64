package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Tx is one transactional unit of the commit path. LockActive must be
// called before the overlap re-check so concurrent committers for the same
// resource/date serialize on the row locks.
type Tx interface {
	// LockActive takes FOR UPDATE row locks on every active booking for
	// the resource/date. Blocks behind a concurrent committer.
	LockActive(ctx context.Context, resourceID int64, date time.Time) error

	// HasActiveOverlap re-checks overlap against the now-locked row set.
	HasActiveOverlap(ctx context.Context, resourceID int64, date time.Time, startSlot, endSlot int) (bool, error)

	// Insert persists the booking. Constraint rejections surface as
	// errConflict, deadlocks as errDeadlock.
	Insert(ctx context.Context, b *Booking) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Repository interface {
	Begin(ctx context.Context) (Tx, error)
	GetByID(ctx context.Context, id int64) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// HasActiveOverlap checks for any pending/confirmed booking whose
	// range overlaps [startSlot, endSlot) on the resource/date.
	HasActiveOverlap(ctx context.Context, resourceID int64, date time.Time, startSlot, endSlot int) (bool, error)

	// BookedRanges returns the active ranges for a resource/date, for
	// availability display.
	BookedRanges(ctx context.Context, resourceID int64, date time.Time) ([]SlotRange, error)

	// UpdateDecision transitions a pending booking to confirmed or
	// rejected. Returns ErrAlreadyDecided if the booking is no longer
	// pending.
	UpdateDecision(ctx context.Context, id int64, status Status, deciderID int64, reason string) (*Booking, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

// classifyPgError maps Postgres failure codes onto the sentinels the
// coordinator's retry semantics depend on.
func classifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.DeadlockDetected, pgerrcode.SerializationFailure:
			return errDeadlock
		case pgerrcode.ExclusionViolation, pgerrcode.UniqueViolation:
			return errConflict
		}
	}
	return err
}

func overlapPredicate(resourceID int64, date time.Time, startSlot, endSlot int) squirrel.Sqlizer {
	return squirrel.And{
		squirrel.Eq{"resource_id": resourceID},
		squirrel.Eq{"booking_date": date},
		squirrel.Eq{"status": activeStatuses},
		squirrel.Lt{"start_slot": endSlot},
		squirrel.Gt{"end_slot": startSlot},
	}
}

var bookingColumns = []string{
	"id", "user_id", "resource_id", "booking_date", "start_slot", "end_slot",
	"status", "purpose", "notes", "rejection_reason", "responded_at",
	"approved_by", "created_at", "updated_at",
}

func scanBooking(row pgx.Row, b *Booking) error {
	return row.Scan(
		&b.ID, &b.UserID, &b.ResourceID, &b.BookingDate, &b.StartSlot, &b.EndSlot,
		&b.Status, &b.Purpose, &b.Notes, &b.RejectionReason, &b.RespondedAt,
		&b.ApprovedByID, &b.CreatedAt, &b.UpdatedAt,
	)
}

func (r *pgxRepository) Begin(ctx context.Context) (Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin booking tx failed: %w", err)
	}
	return &pgxTx{tx: tx}, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	var b Booking
	if err := scanBooking(r.pool.QueryRow(ctx, query, args...), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return &b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	cols := append(append([]string{}, bookingColumns...), "count(*) OVER() as total_count")
	query := psql.Select(cols...).From("public.bookings")

	if filter.UserID != 0 {
		query = query.Where(squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.ResourceID != 0 {
		query = query.Where(squirrel.Eq{"resource_id": filter.ResourceID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.DateFrom != nil {
		query = query.Where(squirrel.GtOrEq{"booking_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		query = query.Where(squirrel.LtOrEq{"booking_date": *filter.DateTo})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.OrderBy("booking_date DESC", "start_slot ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int

	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.ResourceID, &b.BookingDate, &b.StartSlot, &b.EndSlot,
			&b.Status, &b.Purpose, &b.Notes, &b.RejectionReason, &b.RespondedAt,
			&b.ApprovedByID, &b.CreatedAt, &b.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, &b)
	}

	return bookings, total, nil
}

func (r *pgxRepository) HasActiveOverlap(ctx context.Context, resourceID int64, date time.Time, startSlot, endSlot int) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sub, args, err := psql.Select("1").
		From("public.bookings").
		Where(overlapPredicate(resourceID, date, startSlot, endSlot)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build overlap query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+sub+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlap failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) BookedRanges(ctx context.Context, resourceID int64, date time.Time) ([]SlotRange, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("start_slot", "end_slot").
		From("public.bookings").
		Where(squirrel.Eq{"resource_id": resourceID}).
		Where(squirrel.Eq{"booking_date": date}).
		Where(squirrel.Eq{"status": activeStatuses}).
		OrderBy("start_slot ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build booked ranges query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list booked ranges failed: %w", err)
	}
	defer rows.Close()

	ranges := make([]SlotRange, 0)
	for rows.Next() {
		var sr SlotRange
		if err := rows.Scan(&sr.StartSlot, &sr.EndSlot); err != nil {
			return nil, fmt.Errorf("scan booked range failed: %w", err)
		}
		ranges = append(ranges, sr)
	}
	return ranges, nil
}

func (r *pgxRepository) UpdateDecision(ctx context.Context, id int64, status Status, deciderID int64, reason string) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("status", status).
		Set("rejection_reason", reason).
		Set("responded_at", squirrel.Expr("now()")).
		Set("approved_by", deciderID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": StatusPending}).
		Suffix("RETURNING " + joinColumns(bookingColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build decision query failed: %w", err)
	}

	var b Booking
	if err := scanBooking(r.pool.QueryRow(ctx, query, args...), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Pending row gone: either decided already or never existed.
			if _, getErr := r.GetByID(ctx, id); getErr == nil {
				return nil, ErrAlreadyDecided
			}
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("decide booking failed: %w", err)
	}
	return &b, nil
}

func joinColumns(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}

type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) LockActive(ctx context.Context, resourceID int64, date time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id").
		From("public.bookings").
		Where(squirrel.Eq{"resource_id": resourceID}).
		Where(squirrel.Eq{"booking_date": date}).
		Where(squirrel.Eq{"status": activeStatuses}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("build lock query failed: %w", err)
	}

	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return classifyPgError(err)
	}
	defer rows.Close()

	// Drain so every matching row is actually locked before we return.
	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		return classifyPgError(err)
	}
	return nil
}

func (t *pgxTx) HasActiveOverlap(ctx context.Context, resourceID int64, date time.Time, startSlot, endSlot int) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sub, args, err := psql.Select("1").
		From("public.bookings").
		Where(overlapPredicate(resourceID, date, startSlot, endSlot)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build overlap query failed: %w", err)
	}

	var exists bool
	if err := t.tx.QueryRow(ctx, "SELECT EXISTS ("+sub+")", args...).Scan(&exists); err != nil {
		return false, classifyPgError(err)
	}
	return exists, nil
}

func (t *pgxTx) Insert(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns("user_id", "resource_id", "booking_date", "start_slot", "end_slot",
			"status", "purpose", "notes").
		Values(b.UserID, b.ResourceID, b.BookingDate, b.StartSlot, b.EndSlot,
			b.Status, b.Purpose, b.Notes).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert booking query failed: %w", err)
	}

	if err := t.tx.QueryRow(ctx, query, args...).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return classifyPgError(err)
	}
	return nil
}

func (t *pgxTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return classifyPgError(err)
	}
	return nil
}

func (t *pgxTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
