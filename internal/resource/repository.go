package resource

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, r *Resource) error
	GetByID(ctx context.Context, id int64) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int, error)
	Update(ctx context.Context, r *Resource) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var resourceColumns = []string{
	"id", "name", "description", "building", "capacity",
	"min_slots_per_booking", "max_slots_per_booking", "advance_booking_days",
	"operating_start_slot", "operating_end_slot",
	"is_active", "requires_approval", "created_at", "updated_at",
}

func scanResource(row pgx.Row, r *Resource) error {
	return row.Scan(
		&r.ID, &r.Name, &r.Description, &r.Building, &r.Capacity,
		&r.MinSlotsPerBooking, &r.MaxSlotsPerBooking, &r.AdvanceBookingDays,
		&r.OperatingStartSlot, &r.OperatingEndSlot,
		&r.IsActive, &r.RequiresApproval, &r.CreatedAt, &r.UpdatedAt,
	)
}

func (repo *pgxRepository) Create(ctx context.Context, r *Resource) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.resources").
		Columns("name", "description", "building", "capacity",
			"min_slots_per_booking", "max_slots_per_booking", "advance_booking_days",
			"operating_start_slot", "operating_end_slot", "is_active", "requires_approval").
		Values(r.Name, r.Description, r.Building, r.Capacity,
			r.MinSlotsPerBooking, r.MaxSlotsPerBooking, r.AdvanceBookingDays,
			r.OperatingStartSlot, r.OperatingEndSlot, r.IsActive, r.RequiresApproval).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create resource query failed: %w", err)
	}

	return repo.pool.QueryRow(ctx, query, args...).
		Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
}

func (repo *pgxRepository) GetByID(ctx context.Context, id int64) (*Resource, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(resourceColumns...).
		From("public.resources").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get resource query failed: %w", err)
	}

	var r Resource
	if err := scanResource(repo.pool.QueryRow(ctx, query, args...), &r); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get resource failed: %w", err)
	}
	return &r, nil
}

func (repo *pgxRepository) List(ctx context.Context, filter Filter) ([]*Resource, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	cols := append(append([]string{}, resourceColumns...), "count(*) OVER() as total_count")
	query := psql.Select(cols...).From("public.resources")

	if filter.Building != "" {
		query = query.Where(squirrel.Eq{"building": filter.Building})
	}
	if filter.ActiveOnly {
		query = query.Where(squirrel.Eq{"is_active": true})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.OrderBy("name ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list resources query failed: %w", err)
	}

	rows, err := repo.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list resources failed: %w", err)
	}
	defer rows.Close()

	var resources []*Resource
	var total int

	for rows.Next() {
		var r Resource
		if err := rows.Scan(
			&r.ID, &r.Name, &r.Description, &r.Building, &r.Capacity,
			&r.MinSlotsPerBooking, &r.MaxSlotsPerBooking, &r.AdvanceBookingDays,
			&r.OperatingStartSlot, &r.OperatingEndSlot,
			&r.IsActive, &r.RequiresApproval, &r.CreatedAt, &r.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan resource failed: %w", err)
		}
		resources = append(resources, &r)
	}

	return resources, total, nil
}

func (repo *pgxRepository) Update(ctx context.Context, r *Resource) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.resources").
		Set("name", r.Name).
		Set("description", r.Description).
		Set("building", r.Building).
		Set("capacity", r.Capacity).
		Set("min_slots_per_booking", r.MinSlotsPerBooking).
		Set("max_slots_per_booking", r.MaxSlotsPerBooking).
		Set("advance_booking_days", r.AdvanceBookingDays).
		Set("operating_start_slot", r.OperatingStartSlot).
		Set("operating_end_slot", r.OperatingEndSlot).
		Set("is_active", r.IsActive).
		Set("requires_approval", r.RequiresApproval).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": r.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update resource query failed: %w", err)
	}

	ct, err := repo.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update resource failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
