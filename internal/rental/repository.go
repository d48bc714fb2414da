package rental

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/room-rental-backend/internal/db"
	"github.com/nekogravitycat/room-rental-backend/internal/room"
)

type Repository interface {
	Create(ctx context.Context, r *Rental) error
	GetByID(ctx context.Context, id string) (*Rental, error)
	List(ctx context.Context, filter Filter) ([]*Rental, int, error)
	// ListAll returns every rental matching filter, ignoring pagination, ordered by start time.
	ListAll(ctx context.Context, filter Filter) ([]*Rental, error)

	// ListApproved returns approved rentals overlapping [start, end).
	// An empty roomID matches every room.
	ListApproved(ctx context.Context, roomID string, start, end time.Time) ([]*Rental, error)

	// Transition persists r's status, admin notes and cost only if the stored
	// status still equals from. It returns ErrStatusChanged otherwise.
	Transition(ctx context.Context, r *Rental, from Status) error

	// WithRoomLock runs fn while holding an exclusive lock on the room.
	// fn must use the Repository it is given.
	WithRoomLock(ctx context.Context, roomID string, fn func(tx Repository) error) error
}

type pgxRepository struct {
	db   db.DBTX
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{db: pool, pool: pool}
}

var rentalColumns = []string{
	"id", "room_id", "renter_id", "start_time", "end_time", "purpose",
	"expected_attendees", "status", "admin_notes", "total_cost_cents",
	"created_at", "updated_at",
}

var rentalSortColumns = map[string]string{
	"start_time": "start_time",
	"end_time":   "end_time",
	"created_at": "created_at",
	"status":     "status",
}

func scanRental(row pgx.Row, extra ...any) (*Rental, error) {
	var r Rental
	dest := []any{
		&r.ID, &r.RoomID, &r.RenterID, &r.StartTime, &r.EndTime, &r.Purpose,
		&r.ExpectedAttendees, &r.Status, &r.AdminNotes, &r.TotalCostCents,
		&r.CreatedAt, &r.UpdatedAt,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *pgxRepository) Create(ctx context.Context, rt *Rental) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.room_rentals").
		Columns("room_id", "renter_id", "start_time", "end_time", "purpose", "expected_attendees", "status").
		Values(rt.RoomID, rt.RenterID, rt.StartTime, rt.EndTime, rt.Purpose, rt.ExpectedAttendees, rt.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create rental query failed: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&rt.ID, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
		return fmt.Errorf("create rental failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Rental, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(rentalColumns...).
		From("public.room_rentals").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get rental query failed: %w", err)
	}

	rt, err := scanRental(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get rental failed: %w", err)
	}
	return rt, nil
}

func applyFilter(query squirrel.SelectBuilder, filter Filter) squirrel.SelectBuilder {
	if filter.RoomID != "" {
		query = query.Where(squirrel.Eq{"room_id": filter.RoomID})
	}
	if filter.RenterID != "" {
		query = query.Where(squirrel.Eq{"renter_id": filter.RenterID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.StartTime != nil {
		query = query.Where(squirrel.Gt{"end_time": *filter.StartTime})
	}
	if filter.EndTime != nil {
		query = query.Where(squirrel.Lt{"start_time": *filter.EndTime})
	}
	return query
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Rental, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(append(rentalColumns, "count(*) OVER() AS total_count")...).
		From("public.room_rentals")
	query = applyFilter(query, filter)

	orderBy, ok := rentalSortColumns[filter.SortBy]
	if !ok {
		orderBy = "start_time"
	}
	orderDir := "DESC"
	if filter.SortOrder == "ASC" {
		orderDir = "ASC"
	}
	query = query.OrderBy(orderBy+" "+orderDir, "id")

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list rentals query failed: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list rentals failed: %w", err)
	}
	defer rows.Close()

	var rentals []*Rental
	var total int
	for rows.Next() {
		rt, err := scanRental(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan rental failed: %w", err)
		}
		rentals = append(rentals, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate rentals failed: %w", err)
	}
	return rentals, total, nil
}

func (r *pgxRepository) ListAll(ctx context.Context, filter Filter) ([]*Rental, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(rentalColumns...).From("public.room_rentals")
	query = applyFilter(query, filter).OrderBy("start_time", "id")
	return r.queryRentals(ctx, query)
}

func (r *pgxRepository) ListApproved(ctx context.Context, roomID string, start, end time.Time) ([]*Rental, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(rentalColumns...).
		From("public.room_rentals").
		Where(squirrel.Eq{"status": StatusApproved}).
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start})
	if roomID != "" {
		query = query.Where(squirrel.Eq{"room_id": roomID})
	}
	return r.queryRentals(ctx, query.OrderBy("start_time", "id"))
}

func (r *pgxRepository) queryRentals(ctx context.Context, query squirrel.SelectBuilder) ([]*Rental, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build rental query failed: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query rentals failed: %w", err)
	}
	defer rows.Close()

	var rentals []*Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rental failed: %w", err)
		}
		rentals = append(rentals, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rentals failed: %w", err)
	}
	return rentals, nil
}

func (r *pgxRepository) Transition(ctx context.Context, rt *Rental, from Status) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.room_rentals").
		Set("status", rt.Status).
		Set("admin_notes", rt.AdminNotes).
		Set("total_cost_cents", rt.TotalCostCents).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": rt.ID, "status": from}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build transition rental query failed: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&rt.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, rt.ID); getErr != nil {
				return getErr
			}
			return ErrStatusChanged
		}
		return fmt.Errorf("transition rental failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) WithRoomLock(ctx context.Context, roomID string, fn func(tx Repository) error) error {
	if r.pool == nil {
		// Already inside a transaction.
		return fn(r)
	}

	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var id string
		err := tx.QueryRow(ctx, `SELECT id FROM public.rooms WHERE id = $1 FOR UPDATE`, roomID).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return room.ErrNotFound
			}
			return fmt.Errorf("lock room failed: %w", err)
		}
		return fn(&pgxRepository{db: tx})
	})
}
