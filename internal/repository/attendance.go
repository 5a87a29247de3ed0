package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/efitness/internal/domain/attendance"
)

const (
	attendanceColumns = `id, client_id, check_in_at, check_out_at, method, business_date`

	insertAttendanceSQL = `INSERT INTO attendance (client_id, check_in_at, method, business_date)
		VALUES ($1, $2, $3, $4) RETURNING id`

	attendanceForDaySQL = `SELECT ` + attendanceColumns + ` FROM attendance
		WHERE client_id = $1 AND business_date = $2`

	setCheckOutSQL = `UPDATE attendance SET check_out_at = $1
		WHERE id = $2 AND check_out_at IS NULL`

	recentAttendanceSQL = `SELECT ` + attendanceColumns + ` FROM attendance
		WHERE client_id = $1 ORDER BY check_in_at DESC LIMIT $2`

	attendanceCountsSQL = `SELECT client_id, count(*) FROM attendance
		GROUP BY client_id ORDER BY client_id`

	listAttendanceSQL = `SELECT ` + attendanceColumns + ` FROM attendance
		ORDER BY check_in_at DESC`

	checkInsSQL = `SELECT ` + attendanceColumns + ` FROM attendance
		WHERE client_id = $1 ORDER BY check_in_at DESC`

	checkOutsSQL = `SELECT ` + attendanceColumns + ` FROM attendance
		WHERE client_id = $1 AND check_out_at IS NOT NULL ORDER BY check_out_at DESC`
)

var _ attendance.Store = (*AttendanceRepository)(nil)

// AttendanceRepository implements attendance.Store backed by PostgreSQL.
// The (client_id, business_date) unique index is the source of truth for
// one check-in per day.
type AttendanceRepository struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepository returns an AttendanceRepository that uses the
// given pool.
func NewAttendanceRepository(pool *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Create inserts a check-in. A concurrent second check-in for the same
// business date loses on the unique index.
func (r *AttendanceRepository) Create(ctx context.Context, rec *attendance.Record) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, insertAttendanceSQL,
		rec.ClientID, rec.CheckInAt, rec.Method, rec.BusinessDate,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, attendance.ErrAlreadyCheckedIn
		}
		return 0, fmt.Errorf("inserting attendance of client %d: %w", rec.ClientID, err)
	}
	return id, nil
}

// ForDay returns the client's record for the business date, or nil.
func (r *AttendanceRepository) ForDay(ctx context.Context, clientID int64, day time.Time) (*attendance.Record, error) {
	rows, err := r.pool.Query(ctx, attendanceForDaySQL, clientID, day)
	if err != nil {
		return nil, fmt.Errorf("getting attendance of client %d: %w", clientID, err)
	}
	rec, err := pgx.CollectExactlyOneRow(rows, scanAttendance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting attendance of client %d: %w", clientID, err)
	}
	return &rec, nil
}

// SetCheckOut stores the check-out instant if none is set yet.
func (r *AttendanceRepository) SetCheckOut(ctx context.Context, id int64, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, setCheckOutSQL, at.UTC(), id)
	if err != nil {
		return false, fmt.Errorf("checking out attendance %d: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *AttendanceRepository) Recent(ctx context.Context, clientID int64, limit int) ([]attendance.Record, error) {
	return r.list(ctx, recentAttendanceSQL, clientID, limit)
}

// Counts returns the number of visits per client.
func (r *AttendanceRepository) Counts(ctx context.Context) ([]attendance.ClientCount, error) {
	rows, err := r.pool.Query(ctx, attendanceCountsSQL)
	if err != nil {
		return nil, fmt.Errorf("counting attendance: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (attendance.ClientCount, error) {
		var c attendance.ClientCount
		err := row.Scan(&c.ClientID, &c.Count)
		return c, err
	})
}

func (r *AttendanceRepository) ListAll(ctx context.Context) ([]attendance.Record, error) {
	return r.list(ctx, listAttendanceSQL)
}

func (r *AttendanceRepository) CheckIns(ctx context.Context, clientID int64) ([]attendance.Record, error) {
	return r.list(ctx, checkInsSQL, clientID)
}

func (r *AttendanceRepository) CheckOuts(ctx context.Context, clientID int64) ([]attendance.Record, error) {
	return r.list(ctx, checkOutsSQL, clientID)
}

func (r *AttendanceRepository) list(ctx context.Context, sql string, args ...any) ([]attendance.Record, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("listing attendance: %w", err)
	}
	return pgx.CollectRows(rows, scanAttendance)
}

func scanAttendance(row pgx.CollectableRow) (attendance.Record, error) {
	var rec attendance.Record
	err := row.Scan(&rec.ID, &rec.ClientID, &rec.CheckInAt, &rec.CheckOutAt, &rec.Method, &rec.BusinessDate)
	return rec, err
}
