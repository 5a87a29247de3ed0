package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/efitness/internal/domain/progress"
)

const (
	insertHealthLogSQL = `INSERT INTO health_logs (client_id, weight, calories, water_intake_litres, sleep_hours, workout_description, log_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	recentHealthLogsSQL = `SELECT id, client_id, weight, calories, water_intake_litres, sleep_hours, workout_description, log_date
		FROM health_logs WHERE client_id = $1 ORDER BY log_date DESC, id DESC LIMIT $2`

	goalColumns = `id, client_id, goal_title, goal_description, target_date, is_achieved`

	goalsForClientSQL = `SELECT ` + goalColumns + ` FROM fitness_goals
		WHERE client_id = $1 ORDER BY target_date NULLS LAST, id`

	clientsWithGoalsSQL = `SELECT a.id, a.full_name, a.email,
			g.id, g.client_id, g.goal_title, g.goal_description, g.target_date, g.is_achieved
		FROM fitness_goals g JOIN accounts a ON a.id = g.client_id
		ORDER BY a.full_name, a.id, g.target_date NULLS LAST, g.id`

	insertGoalSQL = `INSERT INTO fitness_goals (client_id, goal_title, goal_description, target_date, is_achieved)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	deleteGoalSQL = `DELETE FROM fitness_goals WHERE id = $1`

	snapshotsSQL = `SELECT id, client_id, date_taken, weight_kg, body_fat_percent, bmi, notes
		FROM progress_snapshots WHERE client_id = $1 ORDER BY date_taken DESC, id DESC`

	insertSnapshotSQL = `INSERT INTO progress_snapshots (client_id, date_taken, weight_kg, body_fat_percent, bmi, notes)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	workoutLogsSQL = `SELECT w.id, w.client_id, w.exercise_id, e.exercise_name, w.date_performed,
			w.sets_done, w.reps_done, w.weight_used_kg, w.calories_burned, w.trainer_notes
		FROM workout_logs w JOIN exercises e ON e.id = w.exercise_id
		WHERE w.client_id = $1 ORDER BY w.date_performed DESC, w.id DESC`

	insertWorkoutLogSQL = `INSERT INTO workout_logs (client_id, exercise_id, date_performed, sets_done, reps_done,
			weight_used_kg, calories_burned, trainer_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
)

var _ progress.Store = (*ProgressRepository)(nil)

// ProgressRepository implements progress.Store backed by PostgreSQL.
type ProgressRepository struct {
	pool *pgxpool.Pool
}

// NewProgressRepository returns a ProgressRepository that uses the given
// pool.
func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{pool: pool}
}

func (r *ProgressRepository) AddHealthLog(ctx context.Context, l *progress.HealthLog) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, insertHealthLogSQL,
		l.ClientID, l.Weight, l.Calories, l.WaterIntakeLitres, l.SleepHours, l.WorkoutDescription, l.LogDate,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting health log of client %d: %w", l.ClientID, err)
	}
	return id, nil
}

func (r *ProgressRepository) RecentHealthLogs(ctx context.Context, clientID int64, limit int) ([]progress.HealthLog, error) {
	rows, err := r.pool.Query(ctx, recentHealthLogsSQL, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing health logs of client %d: %w", clientID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (progress.HealthLog, error) {
		var l progress.HealthLog
		err := row.Scan(&l.ID, &l.ClientID, &l.Weight, &l.Calories, &l.WaterIntakeLitres,
			&l.SleepHours, &l.WorkoutDescription, &l.LogDate)
		return l, err
	})
}

func (r *ProgressRepository) GoalsForClient(ctx context.Context, clientID int64) ([]progress.Goal, error) {
	rows, err := r.pool.Query(ctx, goalsForClientSQL, clientID)
	if err != nil {
		return nil, fmt.Errorf("listing goals of client %d: %w", clientID, err)
	}
	return pgx.CollectRows(rows, scanGoal)
}

// ClientsWithGoals groups every goal under its client.
func (r *ProgressRepository) ClientsWithGoals(ctx context.Context) ([]progress.ClientGoals, error) {
	rows, err := r.pool.Query(ctx, clientsWithGoalsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing clients with goals: %w", err)
	}
	defer rows.Close()

	var out []progress.ClientGoals
	for rows.Next() {
		var (
			c progress.ClientGoals
			g progress.Goal
		)
		if err := rows.Scan(&c.ClientID, &c.FullName, &c.Email,
			&g.ID, &g.ClientID, &g.GoalTitle, &g.GoalDescription, &g.TargetDate, &g.IsAchieved); err != nil {
			return nil, fmt.Errorf("scanning client goal: %w", err)
		}
		if n := len(out); n > 0 && out[n-1].ClientID == c.ClientID {
			out[n-1].Goals = append(out[n-1].Goals, g)
			continue
		}
		c.Goals = []progress.Goal{g}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing clients with goals: %w", err)
	}
	return out, nil
}

func (r *ProgressRepository) CreateGoal(ctx context.Context, g *progress.Goal) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, insertGoalSQL,
		g.ClientID, g.GoalTitle, g.GoalDescription, g.TargetDate, g.IsAchieved,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting goal for client %d: %w", g.ClientID, err)
	}
	return id, nil
}

func (r *ProgressRepository) UpdateGoal(ctx context.Context, id int64, p progress.GoalPatch) error {
	var s setList
	setIf(&s, "goal_title", p.GoalTitle)
	setIf(&s, "goal_description", p.GoalDescription)
	setIf(&s, "target_date", p.TargetDate)
	setIf(&s, "is_achieved", p.IsAchieved)
	return s.exec(ctx, r.pool, "fitness_goals", progress.ErrGoalNotFound, where("id", id))
}

// SetGoalAchieved flags the goal only when it belongs to the client.
func (r *ProgressRepository) SetGoalAchieved(ctx context.Context, clientID, goalID int64, achieved bool) error {
	var s setList
	s.add("is_achieved", achieved)
	return s.exec(ctx, r.pool, "fitness_goals", progress.ErrGoalNotFound,
		where("id", goalID), where("client_id", clientID))
}

func (r *ProgressRepository) DeleteGoal(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteGoalSQL, id)
	if err != nil {
		return fmt.Errorf("deleting goal %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return progress.ErrGoalNotFound
	}
	return nil
}

func (r *ProgressRepository) Snapshots(ctx context.Context, clientID int64) ([]progress.Snapshot, error) {
	rows, err := r.pool.Query(ctx, snapshotsSQL, clientID)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots of client %d: %w", clientID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (progress.Snapshot, error) {
		var s progress.Snapshot
		err := row.Scan(&s.ID, &s.ClientID, &s.DateTaken, &s.WeightKg, &s.BodyFatPercent, &s.BMI, &s.Notes)
		return s, err
	})
}

func (r *ProgressRepository) AddSnapshot(ctx context.Context, s *progress.Snapshot) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, insertSnapshotSQL,
		s.ClientID, s.DateTaken, s.WeightKg, s.BodyFatPercent, s.BMI, s.Notes,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting snapshot of client %d: %w", s.ClientID, err)
	}
	return id, nil
}

func (r *ProgressRepository) WorkoutLogs(ctx context.Context, clientID int64) ([]progress.WorkoutLog, error) {
	rows, err := r.pool.Query(ctx, workoutLogsSQL, clientID)
	if err != nil {
		return nil, fmt.Errorf("listing workout logs of client %d: %w", clientID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (progress.WorkoutLog, error) {
		var l progress.WorkoutLog
		err := row.Scan(&l.ID, &l.ClientID, &l.ExerciseID, &l.ExerciseName, &l.DatePerformed,
			&l.SetsDone, &l.RepsDone, &l.WeightUsedKg, &l.CaloriesBurned, &l.TrainerNotes)
		return l, err
	})
}

func (r *ProgressRepository) AddWorkoutLog(ctx context.Context, l *progress.WorkoutLog) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, insertWorkoutLogSQL,
		l.ClientID, l.ExerciseID, l.DatePerformed, l.SetsDone, l.RepsDone,
		l.WeightUsedKg, l.CaloriesBurned, l.TrainerNotes,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting workout log of client %d: %w", l.ClientID, err)
	}
	return id, nil
}

func scanGoal(row pgx.CollectableRow) (progress.Goal, error) {
	var g progress.Goal
	err := row.Scan(&g.ID, &g.ClientID, &g.GoalTitle, &g.GoalDescription, &g.TargetDate, &g.IsAchieved)
	return g, err
}
