package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/efitness/internal/domain/apperr"
	"github.com/xenking/efitness/internal/domain/training"
)

const (
	planViewColumns = `w.id, w.trainer_id, a.full_name, w.title, w.goal, w.level, w.duration_weeks,
		w.focus_areas, w.custom_instructions, w.is_active, w.created_at`

	plansByTrainerSQL = `SELECT ` + planViewColumns + `
		FROM workout_plans w JOIN accounts a ON a.id = w.trainer_id
		WHERE w.trainer_id = $1 ORDER BY w.created_at DESC, w.id DESC`

	activePlansSQL = `SELECT ` + planViewColumns + `
		FROM workout_plans w JOIN accounts a ON a.id = w.trainer_id
		WHERE w.is_active ORDER BY w.created_at DESC, w.id DESC`

	insertWorkoutPlanSQL = `INSERT INTO workout_plans (trainer_id, title, goal, level, duration_weeks,
			focus_areas, custom_instructions, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	deleteWorkoutPlanSQL = `DELETE FROM workout_plans WHERE id = $1 AND trainer_id = $2`

	exerciseColumns = `id, exercise_name, description, category`

	listExercisesSQL  = `SELECT ` + exerciseColumns + ` FROM exercises ORDER BY exercise_name`
	getExerciseSQL    = `SELECT ` + exerciseColumns + ` FROM exercises WHERE id = $1`
	deleteExerciseSQL = `DELETE FROM exercises WHERE id = $1`

	insertExerciseSQL = `INSERT INTO exercises (exercise_name, description, category)
		VALUES ($1, $2, $3) RETURNING id`

	classColumns = `c.id, c.trainer_id, a.full_name, c.title, c.description, c.start_time,
		c.duration_minutes, c.platform, c.join_link`

	listClassesSQL = `SELECT ` + classColumns + `
		FROM virtual_classes c JOIN accounts a ON a.id = c.trainer_id
		ORDER BY c.start_time, c.id`

	classesByTrainerSQL = `SELECT ` + classColumns + `
		FROM virtual_classes c JOIN accounts a ON a.id = c.trainer_id
		WHERE c.trainer_id = $1 ORDER BY c.start_time, c.id`

	insertClassSQL = `INSERT INTO virtual_classes (trainer_id, title, description, start_time,
			duration_minutes, platform, join_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	deleteClassSQL = `DELETE FROM virtual_classes WHERE id = $1 AND trainer_id = $2`
)

var errExerciseInUse = apperr.Conflict("exercise is used by workout logs and cannot be deleted")

var _ training.Store = (*TrainingRepository)(nil)

// TrainingRepository implements training.Store backed by PostgreSQL.
type TrainingRepository struct {
	pool *pgxpool.Pool
}

// NewTrainingRepository returns a TrainingRepository that uses the given
// pool.
func NewTrainingRepository(pool *pgxpool.Pool) *TrainingRepository {
	return &TrainingRepository{pool: pool}
}

func (r *TrainingRepository) PlansByTrainer(ctx context.Context, trainerID int64) ([]training.WorkoutPlan, error) {
	rows, err := r.pool.Query(ctx, plansByTrainerSQL, trainerID)
	if err != nil {
		return nil, fmt.Errorf("listing workout plans of trainer %d: %w", trainerID, err)
	}
	return pgx.CollectRows(rows, scanWorkoutPlan)
}

func (r *TrainingRepository) ActivePlans(ctx context.Context) ([]training.WorkoutPlan, error) {
	rows, err := r.pool.Query(ctx, activePlansSQL)
	if err != nil {
		return nil, fmt.Errorf("listing active workout plans: %w", err)
	}
	return pgx.CollectRows(rows, scanWorkoutPlan)
}

func (r *TrainingRepository) CreatePlan(ctx context.Context, p *training.WorkoutPlan) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, insertWorkoutPlanSQL,
		p.TrainerID, p.Title, p.Goal, p.Level, p.DurationWeeks, p.FocusAreas, p.CustomInstructions, p.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting workout plan: %w", err)
	}
	return id, nil
}

// UpdatePlan patches a plan owned by the trainer.
func (r *TrainingRepository) UpdatePlan(ctx context.Context, trainerID, id int64, p training.PlanPatch) error {
	var s setList
	setIf(&s, "title", p.Title)
	setIf(&s, "goal", p.Goal)
	setIf(&s, "level", p.Level)
	setIf(&s, "duration_weeks", p.DurationWeeks)
	setIf(&s, "focus_areas", p.FocusAreas)
	setIf(&s, "custom_instructions", p.CustomInstructions)
	setIf(&s, "is_active", p.IsActive)
	return s.exec(ctx, r.pool, "workout_plans", training.ErrPlanNotFound,
		where("id", id), where("trainer_id", trainerID))
}

func (r *TrainingRepository) DeletePlan(ctx context.Context, trainerID, id int64) error {
	return deleteOwned(ctx, r.pool, deleteWorkoutPlanSQL, id, trainerID, training.ErrPlanNotFound)
}

func (r *TrainingRepository) Exercises(ctx context.Context) ([]training.Exercise, error) {
	rows, err := r.pool.Query(ctx, listExercisesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing exercises: %w", err)
	}
	return pgx.CollectRows(rows, scanExercise)
}

func (r *TrainingRepository) GetExercise(ctx context.Context, id int64) (*training.Exercise, error) {
	rows, err := r.pool.Query(ctx, getExerciseSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting exercise %d: %w", id, err)
	}
	e, err := pgx.CollectExactlyOneRow(rows, scanExercise)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, training.ErrExerciseNotFound
		}
		return nil, fmt.Errorf("getting exercise %d: %w", id, err)
	}
	return &e, nil
}

func (r *TrainingRepository) CreateExercise(ctx context.Context, e *training.Exercise) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, insertExerciseSQL, e.ExerciseName, e.Description, e.Category).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, training.ErrExerciseExists
		}
		return 0, fmt.Errorf("inserting exercise: %w", err)
	}
	return id, nil
}

func (r *TrainingRepository) UpdateExercise(ctx context.Context, id int64, p training.ExercisePatch) error {
	var s setList
	setIf(&s, "exercise_name", p.ExerciseName)
	setIf(&s, "description", p.Description)
	setIf(&s, "category", p.Category)
	err := s.exec(ctx, r.pool, "exercises", training.ErrExerciseNotFound, where("id", id))
	if isUniqueViolation(err) {
		return training.ErrExerciseExists
	}
	return err
}

func (r *TrainingRepository) DeleteExercise(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteExerciseSQL, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errExerciseInUse
		}
		return fmt.Errorf("deleting exercise %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return training.ErrExerciseNotFound
	}
	return nil
}

func (r *TrainingRepository) Classes(ctx context.Context) ([]training.VirtualClass, error) {
	rows, err := r.pool.Query(ctx, listClassesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing virtual classes: %w", err)
	}
	return pgx.CollectRows(rows, scanClass)
}

func (r *TrainingRepository) ClassesByTrainer(ctx context.Context, trainerID int64) ([]training.VirtualClass, error) {
	rows, err := r.pool.Query(ctx, classesByTrainerSQL, trainerID)
	if err != nil {
		return nil, fmt.Errorf("listing virtual classes of trainer %d: %w", trainerID, err)
	}
	return pgx.CollectRows(rows, scanClass)
}

func (r *TrainingRepository) CreateClass(ctx context.Context, c *training.VirtualClass) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, insertClassSQL,
		c.TrainerID, c.Title, c.Description, c.StartTime, c.DurationMinutes, c.Platform, c.JoinLink,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting virtual class: %w", err)
	}
	return id, nil
}

// UpdateClass rewrites every editable column of a class owned by the
// trainer.
func (r *TrainingRepository) UpdateClass(ctx context.Context, trainerID int64, c *training.VirtualClass) error {
	var s setList
	s.add("title", c.Title)
	s.add("description", c.Description)
	s.add("start_time", c.StartTime)
	s.add("duration_minutes", c.DurationMinutes)
	s.add("platform", c.Platform)
	s.add("join_link", c.JoinLink)
	return s.exec(ctx, r.pool, "virtual_classes", training.ErrClassNotFound,
		where("id", c.ID), where("trainer_id", trainerID))
}

func (r *TrainingRepository) DeleteClass(ctx context.Context, trainerID, id int64) error {
	return deleteOwned(ctx, r.pool, deleteClassSQL, id, trainerID, training.ErrClassNotFound)
}

// deleteOwned runs a DELETE keyed on id and owner and maps zero rows to
// notFound.
func deleteOwned(ctx context.Context, q querier, sql string, id, ownerID int64, notFound error) error {
	tag, err := q.Exec(ctx, sql, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting row %d of owner %d: %w", id, ownerID, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}

func scanWorkoutPlan(row pgx.CollectableRow) (training.WorkoutPlan, error) {
	var p training.WorkoutPlan
	err := row.Scan(&p.ID, &p.TrainerID, &p.TrainerName, &p.Title, &p.Goal, &p.Level, &p.DurationWeeks,
		&p.FocusAreas, &p.CustomInstructions, &p.IsActive, &p.CreatedAt)
	return p, err
}

func scanExercise(row pgx.CollectableRow) (training.Exercise, error) {
	var e training.Exercise
	err := row.Scan(&e.ID, &e.ExerciseName, &e.Description, &e.Category)
	return e, err
}

func scanClass(row pgx.CollectableRow) (training.VirtualClass, error) {
	var c training.VirtualClass
	err := row.Scan(&c.ID, &c.TrainerID, &c.TrainerName, &c.Title, &c.Description, &c.StartTime,
		&c.DurationMinutes, &c.Platform, &c.JoinLink)
	return c, err
}
