package training

import (
	"context"
	"time"

	"github.com/xenking/efitness/internal/domain/apperr"
)

var (
	ErrPlanNotFound     = apperr.NotFound("workout plan not found")
	ErrExerciseNotFound = apperr.NotFound("exercise not found")
	ErrExerciseExists   = apperr.Conflict("exercise with this name already exists")
	ErrClassNotFound    = apperr.NotFound("virtual class not found")
)

// WorkoutPlan is a program authored by a trainer.
type WorkoutPlan struct {
	ID                 int64
	TrainerID          int64
	TrainerName        string
	Title              string
	Goal               string
	Level              string
	DurationWeeks      int
	FocusAreas         string
	CustomInstructions string
	IsActive           bool
	CreatedAt          time.Time
}

// PlanPatch holds optional workout plan fields.
type PlanPatch struct {
	Title              *string
	Goal               *string
	Level              *string
	DurationWeeks      *int
	FocusAreas         *string
	CustomInstructions *string
	IsActive           *bool
}

// Empty reports whether no field is set.
func (p PlanPatch) Empty() bool {
	return p == PlanPatch{}
}

// Exercise is a catalog movement referenced by workout logs.
type Exercise struct {
	ID           int64
	ExerciseName string
	Description  string
	Category     string
}

// ExercisePatch holds optional exercise fields.
type ExercisePatch struct {
	ExerciseName *string
	Description  *string
	Category     *string
}

// Empty reports whether no field is set.
func (p ExercisePatch) Empty() bool {
	return p == ExercisePatch{}
}

// VirtualClass is a scheduled online session.
type VirtualClass struct {
	ID              int64
	TrainerID       int64
	TrainerName     string
	Title           string
	Description     string
	StartTime       time.Time
	DurationMinutes int
	Platform        string
	JoinLink        string
}

// Store persists training content. Trainer-scoped methods match on both
// the row id and the trainer id, so foreign rows look missing.
type Store interface {
	PlansByTrainer(ctx context.Context, trainerID int64) ([]WorkoutPlan, error)
	ActivePlans(ctx context.Context) ([]WorkoutPlan, error)
	CreatePlan(ctx context.Context, p *WorkoutPlan) (int64, error)
	UpdatePlan(ctx context.Context, trainerID, id int64, p PlanPatch) error
	DeletePlan(ctx context.Context, trainerID, id int64) error

	Exercises(ctx context.Context) ([]Exercise, error)
	GetExercise(ctx context.Context, id int64) (*Exercise, error)
	// CreateExercise returns ErrExerciseExists on a duplicate name.
	CreateExercise(ctx context.Context, e *Exercise) (int64, error)
	UpdateExercise(ctx context.Context, id int64, p ExercisePatch) error
	DeleteExercise(ctx context.Context, id int64) error

	Classes(ctx context.Context) ([]VirtualClass, error)
	ClassesByTrainer(ctx context.Context, trainerID int64) ([]VirtualClass, error)
	CreateClass(ctx context.Context, c *VirtualClass) (int64, error)
	UpdateClass(ctx context.Context, trainerID int64, c *VirtualClass) error
	DeleteClass(ctx context.Context, trainerID, id int64) error
}
