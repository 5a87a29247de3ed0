package progress

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/efitness/internal/domain/apperr"
)

var (
	ErrGoalNotFound   = apperr.NotFound("goal not found")
	ErrHealthLogField = apperr.Validation("all fields except workout notes are required")
)

// HealthLog is a client's daily self-reported log.
type HealthLog struct {
	ID                 int64
	ClientID           int64
	Weight             decimal.Decimal
	Calories           int
	WaterIntakeLitres  decimal.Decimal
	SleepHours         decimal.Decimal
	WorkoutDescription string
	LogDate            time.Time
}

// Goal is a fitness goal a trainer set for a client.
type Goal struct {
	ID              int64
	ClientID        int64
	GoalTitle       string
	GoalDescription string
	TargetDate      *time.Time
	IsAchieved      bool
}

// GoalPatch holds optional goal fields.
type GoalPatch struct {
	GoalTitle       *string
	GoalDescription *string
	TargetDate      *time.Time
	IsAchieved      *bool
}

// Empty reports whether no field is set.
func (p GoalPatch) Empty() bool {
	return p == GoalPatch{}
}

// ClientGoals groups a client's goals for the trainer view.
type ClientGoals struct {
	ClientID int64
	FullName string
	Email    string
	Goals    []Goal
}

// Snapshot is a body measurement taken on a date.
type Snapshot struct {
	ID             int64
	ClientID       int64
	DateTaken      time.Time
	WeightKg       decimal.Decimal
	BodyFatPercent decimal.Decimal
	BMI            decimal.Decimal
	Notes          string
}

// WorkoutLog is a performed exercise recorded by a trainer.
type WorkoutLog struct {
	ID             int64
	ClientID       int64
	ExerciseID     int64
	ExerciseName   string
	DatePerformed  time.Time
	SetsDone       int
	RepsDone       int
	WeightUsedKg   decimal.Decimal
	CaloriesBurned *int
	TrainerNotes   string
}

// Store persists progress data.
type Store interface {
	AddHealthLog(ctx context.Context, l *HealthLog) (int64, error)
	RecentHealthLogs(ctx context.Context, clientID int64, limit int) ([]HealthLog, error)

	GoalsForClient(ctx context.Context, clientID int64) ([]Goal, error)
	ClientsWithGoals(ctx context.Context) ([]ClientGoals, error)
	CreateGoal(ctx context.Context, g *Goal) (int64, error)
	UpdateGoal(ctx context.Context, id int64, p GoalPatch) error
	// SetGoalAchieved updates a goal only if it belongs to the client.
	SetGoalAchieved(ctx context.Context, clientID, goalID int64, achieved bool) error
	DeleteGoal(ctx context.Context, id int64) error

	Snapshots(ctx context.Context, clientID int64) ([]Snapshot, error)
	AddSnapshot(ctx context.Context, s *Snapshot) (int64, error)

	WorkoutLogs(ctx context.Context, clientID int64) ([]WorkoutLog, error)
	AddWorkoutLog(ctx context.Context, l *WorkoutLog) (int64, error)
}
