package progress

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/efitness/internal/domain/apperr"
	"github.com/xenking/efitness/internal/domain/calendar"
)

// HealthLogLimit is the number of logs in the client view.
const HealthLogLimit = 7

// Clients checks that a client account exists.
type Clients interface {
	ClientExists(ctx context.Context, clientID int64) error
}

// Exercises checks that an exercise exists.
type Exercises interface {
	ExerciseExists(ctx context.Context, id int64) error
}

// Service implements health logs, goals, snapshots and workout logs.
type Service struct {
	store     Store
	clients   Clients
	exercises Exercises
	now       calendar.Clock
}

// NewService creates a progress Service.
func NewService(store Store, clients Clients, exercises Exercises, now calendar.Clock) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, clients: clients, exercises: exercises, now: now}
}

// AddHealthLog records today's log for the client.
func (s *Service) AddHealthLog(ctx context.Context, l HealthLog) (int64, error) {
	if !l.Weight.IsPositive() || l.Calories <= 0 || !l.WaterIntakeLitres.IsPositive() || !l.SleepHours.IsPositive() {
		return 0, ErrHealthLogField
	}
	l.WorkoutDescription = strings.TrimSpace(l.WorkoutDescription)
	l.LogDate = calendar.Day(s.now())
	id, err := s.store.AddHealthLog(ctx, &l)
	if err != nil {
		return 0, errors.Wrap(err, "add health log")
	}
	return id, nil
}

// HealthLogs returns the client's most recent logs.
func (s *Service) HealthLogs(ctx context.Context, clientID int64) ([]HealthLog, error) {
	logs, err := s.store.RecentHealthLogs(ctx, clientID, HealthLogLimit)
	if err != nil {
		return nil, errors.Wrap(err, "list health logs")
	}
	return logs, nil
}

// MyGoals returns the client's goals ordered by target date.
func (s *Service) MyGoals(ctx context.Context, clientID int64) ([]Goal, error) {
	goals, err := s.store.GoalsForClient(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "list goals")
	}
	return goals, nil
}

// SetAchieved marks one of the client's goals.
func (s *Service) SetAchieved(ctx context.Context, clientID, goalID int64, achieved *bool) error {
	if achieved == nil {
		return apperr.Validation("isAchieved is required")
	}
	return s.store.SetGoalAchieved(ctx, clientID, goalID, *achieved)
}

// ClientsWithGoals returns every client with their goals.
func (s *Service) ClientsWithGoals(ctx context.Context) ([]ClientGoals, error) {
	out, err := s.store.ClientsWithGoals(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list client goals")
	}
	return out, nil
}

// CreateGoal sets a new goal for a client.
func (s *Service) CreateGoal(ctx context.Context, g Goal) (int64, error) {
	g.GoalTitle = strings.TrimSpace(g.GoalTitle)
	if g.ClientID <= 0 || g.GoalTitle == "" {
		return 0, apperr.Validation("client id and goal title are required")
	}
	if err := s.clients.ClientExists(ctx, g.ClientID); err != nil {
		return 0, err
	}
	return s.store.CreateGoal(ctx, &g)
}

// UpdateGoal applies a goal patch.
func (s *Service) UpdateGoal(ctx context.Context, id int64, p GoalPatch) error {
	if p.Empty() {
		return apperr.ErrNothingToUpdate
	}
	if p.GoalTitle != nil && strings.TrimSpace(*p.GoalTitle) == "" {
		return apperr.Validation("goal title must not be empty")
	}
	return s.store.UpdateGoal(ctx, id, p)
}

// DeleteGoal removes a goal.
func (s *Service) DeleteGoal(ctx context.Context, id int64) error {
	return s.store.DeleteGoal(ctx, id)
}

// Snapshots returns a client's measurements, newest first.
func (s *Service) Snapshots(ctx context.Context, clientID int64) ([]Snapshot, error) {
	out, err := s.store.Snapshots(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "list snapshots")
	}
	return out, nil
}

// AddSnapshot records a measurement for a client.
func (s *Service) AddSnapshot(ctx context.Context, snap Snapshot) (int64, error) {
	if snap.DateTaken.IsZero() || !snap.WeightKg.IsPositive() || !snap.BodyFatPercent.IsPositive() || !snap.BMI.IsPositive() {
		return 0, apperr.Validation("missing required snapshot fields")
	}
	if err := s.clients.ClientExists(ctx, snap.ClientID); err != nil {
		return 0, err
	}
	snap.Notes = strings.TrimSpace(snap.Notes)
	return s.store.AddSnapshot(ctx, &snap)
}

// WorkoutLogs returns a client's workouts, newest first.
func (s *Service) WorkoutLogs(ctx context.Context, clientID int64) ([]WorkoutLog, error) {
	out, err := s.store.WorkoutLogs(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "list workout logs")
	}
	return out, nil
}

// AddWorkoutLog records a performed exercise for a client.
func (s *Service) AddWorkoutLog(ctx context.Context, l WorkoutLog) (int64, error) {
	if l.DatePerformed.IsZero() || l.ExerciseID <= 0 || l.SetsDone <= 0 || l.RepsDone <= 0 || l.WeightUsedKg.IsNegative() {
		return 0, apperr.Validation("missing required workout log fields")
	}
	if l.CaloriesBurned != nil && *l.CaloriesBurned < 0 {
		return 0, apperr.Validation("calories burned must not be negative")
	}
	if err := s.clients.ClientExists(ctx, l.ClientID); err != nil {
		return 0, err
	}
	if err := s.exercises.ExerciseExists(ctx, l.ExerciseID); err != nil {
		return 0, err
	}
	l.TrainerNotes = strings.TrimSpace(l.TrainerNotes)
	return s.store.AddWorkoutLog(ctx, &l)
}
