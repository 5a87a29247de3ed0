package training

import (
	"context"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/efitness/internal/domain/apperr"
)

// Service manages workout plans, exercises and virtual classes.
type Service struct {
	store Store
}

// NewService creates a training Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// PlansByTrainer returns the trainer's own plans, newest first.
func (s *Service) PlansByTrainer(ctx context.Context, trainerID int64) ([]WorkoutPlan, error) {
	plans, err := s.store.PlansByTrainer(ctx, trainerID)
	if err != nil {
		return nil, errors.Wrap(err, "list workout plans")
	}
	return plans, nil
}

// ActivePlans returns the plans visible to clients.
func (s *Service) ActivePlans(ctx context.Context) ([]WorkoutPlan, error) {
	plans, err := s.store.ActivePlans(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list active workout plans")
	}
	return plans, nil
}

// CreatePlan stores a new plan owned by the trainer.
func (s *Service) CreatePlan(ctx context.Context, trainerID int64, p WorkoutPlan) (int64, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.Goal = strings.TrimSpace(p.Goal)
	p.Level = strings.TrimSpace(p.Level)
	if p.Title == "" || p.Goal == "" || p.Level == "" || p.DurationWeeks <= 0 {
		return 0, apperr.Validation("title, goal, level and duration are required")
	}
	p.TrainerID = trainerID
	p.IsActive = true
	return s.store.CreatePlan(ctx, &p)
}

// UpdatePlan patches one of the trainer's plans.
func (s *Service) UpdatePlan(ctx context.Context, trainerID, id int64, p PlanPatch) error {
	if p.Empty() {
		return apperr.ErrNothingToUpdate
	}
	for _, f := range []*string{p.Title, p.Goal, p.Level} {
		if f != nil && strings.TrimSpace(*f) == "" {
			return apperr.Validation("title, goal and level must not be empty")
		}
	}
	if p.DurationWeeks != nil && *p.DurationWeeks <= 0 {
		return apperr.Validation("duration weeks must be positive")
	}
	return s.store.UpdatePlan(ctx, trainerID, id, p)
}

// DeletePlan removes one of the trainer's plans.
func (s *Service) DeletePlan(ctx context.Context, trainerID, id int64) error {
	return s.store.DeletePlan(ctx, trainerID, id)
}

// Exercises returns the exercise catalog.
func (s *Service) Exercises(ctx context.Context) ([]Exercise, error) {
	out, err := s.store.Exercises(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list exercises")
	}
	return out, nil
}

// ExerciseExists returns ErrExerciseNotFound for unknown ids.
func (s *Service) ExerciseExists(ctx context.Context, id int64) error {
	_, err := s.store.GetExercise(ctx, id)
	return err
}

// CreateExercise adds a uniquely named exercise.
func (s *Service) CreateExercise(ctx context.Context, e Exercise) (int64, error) {
	e.ExerciseName = strings.TrimSpace(e.ExerciseName)
	if e.ExerciseName == "" {
		return 0, apperr.Validation("exercise name is required")
	}
	return s.store.CreateExercise(ctx, &e)
}

// UpdateExercise patches an exercise.
func (s *Service) UpdateExercise(ctx context.Context, id int64, p ExercisePatch) error {
	if p.Empty() {
		return apperr.ErrNothingToUpdate
	}
	if p.ExerciseName != nil && strings.TrimSpace(*p.ExerciseName) == "" {
		return apperr.Validation("exercise name must not be empty")
	}
	return s.store.UpdateExercise(ctx, id, p)
}

// DeleteExercise removes an exercise.
func (s *Service) DeleteExercise(ctx context.Context, id int64) error {
	return s.store.DeleteExercise(ctx, id)
}

// Classes returns all classes ordered by start time.
func (s *Service) Classes(ctx context.Context) ([]VirtualClass, error) {
	out, err := s.store.Classes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list virtual classes")
	}
	return out, nil
}

// ClassesByTrainer returns the trainer's own classes.
func (s *Service) ClassesByTrainer(ctx context.Context, trainerID int64) ([]VirtualClass, error) {
	out, err := s.store.ClassesByTrainer(ctx, trainerID)
	if err != nil {
		return nil, errors.Wrap(err, "list trainer classes")
	}
	return out, nil
}

func validateClass(c *VirtualClass) error {
	c.Title = strings.TrimSpace(c.Title)
	c.Platform = strings.TrimSpace(c.Platform)
	c.JoinLink = strings.TrimSpace(c.JoinLink)
	if c.Title == "" || c.StartTime.IsZero() || c.DurationMinutes <= 0 || c.Platform == "" || c.JoinLink == "" {
		return apperr.Validation("title, start time, duration, platform and join link are required")
	}
	c.StartTime = c.StartTime.UTC()
	return nil
}

// CreateClass schedules a class for the trainer.
func (s *Service) CreateClass(ctx context.Context, trainerID int64, c VirtualClass) (int64, error) {
	if err := validateClass(&c); err != nil {
		return 0, err
	}
	c.TrainerID = trainerID
	return s.store.CreateClass(ctx, &c)
}

// UpdateClass replaces one of the trainer's classes.
func (s *Service) UpdateClass(ctx context.Context, trainerID int64, c VirtualClass) error {
	if err := validateClass(&c); err != nil {
		return err
	}
	c.TrainerID = trainerID
	return s.store.UpdateClass(ctx, trainerID, &c)
}

// DeleteClass removes one of the trainer's classes.
func (s *Service) DeleteClass(ctx context.Context, trainerID, id int64) error {
	return s.store.DeleteClass(ctx, trainerID, id)
}
