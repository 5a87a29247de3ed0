package training

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/efitness/internal/domain/apperr"
)

type mockStore struct {
	plans     map[int64]WorkoutPlan
	exercises map[int64]Exercise
	classes   map[int64]VirtualClass
	nextID    int64
}

func newMockStore() *mockStore {
	return &mockStore{
		plans:     make(map[int64]WorkoutPlan),
		exercises: make(map[int64]Exercise),
		classes:   make(map[int64]VirtualClass),
	}
}

func (m *mockStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *mockStore) PlansByTrainer(_ context.Context, trainerID int64) ([]WorkoutPlan, error) {
	var out []WorkoutPlan
	for _, p := range m.plans {
		if p.TrainerID == trainerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockStore) ActivePlans(context.Context) ([]WorkoutPlan, error) { return nil, nil }

func (m *mockStore) CreatePlan(_ context.Context, p *WorkoutPlan) (int64, error) {
	p.ID = m.id()
	m.plans[p.ID] = *p
	return p.ID, nil
}

func (m *mockStore) UpdatePlan(_ context.Context, trainerID, id int64, p PlanPatch) error {
	plan, ok := m.plans[id]
	if !ok || plan.TrainerID != trainerID {
		return ErrPlanNotFound
	}
	if p.Title != nil {
		plan.Title = *p.Title
	}
	m.plans[id] = plan
	return nil
}

func (m *mockStore) DeletePlan(_ context.Context, trainerID, id int64) error {
	plan, ok := m.plans[id]
	if !ok || plan.TrainerID != trainerID {
		return ErrPlanNotFound
	}
	delete(m.plans, id)
	return nil
}

func (m *mockStore) Exercises(context.Context) ([]Exercise, error) { return nil, nil }

func (m *mockStore) GetExercise(_ context.Context, id int64) (*Exercise, error) {
	e, ok := m.exercises[id]
	if !ok {
		return nil, ErrExerciseNotFound
	}
	return &e, nil
}

func (m *mockStore) CreateExercise(_ context.Context, e *Exercise) (int64, error) {
	for _, x := range m.exercises {
		if x.ExerciseName == e.ExerciseName {
			return 0, ErrExerciseExists
		}
	}
	e.ID = m.id()
	m.exercises[e.ID] = *e
	return e.ID, nil
}

func (m *mockStore) UpdateExercise(_ context.Context, id int64, _ ExercisePatch) error {
	if _, ok := m.exercises[id]; !ok {
		return ErrExerciseNotFound
	}
	return nil
}

func (m *mockStore) DeleteExercise(_ context.Context, id int64) error {
	if _, ok := m.exercises[id]; !ok {
		return ErrExerciseNotFound
	}
	delete(m.exercises, id)
	return nil
}

func (m *mockStore) Classes(context.Context) ([]VirtualClass, error)                 { return nil, nil }
func (m *mockStore) ClassesByTrainer(context.Context, int64) ([]VirtualClass, error) { return nil, nil }

func (m *mockStore) CreateClass(_ context.Context, c *VirtualClass) (int64, error) {
	c.ID = m.id()
	m.classes[c.ID] = *c
	return c.ID, nil
}

func (m *mockStore) UpdateClass(_ context.Context, trainerID int64, c *VirtualClass) error {
	old, ok := m.classes[c.ID]
	if !ok || old.TrainerID != trainerID {
		return ErrClassNotFound
	}
	m.classes[c.ID] = *c
	return nil
}

func (m *mockStore) DeleteClass(_ context.Context, trainerID, id int64) error {
	old, ok := m.classes[id]
	if !ok || old.TrainerID != trainerID {
		return ErrClassNotFound
	}
	delete(m.classes, id)
	return nil
}

func TestWorkoutPlans(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	svc := NewService(store)

	_, err := svc.CreatePlan(ctx, 1, WorkoutPlan{Title: "Strength", Goal: "Muscle"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	id, err := svc.CreatePlan(ctx, 1, WorkoutPlan{Title: "Strength", Goal: "Muscle", Level: "Beginner", DurationWeeks: 8})
	require.NoError(t, err)
	assert.True(t, store.plans[id].IsActive)
	assert.Equal(t, int64(1), store.plans[id].TrainerID)

	title := "Strength II"
	require.ErrorIs(t, svc.UpdatePlan(ctx, 2, id, PlanPatch{Title: &title}), ErrPlanNotFound)
	require.NoError(t, svc.UpdatePlan(ctx, 1, id, PlanPatch{Title: &title}))
	assert.Equal(t, "Strength II", store.plans[id].Title)

	require.ErrorIs(t, svc.UpdatePlan(ctx, 1, id, PlanPatch{}), apperr.ErrNothingToUpdate)
	zero := 0
	require.Error(t, svc.UpdatePlan(ctx, 1, id, PlanPatch{DurationWeeks: &zero}))

	require.ErrorIs(t, svc.DeletePlan(ctx, 2, id), ErrPlanNotFound)
	require.NoError(t, svc.DeletePlan(ctx, 1, id))
}

func TestExercises(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMockStore())

	_, err := svc.CreateExercise(ctx, Exercise{ExerciseName: " "})
	require.Error(t, err)

	id, err := svc.CreateExercise(ctx, Exercise{ExerciseName: "Squat", Category: "Legs"})
	require.NoError(t, err)
	require.NoError(t, svc.ExerciseExists(ctx, id))

	_, err = svc.CreateExercise(ctx, Exercise{ExerciseName: " Squat "})
	require.ErrorIs(t, err, ErrExerciseExists)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	require.ErrorIs(t, svc.ExerciseExists(ctx, 99), ErrExerciseNotFound)
	require.ErrorIs(t, svc.UpdateExercise(ctx, id, ExercisePatch{}), apperr.ErrNothingToUpdate)
	require.NoError(t, svc.DeleteExercise(ctx, id))
}

func TestVirtualClasses(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	svc := NewService(store)
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.FixedZone("UTC+6", 6*3600))

	_, err := svc.CreateClass(ctx, 1, VirtualClass{Title: "Yoga", StartTime: start, Platform: "Zoom", JoinLink: "https://zoom.us/j/1"})
	require.Error(t, err)

	id, err := svc.CreateClass(ctx, 1, VirtualClass{
		Title: "Yoga", StartTime: start, DurationMinutes: 45, Platform: "Zoom", JoinLink: "https://zoom.us/j/1",
	})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, store.classes[id].StartTime.Location())
	assert.Equal(t, 3, store.classes[id].StartTime.Hour())

	upd := store.classes[id]
	upd.Title = "Evening Yoga"
	require.ErrorIs(t, svc.UpdateClass(ctx, 2, upd), ErrClassNotFound)
	require.NoError(t, svc.UpdateClass(ctx, 1, upd))
	assert.Equal(t, "Evening Yoga", store.classes[id].Title)

	require.ErrorIs(t, svc.DeleteClass(ctx, 2, id), ErrClassNotFound)
	require.NoError(t, svc.DeleteClass(ctx, 1, id))
}
