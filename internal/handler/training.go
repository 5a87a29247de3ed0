package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xenking/efitness/internal/domain/training"
	"github.com/xenking/efitness/internal/session"
)

type workoutPlanView struct {
	PlanID             int64     `json:"PlanID"`
	TrainerID          int64     `json:"TrainerID"`
	TrainerName        string    `json:"TrainerName,omitempty"`
	Title              string    `json:"Title"`
	Goal               string    `json:"Goal"`
	Level              string    `json:"Level"`
	DurationWeeks      int       `json:"DurationWeeks"`
	FocusAreas         string    `json:"FocusAreas"`
	CustomInstructions string    `json:"CustomInstructions"`
	IsActive           bool      `json:"IsActive"`
	CreatedAt          time.Time `json:"CreatedAt"`
}

func viewWorkoutPlans(list []training.WorkoutPlan) []workoutPlanView {
	out := make([]workoutPlanView, len(list))
	for i, p := range list {
		out[i] = workoutPlanView{
			PlanID:             p.ID,
			TrainerID:          p.TrainerID,
			TrainerName:        p.TrainerName,
			Title:              p.Title,
			Goal:               p.Goal,
			Level:              p.Level,
			DurationWeeks:      p.DurationWeeks,
			FocusAreas:         p.FocusAreas,
			CustomInstructions: p.CustomInstructions,
			IsActive:           p.IsActive,
			CreatedAt:          p.CreatedAt,
		}
	}
	return out
}

func (h *Handler) trainerPlans(c *gin.Context) {
	list, err := h.Training.PlansByTrainer(c.Request.Context(), session.MustPrincipal(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"plans": viewWorkoutPlans(list)})
}

func (h *Handler) activeWorkoutPlans(c *gin.Context) {
	list, err := h.Training.ActivePlans(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"plans": viewWorkoutPlans(list)})
}

type workoutPlanRequest struct {
	Title              *string `json:"Title"`
	Goal               *string `json:"Goal"`
	Level              *string `json:"Level"`
	DurationWeeks      *int    `json:"DurationWeeks"`
	FocusAreas         *string `json:"FocusAreas"`
	CustomInstructions *string `json:"CustomInstructions"`
	IsActive           *bool   `json:"IsActive"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (h *Handler) createWorkoutPlan(c *gin.Context) {
	var req workoutPlanRequest
	if !bind(c, &req) {
		return
	}
	id, err := h.Training.CreatePlan(c.Request.Context(), session.MustPrincipal(c).UserID, training.WorkoutPlan{
		Title:              deref(req.Title),
		Goal:               deref(req.Goal),
		Level:              deref(req.Level),
		DurationWeeks:      deref(req.DurationWeeks),
		FocusAreas:         deref(req.FocusAreas),
		CustomInstructions: deref(req.CustomInstructions),
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"message": "workout plan created", "planId": id})
}

func (h *Handler) updateWorkoutPlan(c *gin.Context) {
	id, valid := pathID(c, "planId")
	if !valid {
		return
	}
	var req workoutPlanRequest
	if !bind(c, &req) {
		return
	}
	err := h.Training.UpdatePlan(c.Request.Context(), session.MustPrincipal(c).UserID, id, training.PlanPatch(req))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "workout plan updated"})
}

func (h *Handler) deleteWorkoutPlan(c *gin.Context) {
	id, valid := pathID(c, "planId")
	if !valid {
		return
	}
	if err := h.Training.DeletePlan(c.Request.Context(), session.MustPrincipal(c).UserID, id); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "workout plan deleted"})
}

type exerciseView struct {
	ExerciseID   int64  `json:"ExerciseID"`
	ExerciseName string `json:"ExerciseName"`
	Description  string `json:"Description"`
	Category     string `json:"Category"`
}

func (h *Handler) listExercises(c *gin.Context) {
	list, err := h.Training.Exercises(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]exerciseView, len(list))
	for i, e := range list {
		out[i] = exerciseView{
			ExerciseID:   e.ID,
			ExerciseName: e.ExerciseName,
			Description:  e.Description,
			Category:     e.Category,
		}
	}
	ok(c, http.StatusOK, gin.H{"exercises": out})
}

type exerciseRequest struct {
	ExerciseName *string `json:"ExerciseName"`
	Description  *string `json:"Description"`
	Category     *string `json:"Category"`
}

func (h *Handler) createExercise(c *gin.Context) {
	var req exerciseRequest
	if !bind(c, &req) {
		return
	}
	id, err := h.Training.CreateExercise(c.Request.Context(), training.Exercise{
		ExerciseName: deref(req.ExerciseName),
		Description:  deref(req.Description),
		Category:     deref(req.Category),
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"message": "exercise created", "exerciseId": id})
}

func (h *Handler) updateExercise(c *gin.Context) {
	id, valid := pathID(c, "exerciseId")
	if !valid {
		return
	}
	var req exerciseRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Training.UpdateExercise(c.Request.Context(), id, training.ExercisePatch(req)); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "exercise updated"})
}

func (h *Handler) deleteExercise(c *gin.Context) {
	id, valid := pathID(c, "exerciseId")
	if !valid {
		return
	}
	if err := h.Training.DeleteExercise(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "exercise deleted"})
}

type classView struct {
	ClassID         int64     `json:"ClassID"`
	TrainerID       int64     `json:"TrainerID"`
	TrainerName     string    `json:"TrainerName,omitempty"`
	Title           string    `json:"Title"`
	Description     string    `json:"Description"`
	StartTime       time.Time `json:"StartTime"`
	DurationMinutes int       `json:"DurationMinutes"`
	Platform        string    `json:"Platform"`
	JoinLink        string    `json:"JoinLink"`
}

func viewClasses(list []training.VirtualClass) []classView {
	out := make([]classView, len(list))
	for i, vc := range list {
		out[i] = classView{
			ClassID:         vc.ID,
			TrainerID:       vc.TrainerID,
			TrainerName:     vc.TrainerName,
			Title:           vc.Title,
			Description:     vc.Description,
			StartTime:       vc.StartTime,
			DurationMinutes: vc.DurationMinutes,
			Platform:        vc.Platform,
			JoinLink:        vc.JoinLink,
		}
	}
	return out
}

func (h *Handler) listClasses(c *gin.Context) {
	list, err := h.Training.Classes(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"classes": viewClasses(list)})
}

func (h *Handler) trainerClasses(c *gin.Context) {
	list, err := h.Training.ClassesByTrainer(c.Request.Context(), session.MustPrincipal(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"classes": viewClasses(list)})
}

type classRequest struct {
	Title           string     `json:"Title"`
	Description     string     `json:"Description"`
	StartTime       *time.Time `json:"StartTime"`
	DurationMinutes int        `json:"DurationMinutes"`
	Platform        string     `json:"Platform"`
	JoinLink        string     `json:"JoinLink"`
}

func (r classRequest) class() training.VirtualClass {
	return training.VirtualClass{
		Title:           r.Title,
		Description:     r.Description,
		StartTime:       deref(r.StartTime),
		DurationMinutes: r.DurationMinutes,
		Platform:        r.Platform,
		JoinLink:        r.JoinLink,
	}
}

func (h *Handler) createClass(c *gin.Context) {
	var req classRequest
	if !bind(c, &req) {
		return
	}
	id, err := h.Training.CreateClass(c.Request.Context(), session.MustPrincipal(c).UserID, req.class())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"message": "virtual class created", "classId": id})
}

func (h *Handler) updateClass(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req classRequest
	if !bind(c, &req) {
		return
	}
	vc := req.class()
	vc.ID = id
	if err := h.Training.UpdateClass(c.Request.Context(), session.MustPrincipal(c).UserID, vc); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "virtual class updated"})
}

func (h *Handler) deleteClass(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.Training.DeleteClass(c.Request.Context(), session.MustPrincipal(c).UserID, id); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "virtual class deleted"})
}
