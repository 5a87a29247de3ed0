package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/xenking/efitness/internal/domain/account"
	"github.com/xenking/efitness/internal/domain/calendar"
	"github.com/xenking/efitness/internal/domain/progress"
	"github.com/xenking/efitness/internal/session"
)

// optionalDate parses a date field. Blank input yields the zero time so the
// service reports the missing field.
func optionalDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, valid := calendar.ParseDate(s)
	if !valid {
		return time.Time{}, errInvalidDate
	}
	return t, nil
}

type healthLogRequest struct {
	Weight             decimal.Decimal `json:"Weight"`
	Calories           int             `json:"Calories"`
	WaterIntakeLitres  decimal.Decimal `json:"WaterIntakeLitres"`
	SleepHours         decimal.Decimal `json:"SleepHours"`
	WorkoutDescription string          `json:"WorkoutDescription"`
}

func (h *Handler) addHealthLog(c *gin.Context) {
	var req healthLogRequest
	if !bind(c, &req) {
		return
	}
	id, err := h.Progress.AddHealthLog(c.Request.Context(), progress.HealthLog{
		ClientID:           session.MustPrincipal(c).UserID,
		Weight:             req.Weight,
		Calories:           req.Calories,
		WaterIntakeLitres:  req.WaterIntakeLitres,
		SleepHours:         req.SleepHours,
		WorkoutDescription: req.WorkoutDescription,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"message": "health log saved", "logId": id})
}

func (h *Handler) healthLogs(c *gin.Context) {
	logs, err := h.Progress.HealthLogs(c.Request.Context(), session.MustPrincipal(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]gin.H, len(logs))
	for i, l := range logs {
		out[i] = gin.H{
			"LogID":              l.ID,
			"Weight":             l.Weight.String(),
			"Calories":           l.Calories,
			"WaterIntakeLitres":  l.WaterIntakeLitres.String(),
			"SleepHours":         l.SleepHours.String(),
			"WorkoutDescription": l.WorkoutDescription,
			"LogDate":            dateString(l.LogDate),
		}
	}
	ok(c, http.StatusOK, gin.H{"logs": out})
}

type goalView struct {
	GoalID          int64   `json:"GoalID"`
	ClientID        int64   `json:"ClientID"`
	GoalTitle       string  `json:"GoalTitle"`
	GoalDescription string  `json:"GoalDescription"`
	TargetDate      *string `json:"TargetDate"`
	IsAchieved      bool    `json:"IsAchieved"`
}

func viewGoals(goals []progress.Goal) []goalView {
	out := make([]goalView, len(goals))
	for i, g := range goals {
		out[i] = goalView{
			GoalID:          g.ID,
			ClientID:        g.ClientID,
			GoalTitle:       g.GoalTitle,
			GoalDescription: g.GoalDescription,
			TargetDate:      optDate(g.TargetDate),
			IsAchieved:      g.IsAchieved,
		}
	}
	return out
}

func (h *Handler) myGoals(c *gin.Context) {
	goals, err := h.Progress.MyGoals(c.Request.Context(), session.MustPrincipal(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"goals": viewGoals(goals)})
}

type goalStatusRequest struct {
	IsAchieved *bool `json:"isAchieved"`
}

func (h *Handler) setGoalStatus(c *gin.Context) {
	id, valid := pathID(c, "goalId")
	if !valid {
		return
	}
	var req goalStatusRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Progress.SetAchieved(c.Request.Context(), session.MustPrincipal(c).UserID, id, req.IsAchieved); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "goal status updated"})
}

func (h *Handler) clientGoals(c *gin.Context) {
	list, err := h.Progress.ClientsWithGoals(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]gin.H, len(list))
	for i, cg := range list {
		out[i] = gin.H{
			"ClientID": cg.ClientID,
			"FullName": cg.FullName,
			"Email":    cg.Email,
			"Goals":    viewGoals(cg.Goals),
		}
	}
	ok(c, http.StatusOK, gin.H{"clients": out})
}

type goalRequest struct {
	ClientID        int64   `json:"ClientID"`
	GoalTitle       *string `json:"GoalTitle"`
	GoalDescription *string `json:"GoalDescription"`
	TargetDate      *string `json:"TargetDate"`
	IsAchieved      *bool   `json:"IsAchieved"`
}

func (r goalRequest) targetDate() (*time.Time, error) {
	if r.TargetDate == nil {
		return nil, nil
	}
	t, err := optionalDate(*r.TargetDate)
	if err != nil || t.IsZero() {
		return nil, err
	}
	return &t, nil
}

func (h *Handler) createGoal(c *gin.Context) {
	var req goalRequest
	if !bind(c, &req) {
		return
	}
	target, err := req.targetDate()
	if err != nil {
		fail(c, err)
		return
	}
	g := progress.Goal{ClientID: req.ClientID, TargetDate: target}
	if req.GoalTitle != nil {
		g.GoalTitle = *req.GoalTitle
	}
	if req.GoalDescription != nil {
		g.GoalDescription = *req.GoalDescription
	}
	id, err := h.Progress.CreateGoal(c.Request.Context(), g)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"message": "goal created", "goalId": id})
}

func (h *Handler) updateGoal(c *gin.Context) {
	id, valid := pathID(c, "goalId")
	if !valid {
		return
	}
	var req goalRequest
	if !bind(c, &req) {
		return
	}
	target, err := req.targetDate()
	if err != nil {
		fail(c, err)
		return
	}
	err = h.Progress.UpdateGoal(c.Request.Context(), id, progress.GoalPatch{
		GoalTitle:       req.GoalTitle,
		GoalDescription: req.GoalDescription,
		TargetDate:      target,
		IsAchieved:      req.IsAchieved,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "goal updated"})
}

func (h *Handler) deleteGoal(c *gin.Context) {
	id, valid := pathID(c, "goalId")
	if !valid {
		return
	}
	if err := h.Progress.DeleteGoal(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "goal deleted"})
}

func (h *Handler) snapshots(c *gin.Context) {
	clientID, valid := pathID(c, "clientId")
	if !valid {
		return
	}
	list, err := h.Progress.Snapshots(c.Request.Context(), clientID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"progress": viewSnapshots(list)})
}

func viewSnapshots(list []progress.Snapshot) []gin.H {
	out := make([]gin.H, len(list))
	for i, s := range list {
		out[i] = gin.H{
			"ProgressID":     s.ID,
			"DateTaken":      dateString(s.DateTaken),
			"WeightKg":       s.WeightKg.String(),
			"BodyFatPercent": s.BodyFatPercent.String(),
			"BMI":            s.BMI.String(),
			"Notes":          s.Notes,
		}
	}
	return out
}

type snapshotRequest struct {
	DateTaken      string          `json:"DateTaken"`
	WeightKg       decimal.Decimal `json:"WeightKg"`
	BodyFatPercent decimal.Decimal `json:"BodyFatPercent"`
	BMI            decimal.Decimal `json:"BMI"`
	Notes          string          `json:"Notes"`
}

func (h *Handler) addSnapshot(c *gin.Context) {
	clientID, valid := pathID(c, "clientId")
	if !valid {
		return
	}
	var req snapshotRequest
	if !bind(c, &req) {
		return
	}
	taken, err := optionalDate(req.DateTaken)
	if err != nil {
		fail(c, err)
		return
	}
	id, err := h.Progress.AddSnapshot(c.Request.Context(), progress.Snapshot{
		ClientID:       clientID,
		DateTaken:      taken,
		WeightKg:       req.WeightKg,
		BodyFatPercent: req.BodyFatPercent,
		BMI:            req.BMI,
		Notes:          req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"message": "progress recorded", "progressId": id})
}

func (h *Handler) workoutLogs(c *gin.Context) {
	clientID, valid := pathID(c, "clientId")
	if !valid {
		return
	}
	list, err := h.Progress.WorkoutLogs(c.Request.Context(), clientID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"workouts": viewWorkouts(list)})
}

func viewWorkouts(list []progress.WorkoutLog) []gin.H {
	out := make([]gin.H, len(list))
	for i, l := range list {
		out[i] = gin.H{
			"LogID":          l.ID,
			"ExerciseID":     l.ExerciseID,
			"ExerciseName":   l.ExerciseName,
			"DatePerformed":  dateString(l.DatePerformed),
			"SetsDone":       l.SetsDone,
			"RepsDone":       l.RepsDone,
			"WeightUsedKg":   l.WeightUsedKg.String(),
			"CaloriesBurned": l.CaloriesBurned,
			"TrainerNotes":   l.TrainerNotes,
		}
	}
	return out
}

const (
	detailWorkouts  = 10
	detailSnapshots = 5
)

// clientDetails returns a client's profile with their latest workouts and
// measurements in one response.
func (h *Handler) clientDetails(c *gin.Context) {
	clientID, valid := pathID(c, "clientId")
	if !valid {
		return
	}
	ctx := c.Request.Context()
	a, err := h.Accounts.Get(ctx, account.RoleClient, clientID)
	if err != nil {
		fail(c, err)
		return
	}
	workouts, err := h.Progress.WorkoutLogs(ctx, clientID)
	if err != nil {
		fail(c, err)
		return
	}
	snaps, err := h.Progress.Snapshots(ctx, clientID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"client":   viewAccount(a),
		"workouts": viewWorkouts(workouts[:min(len(workouts), detailWorkouts)]),
		"progress": viewSnapshots(snaps[:min(len(snaps), detailSnapshots)]),
	})
}

type workoutLogRequest struct {
	ExerciseID     int64           `json:"ExerciseID"`
	DatePerformed  string          `json:"DatePerformed"`
	SetsDone       int             `json:"SetsDone"`
	RepsDone       int             `json:"RepsDone"`
	WeightUsedKg   decimal.Decimal `json:"WeightUsedKg"`
	CaloriesBurned *int            `json:"CaloriesBurned"`
	TrainerNotes   string          `json:"TrainerNotes"`
}

func (h *Handler) addWorkoutLog(c *gin.Context) {
	clientID, valid := pathID(c, "clientId")
	if !valid {
		return
	}
	var req workoutLogRequest
	if !bind(c, &req) {
		return
	}
	performed, err := optionalDate(req.DatePerformed)
	if err != nil {
		fail(c, err)
		return
	}
	id, err := h.Progress.AddWorkoutLog(c.Request.Context(), progress.WorkoutLog{
		ClientID:       clientID,
		ExerciseID:     req.ExerciseID,
		DatePerformed:  performed,
		SetsDone:       req.SetsDone,
		RepsDone:       req.RepsDone,
		WeightUsedKg:   req.WeightUsedKg,
		CaloriesBurned: req.CaloriesBurned,
		TrainerNotes:   req.TrainerNotes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"message": "workout logged", "logId": id})
}
