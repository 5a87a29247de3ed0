package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xenking/efitness/internal/session"
)

func (h *Handler) adminKPIs(c *gin.Context) {
	k, err := h.Dashboards.Admin(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"kpis": gin.H{
		"TotalClients":        k.TotalClients,
		"TotalTrainers":       k.TotalTrainers,
		"ActiveSubscriptions": k.ActiveSubscriptions,
		"ProductRevenue":      k.ProductRevenue.StringFixed(2),
		"SubscriptionRevenue": k.SubscriptionRevenue.StringFixed(2),
		"PendingOrders":       k.PendingOrders,
		"CheckInsToday":       k.CheckInsToday,
		"LowStockProducts":    k.LowStockProducts,
	}})
}

func (h *Handler) clientKPIs(c *gin.Context) {
	k, err := h.Dashboards.Client(c.Request.Context(), session.MustPrincipal(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	var weight *string
	if k.LatestWeight != nil {
		w := k.LatestWeight.String()
		weight = &w
	}
	ok(c, http.StatusOK, gin.H{"kpis": gin.H{
		"ClientID":            k.ClientID,
		"LatestWeight":        weight,
		"HealthLogsSubmitted": k.HealthLogsSubmitted,
		"UnachievedGoals":     k.UnachievedGoals,
		"ActiveSubscriptions": k.ActiveSubscriptions,
		"UnreadNotifications": k.UnreadNotifications,
		"DaysAttendedLast30":  k.DaysAttendedLast30,
	}})
}

func (h *Handler) trainerKPIs(c *gin.Context) {
	k, err := h.Dashboards.Trainer(c.Request.Context(), session.MustPrincipal(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"kpis": gin.H{
		"TrainerID":             k.TrainerID,
		"TrainerName":           k.TrainerName,
		"IntroVideoURL":         k.IntroVideoURL,
		"WorkoutPlansCreated":   k.WorkoutPlansCreated,
		"UpcomingClasses":       k.UpcomingClasses,
		"ClientsWithGoals":      k.ClientsWithGoals,
		"AverageFeedbackRating": k.AverageFeedbackRating,
		"UnreadNotifications":   k.UnreadNotifications,
	}})
}
