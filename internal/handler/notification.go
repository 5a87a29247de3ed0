package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xenking/efitness/internal/domain/notification"
	"github.com/xenking/efitness/internal/session"
)

type notificationRequest struct {
	ReceiverID int64  `json:"receiverId"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	ActionLink string `json:"actionLink"`
}

func (h *Handler) sendNotification(c *gin.Context) {
	var req notificationRequest
	if !bind(c, &req) {
		return
	}
	p := session.MustPrincipal(c)
	id, err := h.Notifications.Send(c.Request.Context(), notification.SendRequest{
		SenderID:   p.UserID,
		SenderRole: string(p.Role),
		ReceiverID: req.ReceiverID,
		Title:      req.Title,
		Message:    req.Message,
		Type:       req.Type,
		ActionLink: req.ActionLink,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"message": "notification sent", "notificationId": id})
}

type notificationView struct {
	NotificationID int64     `json:"NotificationID"`
	SenderID       int64     `json:"SenderID"`
	SenderRole     string    `json:"SenderRole"`
	Title          string    `json:"Title"`
	Message        string    `json:"Message"`
	Type           string    `json:"Type"`
	ActionLink     *string   `json:"ActionLink"`
	IsRead         bool      `json:"IsRead"`
	CreatedAt      time.Time `json:"CreatedAt"`
}

func (h *Handler) inbox(c *gin.Context) {
	list, err := h.Notifications.Inbox(c.Request.Context(), session.MustPrincipal(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]notificationView, len(list))
	for i, n := range list {
		out[i] = notificationView{
			NotificationID: n.ID,
			SenderID:       n.SenderID,
			SenderRole:     n.SenderRole,
			Title:          n.Title,
			Message:        n.Message,
			Type:           n.Type,
			ActionLink:     n.ActionLink,
			IsRead:         n.IsRead,
			CreatedAt:      n.CreatedAt,
		}
	}
	ok(c, http.StatusOK, gin.H{"notifications": out})
}

func (h *Handler) markRead(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.Notifications.MarkRead(c.Request.Context(), session.MustPrincipal(c).UserID, id); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "notification marked as read"})
}

type feedbackRequest struct {
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Rating  int    `json:"rating"`
}

func (h *Handler) submitFeedback(c *gin.Context) {
	var req feedbackRequest
	if !bind(c, &req) {
		return
	}
	p := session.MustPrincipal(c)
	id, err := h.Notifications.SubmitFeedback(c.Request.Context(), notification.Feedback{
		SenderID:     p.UserID,
		SenderRole:   string(p.Role),
		FeedbackType: req.Type,
		Subject:      req.Subject,
		Message:      req.Message,
		Rating:       req.Rating,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"message": "feedback submitted", "feedbackId": id})
}

type feedbackView struct {
	FeedbackID   int64     `json:"FeedbackID"`
	SenderID     int64     `json:"SenderID"`
	SenderRole   string    `json:"SenderRole"`
	SenderName   string    `json:"SenderName"`
	FeedbackType string    `json:"FeedbackType"`
	Subject      string    `json:"Subject"`
	Message      string    `json:"Message"`
	Rating       int       `json:"Rating"`
	SubmittedAt  time.Time `json:"SubmittedAt"`
}

func (h *Handler) listFeedback(c *gin.Context) {
	list, err := h.Notifications.Feedback(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]feedbackView, len(list))
	for i, f := range list {
		out[i] = feedbackView{
			FeedbackID:   f.ID,
			SenderID:     f.SenderID,
			SenderRole:   f.SenderRole,
			SenderName:   f.SenderName,
			FeedbackType: f.FeedbackType,
			Subject:      f.Subject,
			Message:      f.Message,
			Rating:       f.Rating,
			SubmittedAt:  f.SubmittedAt,
		}
	}
	ok(c, http.StatusOK, gin.H{"feedbacks": out})
}

func (h *Handler) deleteFeedback(c *gin.Context) {
	id, valid := pathID(c, "feedbackId")
	if !valid {
		return
	}
	if err := h.Notifications.DeleteFeedback(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "feedback deleted"})
}
