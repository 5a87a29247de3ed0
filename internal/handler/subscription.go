package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/xenking/efitness/internal/domain/subscription"
	"github.com/xenking/efitness/internal/session"
)

type planView struct {
	PlanID         int64  `json:"PlanID"`
	PlanName       string `json:"PlanName"`
	Description    string `json:"Description"`
	DurationMonths int    `json:"DurationMonths"`
	Price          string `json:"Price"`
}

func viewPlan(p subscription.Plan) planView {
	return planView{
		PlanID:         p.ID,
		PlanName:       p.PlanName,
		Description:    p.Description,
		DurationMonths: p.DurationMonths,
		Price:          p.Price.StringFixed(2),
	}
}

type paymentView struct {
	PaymentID      int64     `json:"PaymentID"`
	SubscriptionID int64     `json:"SubscriptionID"`
	Amount         string    `json:"Amount"`
	PaymentDate    time.Time `json:"PaymentDate"`
	PaymentMethod  string    `json:"PaymentMethod"`
	Status         string    `json:"Status"`
	TransactionRef string    `json:"TransactionRef"`
}

func viewPayment(p subscription.Payment) paymentView {
	return paymentView{
		PaymentID:      p.ID,
		SubscriptionID: p.SubscriptionID,
		Amount:         p.Amount.StringFixed(2),
		PaymentDate:    p.PaymentDate,
		PaymentMethod:  p.Method,
		Status:         p.Status,
		TransactionRef: p.TransactionRef,
	}
}

type subscriptionView struct {
	SubscriptionID int64        `json:"SubscriptionID"`
	ClientID       int64        `json:"ClientID"`
	ClientName     string       `json:"ClientName,omitempty"`
	ClientEmail    string       `json:"ClientEmail,omitempty"`
	StartDate      string       `json:"StartDate"`
	EndDate        string       `json:"EndDate"`
	IsActive       bool         `json:"IsActive"`
	Plan           *planView    `json:"Plan,omitempty"`
	Payment        *paymentView `json:"Payment,omitempty"`
}

func viewSubscriptions(list []subscription.Subscription) []subscriptionView {
	out := make([]subscriptionView, len(list))
	for i, s := range list {
		v := subscriptionView{
			SubscriptionID: s.ID,
			ClientID:       s.ClientID,
			ClientName:     s.ClientName,
			ClientEmail:    s.ClientEmail,
			StartDate:      dateString(s.StartDate),
			EndDate:        dateString(s.EndDate),
			IsActive:       s.IsActive,
		}
		if s.Plan != nil {
			p := viewPlan(*s.Plan)
			v.Plan = &p
		}
		if s.Payment != nil {
			p := viewPayment(*s.Payment)
			v.Payment = &p
		}
		out[i] = v
	}
	return out
}

func (h *Handler) listPlans(c *gin.Context) {
	plans, err := h.Subscriptions.ListPlans(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]planView, len(plans))
	for i, p := range plans {
		out[i] = viewPlan(p)
	}
	ok(c, http.StatusOK, gin.H{"plans": out})
}

type planRequest struct {
	PlanName       *string          `json:"PlanName"`
	Description    *string          `json:"Description"`
	DurationMonths *int             `json:"DurationMonths"`
	Price          *decimal.Decimal `json:"Price"`
}

func (h *Handler) createPlan(c *gin.Context) {
	var req planRequest
	if !bind(c, &req) {
		return
	}
	var p subscription.Plan
	if req.PlanName != nil {
		p.PlanName = *req.PlanName
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.DurationMonths != nil {
		p.DurationMonths = *req.DurationMonths
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	id, err := h.Subscriptions.CreatePlan(c.Request.Context(), p)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"message": "plan created", "PlanID": id})
}

func (h *Handler) updatePlan(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req planRequest
	if !bind(c, &req) {
		return
	}
	err := h.Subscriptions.UpdatePlan(c.Request.Context(), id, subscription.PlanPatch{
		PlanName:       req.PlanName,
		Description:    req.Description,
		DurationMonths: req.DurationMonths,
		Price:          req.Price,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "plan updated"})
}

func (h *Handler) deletePlan(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.Subscriptions.DeletePlan(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "plan deleted"})
}

type purchasePlanRequest struct {
	PlanID         int64  `json:"PlanID"`
	StartDate      string `json:"StartDate"`
	PaymentMethod  string `json:"PaymentMethod"`
	TransactionRef string `json:"TransactionRef"`
}

func (h *Handler) purchasePlan(c *gin.Context) {
	var req purchasePlanRequest
	if !bind(c, &req) {
		return
	}
	out, err := h.Subscriptions.Purchase(c.Request.Context(), subscription.PurchaseRequest{
		ClientID:       session.MustPrincipal(c).UserID,
		PlanID:         req.PlanID,
		StartDate:      req.StartDate,
		PaymentMethod:  req.PaymentMethod,
		TransactionRef: req.TransactionRef,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{
		"message":        "subscription purchased",
		"SubscriptionID": out.SubscriptionID,
		"PaymentID":      out.PaymentID,
		"StartDate":      dateString(out.StartDate),
		"EndDate":        dateString(out.EndDate),
		"Amount":         out.Amount,
	})
}

func (h *Handler) activeSubscriptions(c *gin.Context) {
	list, err := h.Subscriptions.Active(c.Request.Context(), session.MustPrincipal(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"subscriptions": viewSubscriptions(list)})
}

func (h *Handler) payments(c *gin.Context) {
	list, err := h.Subscriptions.Payments(c.Request.Context(), session.MustPrincipal(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]paymentView, len(list))
	for i, p := range list {
		out[i] = viewPayment(p)
	}
	ok(c, http.StatusOK, gin.H{"payments": out})
}

func (h *Handler) paymentReceipt(c *gin.Context) {
	id, valid := pathID(c, "paymentId")
	if !valid {
		return
	}
	text, err := h.Subscriptions.Receipt(c.Request.Context(), session.MustPrincipal(c).UserID, id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"receiptContent": text})
}

func (h *Handler) listSubscriptions(c *gin.Context) {
	list, err := h.Subscriptions.ListAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"subscriptions": viewSubscriptions(list)})
}

func (h *Handler) deleteSubscription(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.Subscriptions.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "subscription deleted"})
}

type subscriptionStatusRequest struct {
	IsActive      *bool  `json:"isActive"`
	PaymentStatus string `json:"paymentStatus"`
}

func (h *Handler) setSubscriptionStatus(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req subscriptionStatusRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Subscriptions.SetStatus(c.Request.Context(), id, req.IsActive, req.PaymentStatus); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "subscription status updated"})
}
