package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/xenking/efitness/internal/domain/calendar"
	"github.com/xenking/efitness/internal/domain/order"
	"github.com/xenking/efitness/internal/session"
)

type orderItemView struct {
	OrderItemID int64  `json:"OrderItemID"`
	ProductID   int64  `json:"ProductID"`
	ProductName string `json:"ProductName"`
	Category    string `json:"Category"`
	Brand       string `json:"Brand"`
	Quantity    int    `json:"Quantity"`
	UnitPrice   string `json:"UnitPrice"`
	Subtotal    string `json:"Subtotal"`
}

type orderView struct {
	OrderID     int64           `json:"OrderID"`
	ClientID    int64           `json:"ClientID"`
	ClientName  string          `json:"ClientName,omitempty"`
	OrderDate   time.Time       `json:"OrderDate"`
	TotalAmount string          `json:"TotalAmount"`
	Status      order.Status    `json:"Status"`
	PaymentID   *int64          `json:"PaymentID"`
	Items       []orderItemView `json:"Items,omitempty"`
}

func viewOrder(o order.Order) orderView {
	v := orderView{
		OrderID:     o.ID,
		ClientID:    o.ClientID,
		ClientName:  o.ClientName,
		OrderDate:   o.OrderDate,
		TotalAmount: o.TotalAmount.StringFixed(2),
		Status:      o.Status,
		PaymentID:   o.PaymentID,
	}
	for _, it := range o.Items {
		v.Items = append(v.Items, orderItemView{
			OrderItemID: it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Category:    it.Category,
			Brand:       it.Brand,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice.StringFixed(2),
			Subtotal:    it.Subtotal().StringFixed(2),
		})
	}
	return v
}

func viewOrders(list []order.Order) []orderView {
	out := make([]orderView, len(list))
	for i, o := range list {
		out[i] = viewOrder(o)
	}
	return out
}

func (h *Handler) orderHistory(c *gin.Context) {
	list, err := h.Orders.History(c.Request.Context(), session.MustPrincipal(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"orders": viewOrders(list)})
}

func (h *Handler) orderDetails(c *gin.Context) {
	id, valid := pathID(c, "orderId")
	if !valid {
		return
	}
	o, err := h.Orders.Details(c.Request.Context(), session.MustPrincipal(c).UserID, id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"order": viewOrder(*o)})
}

func (h *Handler) orderReceipt(c *gin.Context) {
	id, valid := pathID(c, "orderId")
	if !valid {
		return
	}
	text, err := h.Orders.Receipt(c.Request.Context(), session.MustPrincipal(c).UserID, id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"receiptContent": text})
}

func (h *Handler) listOrders(c *gin.Context) {
	list, err := h.Orders.ListAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"orders": viewOrders(list)})
}

type orderPatchRequest struct {
	OrderDate   *string          `json:"OrderDate"`
	TotalAmount *decimal.Decimal `json:"TotalAmount"`
	Status      *string          `json:"Status"`
}

func (h *Handler) updateOrder(c *gin.Context) {
	id, valid := pathID(c, "orderId")
	if !valid {
		return
	}
	var req orderPatchRequest
	if !bind(c, &req) {
		return
	}
	p := order.Patch{TotalAmount: req.TotalAmount}
	if req.OrderDate != nil {
		t, err := parseInstant(*req.OrderDate)
		if err != nil {
			fail(c, err)
			return
		}
		p.OrderDate = &t
	}
	if req.Status != nil {
		st := order.Status(*req.Status)
		p.Status = &st
	}
	if err := h.Orders.Update(c.Request.Context(), id, p); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "order updated"})
}

func (h *Handler) deleteOrder(c *gin.Context) {
	id, valid := pathID(c, "orderId")
	if !valid {
		return
	}
	if err := h.Orders.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "order deleted"})
}

// parseInstant accepts RFC 3339 or a bare date, read in the business zone.
func parseInstant(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, calendar.Zone); err == nil {
		return t, nil
	}
	return time.Time{}, errInvalidDate
}
