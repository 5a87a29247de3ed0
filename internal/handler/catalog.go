package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/xenking/efitness/internal/domain/cart"
	"github.com/xenking/efitness/internal/domain/product"
	"github.com/xenking/efitness/internal/session"
)

type productView struct {
	ProductID     int64  `json:"ProductID"`
	Name          string `json:"Name"`
	Description   string `json:"Description"`
	Category      string `json:"Category"`
	Brand         string `json:"Brand"`
	Price         string `json:"Price"`
	StockQuantity int    `json:"StockQuantity"`
	IsActive      bool   `json:"IsActive"`
}

func viewProducts(list []product.Product) []productView {
	out := make([]productView, len(list))
	for i, p := range list {
		out[i] = productView{
			ProductID:     p.ID,
			Name:          p.Name,
			Description:   p.Description,
			Category:      p.Category,
			Brand:         p.Brand,
			Price:         p.Price.StringFixed(2),
			StockQuantity: p.Stock,
			IsActive:      p.IsActive,
		}
	}
	return out
}

func (h *Handler) listAvailableProducts(c *gin.Context) {
	list, err := h.Products.ListAvailable(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"products": viewProducts(list)})
}

func (h *Handler) listProducts(c *gin.Context) {
	list, err := h.Products.List(c.Request.Context(), product.Filter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"products": viewProducts(list)})
}

type productRequest struct {
	Name          *string          `json:"Name"`
	Description   *string          `json:"Description"`
	Category      *string          `json:"Category"`
	Brand         *string          `json:"Brand"`
	Price         *decimal.Decimal `json:"Price"`
	StockQuantity *int             `json:"StockQuantity"`
	IsActive      *bool            `json:"IsActive"`
}

func (h *Handler) createProduct(c *gin.Context) {
	var req productRequest
	if !bind(c, &req) {
		return
	}
	p := product.Product{IsActive: true}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Brand != nil {
		p.Brand = *req.Brand
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.StockQuantity != nil {
		p.Stock = *req.StockQuantity
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	id, err := h.Products.Create(c.Request.Context(), p)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"message": "product created", "productId": id})
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req productRequest
	if !bind(c, &req) {
		return
	}
	err := h.Products.Update(c.Request.Context(), id, product.Patch{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Brand:       req.Brand,
		Price:       req.Price,
		Stock:       req.StockQuantity,
		IsActive:    req.IsActive,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "product updated"})
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.Products.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "product deleted"})
}

type cartLineView struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

func viewCart(ct cart.Cart) []cartLineView {
	out := make([]cartLineView, len(ct.Lines))
	for i, l := range ct.Lines {
		out[i] = cartLineView{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.UnitPrice.StringFixed(2),
			Quantity:  l.Quantity,
		}
	}
	return out
}

type cartRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

func (h *Handler) addToCart(c *gin.Context) {
	var req cartRequest
	if !bind(c, &req) {
		return
	}
	s, _ := session.Current(c)
	ct, err := h.Carts.Add(c.Request.Context(), s.ID, req.ProductID, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "product added to cart", "cart": viewCart(ct)})
}

func (h *Handler) removeFromCart(c *gin.Context) {
	var req cartRequest
	if !bind(c, &req) {
		return
	}
	s, _ := session.Current(c)
	ct, err := h.Carts.Remove(c.Request.Context(), s.ID, req.ProductID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "product removed from cart", "cart": viewCart(ct)})
}

func (h *Handler) getCart(c *gin.Context) {
	s, _ := session.Current(c)
	ct, err := h.Carts.Get(c.Request.Context(), s.ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"cart": viewCart(ct)})
}

type purchaseRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

func (h *Handler) purchase(c *gin.Context) {
	var req purchaseRequest
	if !bind(c, &req) {
		return
	}
	s, _ := session.Current(c)
	placed, err := h.Orders.Checkout(c.Request.Context(), s.ID, s.Principal.UserID, req.PaymentMethod)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"message":     "purchase successful",
		"orderId":     placed.OrderID,
		"totalAmount": placed.TotalAmount.StringFixed(2),
	})
}
