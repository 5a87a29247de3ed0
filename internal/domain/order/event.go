package order

import (
	"github.com/go-faster/jx"
)

type placedEvent struct {
	ClientID int64
	Placed   Placed
}

func (p placedEvent) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("orderId", func(e *jx.Encoder) { e.Int64(p.Placed.OrderID) })
		e.Field("clientId", func(e *jx.Encoder) { e.Int64(p.ClientID) })
		e.Field("paymentId", func(e *jx.Encoder) { e.Int64(p.Placed.PaymentID) })
		e.Field("totalAmount", func(e *jx.Encoder) { e.Str(p.Placed.TotalAmount.StringFixed(2)) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, it := range p.Placed.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("productId", func(e *jx.Encoder) { e.Int64(it.ProductID) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
						e.Field("unitPrice", func(e *jx.Encoder) { e.Str(it.UnitPrice.StringFixed(2)) })
					})
				}
			})
		})
	})
}
