package httpserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"tableside/internal/cart"
	"tableside/internal/domain"
	"tableside/internal/realtime"
	checkoutsvc "tableside/internal/service/checkout"
	ordersvc "tableside/internal/service/order"
)

type checkoutRequest struct {
	CartID        string             `json:"cartId" binding:"required"`
	Service       domain.ServiceType `json:"service" binding:"required"`
	PaymentMethod string             `json:"paymentMethod"`
	Address       string             `json:"address"`
	TableRef      string             `json:"tableRef"`
	CouponCode    string             `json:"couponCode"`
}

func quoteHandler(sessions *sessionStore, checkout *checkoutsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		st := currentStore(c)
		sess, ok := sessions.get(req.CartID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
			return
		}
		sess.mu.Lock()
		in := submitInput(st, sess, req)
		sess.mu.Unlock()

		totals, err := checkout.Quote(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toTotalsResponse(totals))
	}
}

func checkoutHandler(sessions *sessionStore, checkout *checkoutsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		st := currentStore(c)
		sess, ok := sessions.get(req.CartID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
			return
		}

		sess.mu.Lock()
		defer sess.mu.Unlock()

		in := submitInput(st, sess, req)

		// The cart resets as soon as the submission starts; a failed write
		// restores the exact snapshot that was sent.
		var order *domain.Order
		err := realtime.Optimistic[cart.Snapshot]{
			Snapshot: sess.engine.Snapshot,
			Apply:    sess.engine.Clear,
			Commit: func(ctx context.Context) error {
				o, err := checkout.Submit(ctx, in)
				if err != nil {
					return err
				}
				order = o
				return nil
			},
			Restore: sess.engine.Restore,
		}.Run(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		sess.loyaltyCustomerID = ""

		c.JSON(http.StatusCreated, toOrderResponse(order, ordersvc.FlowCustomer))
	}
}

func submitInput(st *domain.Store, sess *cartSession, req checkoutRequest) checkoutsvc.SubmitInput {
	return checkoutsvc.SubmitInput{
		StoreID:           st.ID,
		Snapshot:          sess.engine.Snapshot(),
		Service:           req.Service,
		PaymentMethod:     req.PaymentMethod,
		Address:           req.Address,
		TableRef:          req.TableRef,
		CouponCode:        req.CouponCode,
		DeliveryFeeCents:  st.DeliveryFeeCents,
		LoyaltyCustomerID: sess.loyaltyCustomerID,
	}
}
